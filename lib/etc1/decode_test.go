// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc1

import (
	"testing"
)

func blockFromU64(code uint64) (block [8]byte) {
	writeU64BE(block[:], code)
	return block
}

func TestDecompressIndividualMode(tt *testing.T) {
	// Individual mode, flip 0, both tables 0, all pixel indexes 0 (so the
	// modifier is +2 everywhere). The left half's base is 4-bit (15,0,0),
	// which bit-replicates to (255,0,0); the right half's is (0,15,0).
	block := blockFromU64((15 << 60) | (15 << 48))

	dst := [64]byte{}
	if !DecompressBlock(&dst, &block, false) {
		tt.Fatal("DecompressBlock returned false")
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (16 * y) + (4 * x)
			want := [4]uint8{0xFF, 0x02, 0x02, 0xFF}
			if x >= 2 {
				want = [4]uint8{0x02, 0xFF, 0x02, 0xFF}
			}
			got := [4]uint8{dst[i+0], dst[i+1], dst[i+2], dst[i+3]}
			if got != want {
				tt.Errorf("x=%d y=%d: got %02X, want %02X", x, y, got, want)
			}
		}
	}
}

func TestDecompressDiffModeFlipped(tt *testing.T) {
	// Diff mode, flip 1. The base color is 5-bit (16,16,16), expanding to a
	// 132 gray; the per-channel delta is +1, so the second subblock's base
	// expands to a 140 gray. The top half uses table 2 ({9,29,-9,-29}) and
	// the bottom half table 0 ({2,8,-2,-8}). Only the pixel at (0,0) has a
	// non-zero index: its lsb is block bit 0 and its msb is block bit 16,
	// giving index 3 and so modifier -29.
	code := uint64(0) |
		(16 << 59) | (1 << 56) |
		(16 << 51) | (1 << 48) |
		(16 << 43) | (1 << 40) |
		(2 << 37) | (0 << 34) |
		(1 << 33) | (1 << 32) |
		(1 << 16) | (1 << 0)
	block := blockFromU64(code)

	dst := [64]byte{}
	DecompressBlock(&dst, &block, false)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (16 * y) + (4 * x)
			want := uint8(0)
			switch {
			case (x == 0) && (y == 0):
				want = 132 - 29
			case y < 2:
				want = 132 + 9
			default:
				want = 140 + 2
			}
			if (dst[i+0] != want) || (dst[i+1] != want) || (dst[i+2] != want) {
				tt.Errorf("x=%d y=%d: got %02X%02X%02X, want the %02X gray",
					x, y, dst[i+0], dst[i+1], dst[i+2], want)
			}
		}
	}
}

func TestDecompressDiffModeOverflowSaturates(tt *testing.T) {
	// Red base level 31 plus delta +3 lands outside the 5-bit range. The
	// encoder never emits this, but arbitrary input can; the decoder
	// saturates the level rather than wrapping.
	block := blockFromU64((31 << 59) | (3 << 56) | (1 << 33))

	dst := [64]byte{}
	DecompressBlock(&dst, &block, false)

	for i := 0; i < 64; i += 4 {
		if (dst[i+0] != 0xFF) || (dst[i+1] != 0x02) || (dst[i+2] != 0x02) {
			tt.Errorf("pixel %d: got %02X%02X%02X, want FF0202",
				i/4, dst[i+0], dst[i+1], dst[i+2])
		}
	}
}

func TestDecompressPreserveAlpha(tt *testing.T) {
	block := blockFromU64((15 << 60) | (15 << 48))

	dst := [64]byte{}
	for i := 3; i < 64; i += 4 {
		dst[i] = 0x37
	}

	DecompressBlock(&dst, &block, true)
	for i := 3; i < 64; i += 4 {
		if dst[i] != 0x37 {
			tt.Fatalf("preserveAlpha=true: alpha byte %d: got %02X, want 37", i, dst[i])
		}
	}

	DecompressBlock(&dst, &block, false)
	for i := 3; i < 64; i += 4 {
		if dst[i] != 0xFF {
			tt.Fatalf("preserveAlpha=false: alpha byte %d: got %02X, want FF", i, dst[i])
		}
	}
}

func TestDecompressAlwaysSucceeds(tt *testing.T) {
	// ETC1 has no invalid block encodings.
	blocks := [][8]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE, 0xF0, 0x0D},
		{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF},
	}

	dst := [64]byte{}
	for _, block := range blocks {
		if !DecompressBlock(&dst, &block, false) {
			tt.Errorf("block % 02X: DecompressBlock returned false", block)
		}
	}
}

func TestNewImage(tt *testing.T) {
	testCases := []struct {
		width   int
		height  int
		wantW   int
		wantH   int
		wantErr error
	}{
		{0, 0, 0, 0, nil},
		{1, 1, 4, 4, nil},
		{4, 4, 4, 4, nil},
		{5, 3, 8, 4, nil},
		{65535, 4, 65536, 4, nil},
		{-1, 4, 0, 0, ErrBadArgument},
		{4, -1, 0, 0, ErrBadArgument},
		{65536, 4, 0, 0, ErrBadArgument},
		{4, 65536, 0, 0, ErrBadArgument},
	}

	for _, tc := range testCases {
		m, err := NewImage(tc.width, tc.height)
		if err != tc.wantErr {
			tt.Errorf("NewImage(%d, %d): error: got %v, want %v",
				tc.width, tc.height, err, tc.wantErr)
			continue
		} else if err != nil {
			continue
		}
		if b := m.Bounds(); (b.Dx() != tc.wantW) || (b.Dy() != tc.wantH) {
			tt.Errorf("NewImage(%d, %d): bounds: got %d×%d, want %d×%d",
				tc.width, tc.height, b.Dx(), b.Dy(), tc.wantW, tc.wantH)
		}
	}
}
