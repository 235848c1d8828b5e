// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc1

import (
	"image"
	"io"
)

// DecompressBlock decompresses an 8-byte ETC1 block into dst, 16 RGBA pixels
// row-major. If preserveAlpha is true the alpha bytes of dst are left
// untouched (the caller supplies them separately); otherwise they are forced
// to 0xFF.
//
// The returned bool is always true. Every 8-byte value is a structurally
// valid ETC1 block — the format has no checksum and no invalid encodings —
// so the result is a vacuous success flag, not a corruption check. It is
// kept for compatibility with other ETC1 decoder interfaces.
func DecompressBlock(dst *[64]byte, block *[8]byte, preserveAlpha bool) bool {
	ensureTables()
	decodeBlock(dst, readU64BE(block[:]), preserveAlpha)
	return true
}

func decodeBlock(dst *[64]byte, code uint64, preserveAlpha bool) {
	bases := [2][3]int32{}

	if ((code >> 33) & 1) != 0 {
		// Diff mode: 5-bit base plus a signed 3-bit per-channel delta. An
		// overflowing delta (possible in arbitrary input, never produced by
		// the encoder) saturates; in ETC2 it would select another mode, but
		// ETC1 has none.
		for c := 0; c < 3; c++ {
			five := int32((code >> (59 - (8 * c))) & 31)
			other := five + diffValues[(code>>(56-(8*c)))&7]
			other = max(0, min(31, other))
			bases[0][c] = int32(expand5[five])
			bases[1][c] = int32(expand5[other])
		}
	} else {
		for c := 0; c < 3; c++ {
			bases[0][c] = int32(expand4[(code>>(60-(8*c)))&15])
			bases[1][c] = int32(expand4[(code>>(56-(8*c)))&15])
		}
	}

	tables := [2]uint32{
		uint32((code >> 37) & 7),
		uint32((code >> 34) & 7),
	}
	flipBit := int((code >> 32) & 1)

	// Index bit i covers the pixel at column i>>2, row i&3.
	for i := 0; i < 16; i++ {
		x := i >> 2
		y := i & 3

		half := 0
		if flipBit == 0 {
			half = x >> 1
		} else {
			half = y >> 1
		}

		index := ((code >> i) & 1) | ((code >> (i + 0x0F)) & 2)
		mod := modifierTables[tables[half]][index]

		j := (16 * y) + (4 * x)
		dst[j+0] = clamp[1023&uint32(bases[half][0]+mod)]
		dst[j+1] = clamp[1023&uint32(bases[half][1]+mod)]
		dst[j+2] = clamp[1023&uint32(bases[half][2]+mod)]
		if !preserveAlpha {
			dst[j+3] = 0xFF
		}
	}
}

// NewImage returns an RGBA image suitable for Decode.
//
// The requested width and height will be rounded up to a multiple of 4.
//
// It returns an error if the width or height is negative or above 65536.
func NewImage(width int, height int) (*image.RGBA, error) {
	if (width < 0) || (width >= 65536) ||
		(height < 0) || (height >= 65536) {
		return nil, ErrBadArgument
	}
	return image.NewRGBA(image.Rect(0, 0, (width+3)&^3, (height+3)&^3)), nil
}

// Decode reads consecutive ETC1 blocks from src into dst, whose bounds must
// have width and height that are multiples of 4, as produced by NewImage.
// Output alpha is fully opaque.
func Decode(dst *image.RGBA, src io.Reader) error {
	if dst == nil {
		return ErrBadArgument
	}
	b := dst.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if ((bW | bH) & 3) != 0 {
		return ErrBadArgument
	}

	ensureTables()
	buf := [8]byte{}
	pixels := [64]byte{}

	for blockY := 0; blockY < bH; blockY += 4 {
		for blockX := 0; blockX < bW; blockX += 4 {
			if _, err := io.ReadFull(src, buf[:]); err != nil {
				return err
			}
			decodeBlock(&pixels, readU64BE(buf[:]), false)

			for y := 0; y < 4; y++ {
				row := dst.PixOffset(b.Min.X+blockX, b.Min.Y+blockY+y)
				copy(dst.Pix[row:row+16], pixels[16*y:(16*y)+16])
			}
		}
	}
	return nil
}

func readU64BE(buf []byte) uint64 {
	buf = buf[:8]
	return 0 |
		(uint64(buf[0]) << 56) |
		(uint64(buf[1]) << 48) |
		(uint64(buf[2]) << 40) |
		(uint64(buf[3]) << 32) |
		(uint64(buf[4]) << 24) |
		(uint64(buf[5]) << 16) |
		(uint64(buf[6]) << 8) |
		(uint64(buf[7]) << 0)
}
