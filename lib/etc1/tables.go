// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc1

import (
	"sync"
)

// modifierTables holds the 8 fixed ETC1 intensity modifier tables. The inner
// index is the 2-bit per-pixel index value as it appears in the block: the
// high bit is the sign, the low bit selects the larger magnitude.
var modifierTables = [8][4]int32{
	{2, 8, -2, -8},
	{5, 17, -5, -17},
	{9, 29, -9, -29},
	{13, 42, -13, -42},
	{18, 60, -18, -60},
	{24, 80, -24, -80},
	{33, 106, -33, -106},
	{47, 183, -47, -183},
}

// diffValues decodes a 3-bit two's complement per-channel delta.
var diffValues = [8]int32{0, 1, 2, 3, -4, -3, -2, -1}

var (
	tablesOnce sync.Once

	// clamp saturates base-plus-modifier sums to [0, 255]. Indexed by the
	// sum's low 10 bits, so that negative sums (which wrap to 841..1023)
	// clamp to zero.
	clamp [1024]uint8

	// expand5 and expand4 widen quantized channel values to 8 bits by bit
	// replication.
	expand5 [32]uint8
	expand4 [16]uint8

	// grid5Residual is each 8-bit value's signed distance to the nearest
	// member of the expand5 grid. Ties go to the lower grid member.
	grid5Residual [256]int8
)

func ensureTables() {
	tablesOnce.Do(buildTables)
}

func buildTables() {
	for i := range clamp {
		switch {
		case i < 0x100:
			clamp[i] = uint8(i)
		case i < 0x200:
			clamp[i] = 0xFF
		default:
			clamp[i] = 0x00
		}
	}

	for i := range expand5 {
		expand5[i] = uint8((i << 3) | (i >> 2))
	}
	for i := range expand4 {
		expand4[i] = uint8((i << 4) | i)
	}

	for v := range grid5Residual {
		bestDelta, bestAbs := 0, 256
		for _, g := range expand5 {
			delta := v - int(g)
			abs := delta
			if abs < 0 {
				abs = -abs
			}
			if bestAbs > abs {
				bestDelta, bestAbs = delta, abs
			}
		}
		grid5Residual[v] = int8(bestDelta)
	}
}

// numOrientations counts four orientations of a 2×4 or 4×2 subblock.
//
//   - 0: 2×4 tall and thin,  not-flipped, left side.
//   - 1: 2×4 tall and thin,  not-flipped, right side.
//   - 2: 4×2 short and wide, yes-flipped, top side.
//   - 3: 4×2 short and wide, yes-flipped, bottom side.
const numOrientations = 4

var perOrientationPixelsOffsets = [numOrientations][8]uint8{
	{0x00, 0x10, 0x20, 0x30, 0x04, 0x14, 0x24, 0x34},
	{0x08, 0x18, 0x28, 0x38, 0x0C, 0x1C, 0x2C, 0x3C},
	{0x00, 0x10, 0x04, 0x14, 0x08, 0x18, 0x0C, 0x1C},
	{0x20, 0x30, 0x24, 0x34, 0x28, 0x38, 0x2C, 0x3C},
}

var perOrientationShifts = [numOrientations][8]uint8{
	{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	{0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F},
	{0x00, 0x01, 0x04, 0x05, 0x08, 0x09, 0x0C, 0x0D},
	{0x02, 0x03, 0x06, 0x07, 0x0A, 0x0B, 0x0E, 0x0F},
}

const maxInt32 = int32(0x7FFF_FFFF) // 2147483647
