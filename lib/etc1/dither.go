// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc1

// ditherOrder is the classic 4×4 Bayer matrix, row-major. It spreads the
// perturbation evenly over the tile so that neighboring blocks round their
// shared gradients in complementary directions.
var ditherOrder = [16]int32{
	0x0, 0x8, 0x2, 0xA,
	0xC, 0x4, 0xE, 0x6,
	0x3, 0xB, 0x1, 0x9,
	0xF, 0x7, 0xD, 0x5,
}

// ditherPixels perturbs a 4×4 tile's RGB samples in place, before
// quantization. The perturbation is a fixed function of position and of each
// sample's residual against the encoder's finest (5-bit) quantization grid:
// samples already on the grid have zero residual and are never touched, and
// a uniform tile is left entirely alone, so such blocks compress to the same
// 8 bytes with dithering on or off.
func ditherPixels(pixels *[64]byte) {
	uniform := true
	for i := 4; i < 64; i += 4 {
		if (pixels[i+0] != pixels[0]) ||
			(pixels[i+1] != pixels[1]) ||
			(pixels[i+2] != pixels[2]) {
			uniform = false
			break
		}
	}
	if uniform {
		return
	}

	for i := 0; i < 16; i++ {
		weight := (2 * ditherOrder[i]) - 15
		for c := 0; c < 3; c++ {
			v := int32(pixels[(4*i)+c])
			residual := int32(grid5Residual[v])
			pixels[(4*i)+c] = clamp[1023&uint32(v+((residual*weight)/16))]
		}
	}
}
