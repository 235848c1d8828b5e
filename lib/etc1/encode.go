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

// CompressBlock compresses one 4×4 tile of RGBA pixels, supplied row-major
// as 64 bytes, into an 8-byte ETC1 block. The alpha bytes are ignored.
//
// The result is a pure function of (pixels, quality, dithering): the same
// inputs always produce the same 8 bytes, and concurrent calls are safe.
func CompressBlock(pixels *[64]byte, quality Quality, dithering bool) (block [8]byte) {
	ensureTables()
	e := encoder{}
	e.pixels = *pixels
	if dithering {
		ditherPixels(&e.pixels)
	}
	writeU64BE(block[:], e.compress(quality))
	return block
}

// EncodeOptions are optional arguments to Encode. A nil *EncodeOptions means
// to use the default configuration: QualityHigh, no dithering.
type EncodeOptions struct {
	// Quality selects the encoder's search breadth. Note that the zero
	// value is QualityLow.
	Quality Quality

	// Dithering perturbs pixels before quantization to diffuse banding
	// across neighboring blocks.
	Dithering bool
}

// Encode writes src to dst as a sequence of ETC1 blocks, top-to-bottom then
// left-to-right in units of 4×4 pixel tiles, without any container header.
//
// Pixels right of or below the image (when the width or height is not a
// multiple of 4) are substituted with the nearest in-bound pixel.
//
// options may be nil, which means to use the default configuration.
func Encode(dst io.Writer, src image.Image, options *EncodeOptions) error {
	if (dst == nil) || (src == nil) {
		return ErrBadArgument
	}
	quality, dithering := QualityHigh, false
	if options != nil {
		quality, dithering = options.Quality, options.Dithering
	}

	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW > 65532) || (bH > 65532) {
		return ErrImageIsTooLarge
	}

	ensureTables()
	e, bufJ := &encoder{}, 0
	extract := makeExtract(&e.pixels, src)

	for blockY := 0; blockY < bH; blockY += 4 {
		for blockX := 0; blockX < bW; blockX += 4 {
			extract(b.Min.X+blockX, b.Min.Y+blockY)
			if dithering {
				ditherPixels(&e.pixels)
			}
			writeU64BE(e.buf[bufJ:], e.compress(quality))
			bufJ += 8

			if bufJ >= encoderBufferSize {
				if _, err := dst.Write(e.buf[:]); err != nil {
					return err
				}
				bufJ = 0
			}
		}
	}

	if bufJ > 0 {
		if _, err := dst.Write(e.buf[:bufJ]); err != nil {
			return err
		}
	}
	return nil
}

const encoderBufferSize = 4096 - 64 - 64

type encoder struct {
	pixels [64]byte
	buf    [encoderBufferSize]byte
}

// subblockChoice is one fully evaluated configuration for an 8-pixel
// subblock: a quantized base color, the best modifier table for it, the
// per-pixel index bits and the resulting squared error.
type subblockChoice struct {
	levels  [3]int32
	table   uint32
	indexes uint32
	loss    int32
}

// compress searches flip orientation × color mode × quantization candidates
// and packs the minimal-error configuration. Candidates are enumerated diff
// mode first, then flip=0 first, and only a strictly smaller error replaces
// the incumbent, so ties resolve in that order.
func (e *encoder) compress(quality Quality) uint64 {
	if code, ok := e.compressSolid(); ok {
		return code
	}

	bestCode, bestLoss := uint64(0), maxInt32

	// Diff mode: both base colors on the 5-bit grid, the second stored as a
	// signed per-channel delta in [-4, +3]. Candidate pairs violating that
	// range cannot be represented and are skipped.
	if quality != QualityLow {
		for flipBit := 0; flipBit < 2; flipBit++ {
			cands0, n0 := e.subblockCandidates((2*flipBit)+0, true, quality)
			cands1, n1 := e.subblockCandidates((2*flipBit)+1, true, quality)

			for i := 0; i < n0; i++ {
				for j := 0; j < n1; j++ {
					c0, c1 := &cands0[i], &cands1[j]
					representable := true
					for c := 0; c < 3; c++ {
						d := c1.levels[c] - c0.levels[c]
						if (d < -4) || (d > +3) {
							representable = false
							break
						}
					}
					if !representable {
						continue
					}
					if loss := c0.loss + c1.loss; bestLoss > loss {
						bestLoss = loss
						bestCode = packDiffCode(c0, c1, flipBit)
					}
				}
			}
		}
	}

	// Individual mode: independent 4-bit base colors, no cross-subblock
	// constraint, so each subblock's best candidate stands alone.
	numFlips := 2
	if quality == QualityLow {
		numFlips = 1
	}
	for flipBit := 0; flipBit < numFlips; flipBit++ {
		c0 := e.bestSubblockCandidate((2*flipBit)+0, quality)
		c1 := e.bestSubblockCandidate((2*flipBit)+1, quality)
		if loss := c0.loss + c1.loss; bestLoss > loss {
			bestLoss = loss
			bestCode = packIndividualCode(&c0, &c1, flipBit)
		}
	}

	if quality == QualityHigh {
		bestCode, bestLoss = e.refine(bestCode, bestLoss)
	}
	return bestCode
}

// compressSolid handles blocks whose 16 pixels share one color. For those,
// an exhaustive scan over both quantization grids, all 8 tables and all 4
// index values is cheap and finds the best (often exact) reproduction,
// which the general mean-based search can miss.
func (e *encoder) compressSolid() (uint64, bool) {
	r, g, b := e.pixels[0], e.pixels[1], e.pixels[2]
	for i := 4; i < 64; i += 4 {
		if (e.pixels[i+0] != r) || (e.pixels[i+1] != g) || (e.pixels[i+2] != b) {
			return 0, false
		}
	}
	want := [3]int32{int32(r), int32(g), int32(b)}

	bestLoss := maxInt32
	bestFive := false
	bestTable, bestIndex := uint32(0), uint32(0)
	bestLevels := [3]int32{}

	// The 5-bit grid is scanned first so that ties pack as diff mode.
	for _, fiveBit := range [2]bool{true, false} {
		levelMax := int32(15)
		if fiveBit {
			levelMax = 31
		}
		for table := uint32(0); table < 8; table++ {
			for index := uint32(0); index < 4; index++ {
				mod := modifierTables[table][index]
				loss := int32(0)
				levels := [3]int32{}
				for c := 0; c < 3; c++ {
					bestAbs, bestLevel := maxInt32, int32(0)
					for level := int32(0); level <= levelMax; level++ {
						v := int32(expand4[level])
						if fiveBit {
							v = int32(expand5[level])
						}
						d := int32(clamp[1023&uint32(v+mod)]) - want[c]
						if d < 0 {
							d = -d
						}
						if bestAbs > d {
							bestAbs, bestLevel = d, level
						}
					}
					levels[c] = bestLevel
					loss += bestAbs * bestAbs
				}
				if bestLoss > loss {
					bestLoss = loss
					bestFive, bestTable, bestIndex, bestLevels = fiveBit, table, index, levels
				}
			}
		}
	}

	indexes := uint64(0)
	if (bestIndex & 1) != 0 {
		indexes |= 0x0000_FFFF
	}
	if (bestIndex & 2) != 0 {
		indexes |= 0xFFFF_0000
	}

	if bestFive {
		return 0 |
			(uint64(bestLevels[0]) << 59) |
			(uint64(bestLevels[1]) << 51) |
			(uint64(bestLevels[2]) << 43) |
			(uint64(bestTable) << 37) |
			(uint64(bestTable) << 34) |
			(1 << 33) |
			indexes, true
	}
	return 0 |
		(uint64(bestLevels[0]) << 60) |
		(uint64(bestLevels[0]) << 56) |
		(uint64(bestLevels[1]) << 52) |
		(uint64(bestLevels[1]) << 48) |
		(uint64(bestLevels[2]) << 44) |
		(uint64(bestLevels[2]) << 40) |
		(uint64(bestTable) << 37) |
		(uint64(bestTable) << 34) |
		indexes, true
}

func (e *encoder) calculateAverages(orientation int) [3]float64 {
	sums := [3]int32{}
	for i := 0; i < 8; i++ {
		offset := perOrientationPixelsOffsets[orientation][i]
		sums[0] += int32(e.pixels[offset+0])
		sums[1] += int32(e.pixels[offset+1])
		sums[2] += int32(e.pixels[offset+2])
	}
	return [3]float64{
		float64(sums[0]) / 8,
		float64(sums[1]) / 8,
		float64(sums[2]) / 8,
	}
}

// subblockCandidates quantizes a subblock's average color and evaluates the
// resulting base-color candidates. Low and medium quality emit the single
// rounded color; high quality emits the surrounding grid corners (floor and
// ceiling per channel) to escape rounding local minima.
func (e *encoder) subblockCandidates(orientation int, fiveBit bool, quality Quality) (cands [8]subblockChoice, n int) {
	avgs := e.calculateAverages(orientation)
	levelMax := int32(15)
	if fiveBit {
		levelMax = 31
	}

	candidateLevels := [8][3]int32{}
	if quality == QualityHigh {
		lo := [3]int32{
			int32((avgs[0] * float64(levelMax)) / 255),
			int32((avgs[1] * float64(levelMax)) / 255),
			int32((avgs[2] * float64(levelMax)) / 255),
		}
		hi := [3]int32{
			min(levelMax, lo[0]+1),
			min(levelMax, lo[1]+1),
			min(levelMax, lo[2]+1),
		}
	cornerLoop:
		for i := 0; i < 8; i++ {
			levels := [3]int32{lo[0], lo[1], lo[2]}
			if (i & 1) != 0 {
				levels[0] = hi[0]
			}
			if (i & 2) != 0 {
				levels[1] = hi[1]
			}
			if (i & 4) != 0 {
				levels[2] = hi[2]
			}
			for j := 0; j < n; j++ {
				if candidateLevels[j] == levels {
					continue cornerLoop
				}
			}
			candidateLevels[n] = levels
			n++
		}
	} else {
		candidateLevels[0] = quantizeLevels(avgs, levelMax)
		n = 1
	}

	for i := 0; i < n; i++ {
		base := expandLevels(candidateLevels[i], fiveBit)
		table, indexes, loss := e.encodeSubblock(orientation, &base)
		cands[i] = subblockChoice{candidateLevels[i], table, indexes, loss}
	}
	return cands, n
}

func (e *encoder) bestSubblockCandidate(orientation int, quality Quality) subblockChoice {
	cands, n := e.subblockCandidates(orientation, false, quality)
	best := cands[0]
	for i := 1; i < n; i++ {
		if best.loss > cands[i].loss {
			best = cands[i]
		}
	}
	return best
}

// encodeSubblock picks the modifier table, and per-pixel index bits,
// minimizing the subblock's squared error against the given base color.
func (e *encoder) encodeSubblock(orientation int, base *[3]int32) (table uint32, indexes uint32, loss int32) {
	loss = maxInt32
	for t := uint32(0); t < 8; t++ {
		indexes0, loss0 := e.encodeSubblockTable(orientation, base, t)
		if loss > loss0 {
			table, indexes, loss = t, indexes0, loss0
		}
	}
	return table, indexes, loss
}

func (e *encoder) encodeSubblockTable(orientation int, base *[3]int32, table uint32) (indexes uint32, loss int32) {
	for i := 0; i < 8; i++ {
		offset := perOrientationPixelsOffsets[orientation][i]
		orig0 := int32(e.pixels[offset+0])
		orig1 := int32(e.pixels[offset+1])
		orig2 := int32(e.pixels[offset+2])

		bestJ, bestOneLoss := uint32(0), maxInt32
		for j := uint32(0); j < 4; j++ {
			mod := modifierTables[table][j]
			delta0 := int32(clamp[1023&uint32(base[0]+mod)]) - orig0
			delta1 := int32(clamp[1023&uint32(base[1]+mod)]) - orig1
			delta2 := int32(clamp[1023&uint32(base[2]+mod)]) - orig2
			oneLoss := (delta0 * delta0) + (delta1 * delta1) + (delta2 * delta2)
			if bestOneLoss > oneLoss {
				bestJ, bestOneLoss = j, oneLoss
			}
		}

		shift := perOrientationShifts[orientation][i]
		indexes |= (bestJ & 2) << (shift + 0x0F)
		indexes |= (bestJ & 1) << (shift + 0x00)
		loss += bestOneLoss
	}
	return indexes, loss
}

// refine re-derives each subblock's base color from the winning
// configuration's already-chosen per-pixel modifiers, requantizes it and
// reselects tables. The result replaces the incumbent only on a strict
// improvement, and only if diff mode's delta range still holds.
func (e *encoder) refine(bestCode uint64, bestLoss int32) (uint64, int32) {
	diff := ((bestCode >> 33) & 1) != 0
	flipBit := int((bestCode >> 32) & 1)
	tables := [2]uint32{
		uint32((bestCode >> 37) & 7),
		uint32((bestCode >> 34) & 7),
	}
	levelMax := int32(15)
	if diff {
		levelMax = 31
	}

	cands := [2]subblockChoice{}
	for half := 0; half < 2; half++ {
		orientation := (2 * flipBit) + half
		sums := [3]float64{}
		for i := 0; i < 8; i++ {
			offset := perOrientationPixelsOffsets[orientation][i]
			shift := perOrientationShifts[orientation][i]
			index := ((bestCode >> shift) & 1) | ((bestCode >> (shift + 0x0F)) & 2)
			mod := modifierTables[tables[half]][index]
			sums[0] += float64(int32(e.pixels[offset+0]) - mod)
			sums[1] += float64(int32(e.pixels[offset+1]) - mod)
			sums[2] += float64(int32(e.pixels[offset+2]) - mod)
		}
		avgs := [3]float64{
			max(0, min(255, sums[0]/8)),
			max(0, min(255, sums[1]/8)),
			max(0, min(255, sums[2]/8)),
		}
		levels := quantizeLevels(avgs, levelMax)
		base := expandLevels(levels, diff)
		table, indexes, loss := e.encodeSubblock(orientation, &base)
		cands[half] = subblockChoice{levels, table, indexes, loss}
	}

	loss := cands[0].loss + cands[1].loss
	if loss >= bestLoss {
		return bestCode, bestLoss
	}
	if diff {
		for c := 0; c < 3; c++ {
			if d := cands[1].levels[c] - cands[0].levels[c]; (d < -4) || (d > +3) {
				return bestCode, bestLoss
			}
		}
		return packDiffCode(&cands[0], &cands[1], flipBit), loss
	}
	return packIndividualCode(&cands[0], &cands[1], flipBit), loss
}

func packDiffCode(c0 *subblockChoice, c1 *subblockChoice, flipBit int) uint64 {
	diff0 := c1.levels[0] - c0.levels[0]
	diff1 := c1.levels[1] - c0.levels[1]
	diff2 := c1.levels[2] - c0.levels[2]

	return 0 |
		(uint64(c0.levels[0]) << 59) |
		(uint64(diff0&7) << 56) |
		(uint64(c0.levels[1]) << 51) |
		(uint64(diff1&7) << 48) |
		(uint64(c0.levels[2]) << 43) |
		(uint64(diff2&7) << 40) |
		(uint64(c0.table) << 37) |
		(uint64(c1.table) << 34) |
		(1 << 33) |
		(uint64(flipBit) << 32) |
		uint64(c1.indexes) |
		uint64(c0.indexes)
}

func packIndividualCode(c0 *subblockChoice, c1 *subblockChoice, flipBit int) uint64 {
	return 0 |
		(uint64(c0.levels[0]) << 60) |
		(uint64(c1.levels[0]) << 56) |
		(uint64(c0.levels[1]) << 52) |
		(uint64(c1.levels[1]) << 48) |
		(uint64(c0.levels[2]) << 44) |
		(uint64(c1.levels[2]) << 40) |
		(uint64(c0.table) << 37) |
		(uint64(c1.table) << 34) |
		(uint64(flipBit) << 32) |
		uint64(c1.indexes) |
		uint64(c0.indexes)
}

func quantizeLevels(avgs [3]float64, levelMax int32) [3]int32 {
	return [3]int32{
		int32(((avgs[0] * float64(levelMax)) / 255) + 0.5),
		int32(((avgs[1] * float64(levelMax)) / 255) + 0.5),
		int32(((avgs[2] * float64(levelMax)) / 255) + 0.5),
	}
}

func expandLevels(levels [3]int32, fiveBit bool) [3]int32 {
	if fiveBit {
		return [3]int32{
			int32(expand5[levels[0]]),
			int32(expand5[levels[1]]),
			int32(expand5[levels[2]]),
		}
	}
	return [3]int32{
		int32(expand4[levels[0]]),
		int32(expand4[levels[1]]),
		int32(expand4[levels[2]]),
	}
}

func writeU64BE(buf []byte, x uint64) {
	buf = buf[:8]
	buf[0] = uint8(x >> 56)
	buf[1] = uint8(x >> 48)
	buf[2] = uint8(x >> 40)
	buf[3] = uint8(x >> 32)
	buf[4] = uint8(x >> 24)
	buf[5] = uint8(x >> 16)
	buf[6] = uint8(x >> 8)
	buf[7] = uint8(x >> 0)
}
