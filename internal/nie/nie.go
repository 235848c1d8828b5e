// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package nie implements the NIE (Naive) image file format.
//
// It is an incomplete implementation (and hence an internal package), only
// providing what's needed by the github.com/ExplosBlue/etc1 module: the BN4
// profile, 8 bits per channel, which is all an ETC1 decoding can carry.
//
// NIE is specified at
// https://github.com/google/wuffs/blob/main/doc/spec/nie-spec.md
package nie

import (
	"errors"
	"image"
)

var (
	ErrUnsupportedImageType = errors.New("nie: unsupported image type")
)

// EncodeBN4 encodes m as a NIE file in BGRA order, non-premultiplied alpha,
// 4 bytes per pixel (8 bits per channel).
func EncodeBN4(m image.Image) (ret []byte, retErr error) {
	b := m.Bounds()
	ret = append(ret, 0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', '4')
	ret = appendU32LE(ret, uint32(b.Dx()))
	ret = appendU32LE(ret, uint32(b.Dy()))

	switch m := m.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.NRGBAAt(x, y)
				ret = append(ret, at.B, at.G, at.R, at.A)
			}
		}
		return ret, nil

	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.RGBAAt(x, y)
				if (at.A != 0x00) && (at.A != 0xFF) {
					return nil, ErrUnsupportedImageType
				}
				ret = append(ret, at.B, at.G, at.R, at.A)
			}
		}
		return ret, nil
	}

	return nil, ErrUnsupportedImageType
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
