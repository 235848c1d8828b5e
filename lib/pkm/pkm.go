// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package pkm implements the PKM version 1 container format for ETC1
// textures: a 16 byte header stating width and height, followed by the raw
// ETC1 blocks.
package pkm

import (
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/ExplosBlue/etc1/lib/etc1"
)

// Magic is the byte string prefix of every PKM image file.
const Magic = "PKM "

func init() {
	image.RegisterFormat("pkm", Magic, Decode, DecodeConfig)
}

var (
	ErrBadArgument     = errors.New("pkm: bad argument")
	ErrNotAPKMFile     = errors.New("pkm: not a PKM file")
	ErrImageIsTooLarge = errors.New("pkm: image is too large")
)

// dataTypeETC1RGBNoMipmaps is the only data type PKM version 1 defines.
// Version 2 ("PKM 20") added the ETC2 and EAC types, which this package does
// not handle.
const dataTypeETC1RGBNoMipmaps = 0x0000

func decodeConfig(r io.Reader) (retConfig image.Config, retErr error) {
	buf := [16]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return image.Config{}, err
	} else if (buf[0] != Magic[0]) ||
		(buf[1] != Magic[1]) ||
		(buf[2] != Magic[2]) ||
		(buf[3] != Magic[3]) ||
		(buf[4] != 0x31) ||
		(buf[5] != 0x30) {
		return image.Config{}, ErrNotAPKMFile
	}

	if dataType := (uint32(buf[6]) << 8) | uint32(buf[7]); dataType != dataTypeETC1RGBNoMipmaps {
		return image.Config{}, ErrNotAPKMFile
	}

	roundedUpWidth := (uint32(buf[8]) << 8) | uint32(buf[9])
	roundedUpHeight := (uint32(buf[10]) << 8) | uint32(buf[11])
	width := (uint32(buf[12]) << 8) | uint32(buf[13])
	height := (uint32(buf[14]) << 8) | uint32(buf[15])

	if (((width + 3) &^ 3) != roundedUpWidth) ||
		(((height + 3) &^ 3) != roundedUpHeight) {
		return image.Config{}, ErrNotAPKMFile
	}

	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(width),
		Height:     int(height),
	}, nil
}

// DecodeConfig reads a PKM image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	return decodeConfig(r)
}

// Decode reads a PKM image from r.
func Decode(r io.Reader) (image.Image, error) {
	config, err := decodeConfig(r)
	if err != nil {
		return nil, err
	}
	m, err := etc1.NewImage(config.Width, config.Height)
	if err != nil {
		return nil, err
	}
	if err = etc1.Decode(m, r); err != nil {
		return nil, err
	}
	return m.SubImage(image.Rect(0, 0, config.Width, config.Height)), nil
}

// EncodeOptions are optional arguments to Encode. A nil *EncodeOptions
// means to use the default configuration: etc1.QualityHigh, no dithering.
type EncodeOptions struct {
	// Quality selects the encoder's search breadth. Note that the zero
	// value is etc1.QualityLow.
	Quality etc1.Quality

	// Dithering perturbs pixels before quantization to diffuse banding.
	Dithering bool
}

// Encode writes src to w in the PKM format.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	if (w == nil) || (src == nil) {
		return ErrBadArgument
	}

	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW > 65532) || (bH > 65532) {
		return ErrImageIsTooLarge
	}

	etcOptions := &etc1.EncodeOptions{Quality: etc1.QualityHigh}
	if options != nil {
		etcOptions.Quality = options.Quality
		etcOptions.Dithering = options.Dithering
	}

	buf := [16]byte{}
	copy(buf[:4], Magic)
	buf[0x04] = 0x31
	buf[0x05] = 0x30
	buf[0x06] = uint8(dataTypeETC1RGBNoMipmaps >> 8)
	buf[0x07] = uint8(dataTypeETC1RGBNoMipmaps >> 0)

	roundedUpW := (bW + 3) &^ 3
	roundedUpH := (bH + 3) &^ 3
	buf[0x08] = uint8(roundedUpW >> 8)
	buf[0x09] = uint8(roundedUpW >> 0)
	buf[0x0A] = uint8(roundedUpH >> 8)
	buf[0x0B] = uint8(roundedUpH >> 0)
	buf[0x0C] = uint8(bW >> 8)
	buf[0x0D] = uint8(bW >> 0)
	buf[0x0E] = uint8(bH >> 8)
	buf[0x0F] = uint8(bH >> 0)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	return etc1.Encode(w, src, etcOptions)
}
