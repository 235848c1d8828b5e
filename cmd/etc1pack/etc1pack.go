// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// etc1pack decodes and encodes the ETC1 (Ericsson Texture Compression) lossy
// image file format.
package main

import (
	"errors"
	"flag"
	"image"
	"image/png"
	"os"

	"github.com/ExplosBlue/etc1/internal/nie"
	"github.com/ExplosBlue/etc1/lib/etc1"
	"github.com/ExplosBlue/etc1/lib/pkm"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	decodeFlag  = flag.Bool("decode", false, "whether to decode the input")
	encodeFlag  = flag.Bool("encode", false, "whether to encode the input")
	ditherFlag  = flag.Bool("dither", false, "whether to dither when encoding")
	outputFlag  = flag.String("output", "", "output format")
	qualityFlag = flag.String("quality", "high", "encoder quality")
)

const usageStr = `etc1pack decodes and encodes the ETC1 lossy image file format.

Usage: choose one of

    etc1pack -decode [path]
    etc1pack -encode [path]

The path to the input image file is optional. If omitted, stdin is read.

When decoding you can also pass one of these flags (before the path):

    -output=nie-bn4
    -output=png (this is the default)

When encoding you can also pass these flags (before the path):

    -quality=low
    -quality=medium
    -quality=high (this is the default)
    -dither

Decode inputs PKM and outputs NIE/PNG.
Encode inputs BMP, GIF, JPEG, PNG, TIFF or WEBP and outputs PKM.

The output image is written to stdout.
`

var (
	ErrBadOutputFlag  = errors.New("main: bad -output flag")
	ErrBadQualityFlag = errors.New("main: bad -quality flag")
)

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	if *decodeFlag && !*encodeFlag {
		return decode(inFile)
	}
	if !*decodeFlag && *encodeFlag {
		return encode(inFile)
	}
	return errors.New("must specify exactly one of -decode, -encode or -help")
}

func decode(inFile *os.File) error {
	switch *outputFlag {
	case "", "nie-bn4", "png":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	src, err := pkm.Decode(inFile)
	if err != nil {
		return err
	}
	if *outputFlag == "nie-bn4" {
		dst, err := nie.EncodeBN4(src)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(dst)
		return err
	}
	return png.Encode(os.Stdout, src)
}

func encode(inFile *os.File) error {
	quality := etc1.QualityHigh
	switch *qualityFlag {
	case "low":
		quality = etc1.QualityLow
	case "medium":
		quality = etc1.QualityMedium
	case "", "high":
		// No-op.
	default:
		return ErrBadQualityFlag
	}

	src, _, err := image.Decode(inFile)
	if err != nil {
		return err
	}
	return pkm.Encode(os.Stdout, src, &pkm.EncodeOptions{
		Quality:   quality,
		Dithering: *ditherFlag,
	})
}
