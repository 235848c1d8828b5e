// Copyright 2025 The Etc1 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package etc1 implements the ETC1 (Ericsson Texture Compression) lossy
// texture format.
//
// ETC1 compresses each 4×4 tile of RGB pixels to a fixed 8 bytes. Blocks are
// independent, so callers may compress or decompress any number of blocks
// concurrently. ETC1 stores no alpha; the input alpha channel is ignored.
//
// ETC1 is often wrapped in .pkm container files (iPACKMAN was an earlier name
// for ETC), which prepend a small (16 byte) header stating width and height.
//
// ETC1 is specified at
// https://registry.khronos.org/DataFormat/specs/1.3/dataformat.1.3.html#ETC1
package etc1

import (
	"errors"
)

var (
	ErrBadArgument     = errors.New("etc1: bad argument")
	ErrImageIsTooLarge = errors.New("etc1: image is too large")
)

const (
	// BlockWidth and BlockHeight are the pixel dimensions of one block.
	BlockWidth  = 4
	BlockHeight = 4

	// BytesPerBlock is the size of one compressed block.
	BytesPerBlock = 8
)

// OpenGLInternalFormat is the OpenGL internalFormat enum value for ETC1,
// suitable for passing to the glCompressedTexImage2D function.
const OpenGLInternalFormat = 0x8D64 // GL_ETC1_RGB8_OES

// Quality selects how broadly the encoder searches for each block's
// configuration. Higher values are slower and lose less.
type Quality uint8

const (
	QualityLow    = Quality(0)
	QualityMedium = Quality(1)
	QualityHigh   = Quality(2)
)

// QualityFromInt translates an external integer quality code to a Quality.
//
// Unrecognized codes map to QualityHigh. That is a deliberate policy, so that
// out-of-range values from foreign callers degrade to slower-but-better
// rather than to anything undefined.
func QualityFromInt(code int) Quality {
	switch code {
	case 0:
		return QualityLow
	case 1:
		return QualityMedium
	}
	return QualityHigh
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	}
	return "high"
}

// Initialize builds the package's immutable lookup tables.
//
// Calling it is optional: CompressBlock and DecompressBlock build the tables
// on first use, synchronizing all callers. An explicit call lets a program
// pay that one-time cost before spawning worker goroutines. Initialize is
// idempotent and safe for concurrent use.
func Initialize() {
	ensureTables()
}
