// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"errors"
	"fmt"
)

// Structural decode failures. All of them are terminal for the stream being
// decoded; the decompressor reports them wrapped in a *CorruptError carrying
// the input offset and never touches memory out of bounds.
var (
	// ErrInvalidBlockType reports a block header using the reserved type.
	ErrInvalidBlockType = errors.New("flate: invalid block type")

	// ErrInvalidCode reports a Huffman code with no assigned symbol, or a
	// code length table that does not describe a usable code.
	ErrInvalidCode = errors.New("flate: invalid huffman code")

	// ErrDistanceTooFar reports a back-reference past the start of the
	// produced output.
	ErrDistanceTooFar = errors.New("flate: distance exceeds window")
)

// CorruptError is the error type returned for malformed input. Offset is
// the number of input bytes consumed when the problem surfaced. Reason is
// one of the sentinel errors above, or io.ErrUnexpectedEOF for a stream
// that ends mid-symbol; errors.Is sees through to it.
type CorruptError struct {
	Offset int64
	Reason error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("flate: corrupt input at offset %d: %v", e.Offset, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return e.Reason
}
