// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"io"

	"github.com/fastgz/fastgz/compress/flate/internal/deflate"
)

// Compression levels. The encoder implements the fast band, levels 1-3;
// DefaultCompression selects level 2 as the speed/ratio balance.
const (
	BestSpeed          = 1
	DefaultCompression = -1
)

// Writer compresses data written to it, emitting a raw DEFLATE stream to an
// underlying writer.
type Writer struct {
	c *deflate.Compressor
}

// NewWriter returns a new Writer compressing at the given level. Levels 1
// through 3 and DefaultCompression are valid; anything else is an error.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	if level == DefaultCompression {
		level = 2
	}
	c, err := deflate.NewCompressor(w, level)
	if err != nil {
		return nil, err
	}
	return &Writer{c: c}, nil
}

// Write compresses p. The data is not necessarily forwarded until the
// Writer is flushed or closed.
func (w *Writer) Write(p []byte) (int, error) {
	return w.c.Write(p)
}

// Flush compresses pending input to the underlying writer and byte-aligns
// the stream with an empty stored block, so a decoder can recover
// everything written so far. It does not terminate the stream.
func (w *Writer) Flush() error {
	return w.c.Flush()
}

// Close flushes and terminates the stream with a final block. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	return w.c.Close()
}

// Reset discards the Writer's state and makes it equivalent to a new Writer
// at the same level, writing to dst.
func (w *Writer) Reset(dst io.Writer) {
	w.c.Reset(dst)
}
