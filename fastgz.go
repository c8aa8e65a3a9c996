// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

// Package fastgz provides gzip and DEFLATE compression packages tuned for
// the fast compression band, levels 1 through 3, together with a full
// decoder for any conforming stream. The subpackages mirror the standard
// library's compress/gzip and compress/flate APIs so they can serve as
// drop-in replacements where only the fast levels are needed.
package fastgz

import (
	"io"

	"github.com/fastgz/fastgz/compress/gzip"
)

// Gzip compresses src into dst as a single gzip member at the given level.
// Levels 1 through 3 and gzip.DefaultCompression are valid.
func Gzip(dst io.Writer, src io.Reader, level int) error {
	w, err := gzip.NewWriterLevel(dst, level)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, src); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Gunzip decompresses the gzip stream in src into dst, following
// concatenated members to the end. It returns the number of bytes written.
func Gunzip(dst io.Writer, src io.Reader) (int64, error) {
	r, err := gzip.NewReader(src)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return n, err
}
