// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package gzip

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/fastgz/fastgz/compress/flate"
)

// Compression levels mirrored from compress/flate.
const (
	BestSpeed          = flate.BestSpeed
	DefaultCompression = flate.DefaultCompression
)

// Writer compresses data into a gzip member: the 10-byte header, optional
// name/comment/extra fields, a DEFLATE payload, and the CRC-32/ISIZE
// trailer. Closing and resetting the same Writer appends further members;
// conforming readers decode them back to back.
type Writer struct {
	Header
	w          io.Writer
	level      int
	compressor *flate.Writer
	digest     uint32
	size       uint32
	wroteHdr   bool
	closed     bool
	err        error
	buf        [10]byte
}

// NewWriter returns a Writer compressing at DefaultCompression.
//
// Callers wanting to embed metadata set the Header fields before the first
// Write. ModTime's zero value writes the 0 sentinel, which keeps output
// byte-reproducible; set a real time to embed it.
func NewWriter(w io.Writer) *Writer {
	z, _ := NewWriterLevel(w, DefaultCompression)
	return z
}

// NewWriterLevel is like NewWriter with an explicit compression level.
func NewWriterLevel(w io.Writer, level int) (*Writer, error) {
	if level != DefaultCompression && (level < 1 || level > 3) {
		return nil, fmt.Errorf("gzip: invalid compression level: %d", level)
	}
	z := new(Writer)
	z.level = level
	z.init(w)
	return z, nil
}

func (z *Writer) init(w io.Writer) {
	compressor := z.compressor
	if compressor != nil {
		compressor.Reset(w)
	}
	*z = Writer{
		Header:     Header{OS: osUnknown},
		w:          w,
		level:      z.level,
		compressor: compressor,
	}
}

// Reset discards the Writer's state and makes it equivalent to a new Writer
// at the same level, writing to w.
func (z *Writer) Reset(w io.Writer) {
	z.init(w)
}

var errWriterClosed = errors.New("gzip: writer is closed")

// extraFlags encodes the level hint observable in the header: 2 marks the
// slowest/best setting, 4 the fastest ones.
func extraFlags(level int) byte {
	switch {
	case level >= 9:
		return 2
	case level >= 1 && level <= 2:
		return 4
	}
	return 0
}

func (z *Writer) writeHeader() error {
	level := z.level
	if level == DefaultCompression {
		level = 2
	}
	z.buf = [10]byte{0: gzipID1, 1: gzipID2, 2: gzipDeflate}
	if z.Extra != nil {
		z.buf[3] |= flagExtra
	}
	if z.Name != "" {
		z.buf[3] |= flagName
	}
	if z.Comment != "" {
		z.buf[3] |= flagComment
	}
	if !z.ModTime.IsZero() && z.ModTime.After(time.Unix(0, 0)) {
		le.PutUint32(z.buf[4:8], uint32(z.ModTime.Unix()))
	}
	z.buf[8] = extraFlags(level)
	z.buf[9] = z.OS
	if _, err := z.w.Write(z.buf[:10]); err != nil {
		return err
	}
	if z.Extra != nil {
		if len(z.Extra) > 0xffff {
			return errInvalidField
		}
		le.PutUint16(z.buf[:2], uint16(len(z.Extra)))
		if _, err := z.w.Write(z.buf[:2]); err != nil {
			return err
		}
		if _, err := z.w.Write(z.Extra); err != nil {
			return err
		}
	}
	if z.Name != "" {
		if err := z.writeString(z.Name); err != nil {
			return err
		}
	}
	if z.Comment != "" {
		if err := z.writeString(z.Comment); err != nil {
			return err
		}
	}
	if z.compressor == nil {
		z.compressor, _ = flate.NewWriter(z.w, z.level)
	}
	return nil
}

var errInvalidField = errors.New("gzip: invalid header field")

// writeString writes a null-terminated header string. The format stores
// Latin-1; anything with a NUL or beyond one byte per rune is rejected.
func (z *Writer) writeString(s string) error {
	needconv := false
	for _, v := range s {
		if v == 0 || v > 0xff {
			return errInvalidField
		}
		if v > 0x7f {
			needconv = true
		}
	}
	var err error
	if needconv {
		b := make([]byte, 0, len(s))
		for _, v := range s {
			b = append(b, byte(v))
		}
		_, err = z.w.Write(b)
	} else {
		_, err = io.WriteString(z.w, s)
	}
	if err != nil {
		return err
	}
	z.buf[0] = 0
	_, err = z.w.Write(z.buf[:1])
	return err
}

// Write compresses p. Compression itself cannot fail; any error is an I/O
// error from the underlying writer.
func (z *Writer) Write(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	if z.closed {
		return 0, errWriterClosed
	}
	if !z.wroteHdr {
		z.wroteHdr = true
		if err := z.writeHeader(); err != nil {
			z.err = err
			return 0, err
		}
	}
	z.size += uint32(len(p))
	z.digest = crc32.Update(z.digest, crc32.IEEETable, p)
	n, err := z.compressor.Write(p)
	if err != nil {
		z.err = err
	}
	return n, err
}

// Flush forwards pending compressed data to the underlying writer,
// byte-aligned, without ending the member.
func (z *Writer) Flush() error {
	if z.err != nil {
		return z.err
	}
	if z.closed {
		return errWriterClosed
	}
	if !z.wroteHdr {
		if _, err := z.Write(nil); err != nil {
			return err
		}
	}
	if err := z.compressor.Flush(); err != nil {
		z.err = err
	}
	return z.err
}

// Close finishes the member by terminating the DEFLATE stream and writing
// the CRC-32 and size trailer. It does not close the underlying writer.
func (z *Writer) Close() error {
	if z.err != nil {
		return z.err
	}
	if z.closed {
		return nil
	}
	z.closed = true
	if !z.wroteHdr {
		z.wroteHdr = true
		if err := z.writeHeader(); err != nil {
			z.err = err
			return err
		}
	}
	if err := z.compressor.Close(); err != nil {
		z.err = err
		return err
	}
	le.PutUint32(z.buf[:4], z.digest)
	le.PutUint32(z.buf[4:8], z.size)
	if _, err := z.w.Write(z.buf[:8]); err != nil {
		z.err = err
	}
	return z.err
}
