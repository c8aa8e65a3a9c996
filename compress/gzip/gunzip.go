// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

// Package gzip implements reading and writing of gzip format compressed
// files, as specified in RFC 1952. Writing covers the fast compression
// levels 1-3; reading decodes any conforming stream, including multi-member
// concatenations and streams with stored blocks.
package gzip

import (
	"bufio"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"time"

	"github.com/fastgz/fastgz/compress/flate"
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8

	flagText    = 1 << 0
	flagHdrCrc  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4

	osUnknown = 255
)

var le = binary.LittleEndian

var (
	// ErrHeader is returned for input with an invalid or unsupported
	// header: wrong magic bytes, an unknown compression method, or a
	// damaged optional field.
	ErrHeader = errors.New("gzip: invalid header")

	// ErrChecksum is returned when a member's trailer does not match the
	// CRC-32 or size of the decompressed data. Output already produced is
	// retained; the format's convention is that partial output is not
	// retracted.
	ErrChecksum = errors.New("gzip: invalid checksum")
)

// Header holds the metadata of a gzip member.
//
// Strings must be Latin-1 per RFC 1952 and are carried byte for byte.
type Header struct {
	Comment string
	Extra   []byte
	ModTime time.Time
	Name    string
	OS      byte
}

// Reader decompresses a gzip stream. Header is populated from the current
// member after NewReader or Reader.Reset.
//
// By default a stream of several concatenated members reads as the
// concatenation of their data, and bytes after the last member that do not
// form a valid header are an error; see Multistream and
// TolerateTrailingGarbage.
type Reader struct {
	Header
	r            *bufio.Reader
	decompressor io.ReadCloser
	digest       uint32
	size         uint32
	err          error
	multistream  bool
	lenientTail  bool
	buf          [512]byte
}

// NewReader creates a Reader reading the given reader and parses the first
// member's header. It is the caller's responsibility to call Close when
// done.
func NewReader(r io.Reader) (*Reader, error) {
	z := new(Reader)
	if err := z.Reset(r); err != nil {
		return nil, err
	}
	return z, nil
}

// Reset discards the Reader's state and makes it equivalent to a new Reader
// reading from r. If r is a *bufio.Reader it is used directly, so the
// caller can observe any bytes remaining after the stream.
func (z *Reader) Reset(r io.Reader) error {
	*z = Reader{
		decompressor: z.decompressor,
		multistream:  true,
		r:            z.r,
	}
	if br, ok := r.(*bufio.Reader); ok {
		z.r = br
	} else if z.r != nil {
		z.r.Reset(r)
	} else {
		z.r = bufio.NewReader(r)
	}
	hdr, err := z.readHeader()
	if err != nil {
		z.err = err
		return err
	}
	z.Header = hdr
	return nil
}

// Multistream controls whether the Reader continues into the next member
// after one finishes. The default is true. When disabled, Read reports
// io.EOF at the end of the current member, leaving the underlying reader
// positioned on the next one; Reset then picks it up.
func (z *Reader) Multistream(ok bool) {
	z.multistream = ok
}

// TolerateTrailingGarbage controls the policy for bytes after a complete
// member that do not parse as another header. The strict default reports
// ErrHeader; tolerating them ends the stream at the last valid member, the
// way the gzip tool treats trailing garbage. Only effective in multistream
// mode.
func (z *Reader) TolerateTrailingGarbage(ok bool) {
	z.lenientTail = ok
}

// readString reads a null-terminated header string, folding it into the
// running header digest.
func (z *Reader) readString() (string, error) {
	b := z.buf[:0]
	for {
		c, err := z.r.ReadByte()
		if err != nil {
			return "", noEOF(err)
		}
		b = append(b, c)
		if c == 0 {
			z.digest = crc32.Update(z.digest, crc32.IEEETable, b)
			return string(b[:len(b)-1]), nil
		}
	}
}

// noEOF turns a mid-header io.EOF into io.ErrUnexpectedEOF: a truncated
// header is corruption, not a clean end.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readHeader parses one member header. io.EOF means no member starts here
// at all; any partial or malformed header is an error.
func (z *Reader) readHeader() (hdr Header, err error) {
	if _, err = io.ReadFull(z.r, z.buf[:10]); err != nil {
		// io.EOF passes through untouched: there was no member here.
		return hdr, err
	}
	if z.buf[0] != gzipID1 || z.buf[1] != gzipID2 || z.buf[2] != gzipDeflate {
		return hdr, ErrHeader
	}
	flg := z.buf[3]
	if t := le.Uint32(z.buf[4:8]); t > 0 {
		hdr.ModTime = time.Unix(int64(t), 0)
	}
	// z.buf[8] is the XFL level hint; informational only.
	hdr.OS = z.buf[9]
	z.digest = crc32.ChecksumIEEE(z.buf[:10])

	if flg&flagExtra != 0 {
		if _, err = io.ReadFull(z.r, z.buf[:2]); err != nil {
			return hdr, noEOF(err)
		}
		z.digest = crc32.Update(z.digest, crc32.IEEETable, z.buf[:2])
		data := make([]byte, le.Uint16(z.buf[:2]))
		if _, err = io.ReadFull(z.r, data); err != nil {
			return hdr, noEOF(err)
		}
		z.digest = crc32.Update(z.digest, crc32.IEEETable, data)
		hdr.Extra = data
	}
	if flg&flagName != 0 {
		if hdr.Name, err = z.readString(); err != nil {
			return hdr, err
		}
	}
	if flg&flagComment != 0 {
		if hdr.Comment, err = z.readString(); err != nil {
			return hdr, err
		}
	}
	if flg&flagHdrCrc != 0 {
		if _, err = io.ReadFull(z.r, z.buf[:2]); err != nil {
			return hdr, noEOF(err)
		}
		if le.Uint16(z.buf[:2]) != uint16(z.digest) {
			return hdr, ErrHeader
		}
	}

	z.digest = 0
	z.size = 0
	if z.decompressor == nil {
		z.decompressor = flate.NewReader(z.r)
	} else {
		z.decompressor.(flate.Resetter).Reset(z.r, nil)
	}
	return hdr, nil
}

// Read decompresses into p. Output is produced incrementally; bytes already
// returned remain valid even if a later Read reports an error for the
// member.
func (z *Reader) Read(p []byte) (n int, err error) {
	if z.err != nil {
		return 0, z.err
	}

	for n == 0 {
		n, err = z.decompressor.Read(p)
		z.digest = crc32.Update(z.digest, crc32.IEEETable, p[:n])
		z.size += uint32(n)
		if err != io.EOF {
			if err != nil {
				z.err = err
			}
			return n, err
		}

		// Member payload finished: check the trailer.
		if _, err := io.ReadFull(z.r, z.buf[:8]); err != nil {
			z.err = noEOF(err)
			return n, z.err
		}
		if le.Uint32(z.buf[:4]) != z.digest || le.Uint32(z.buf[4:8]) != z.size {
			z.err = ErrChecksum
			return n, z.err
		}

		if !z.multistream {
			z.err = io.EOF
			return n, z.err
		}

		// A stream may hold several concatenated members; try the next.
		hdr, err := z.readHeader()
		if err != nil {
			if err == io.EOF || z.lenientTail {
				err = io.EOF
			}
			z.err = err
			return n, z.err
		}
		z.Header = hdr
	}
	return n, nil
}

// Close closes the Reader. It does not close the underlying reader.
func (z *Reader) Close() error {
	if z.decompressor == nil {
		return nil
	}
	return z.decompressor.Close()
}
