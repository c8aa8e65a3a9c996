// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

// bitWriter packs minimal-width codes LSB-first into a byte buffer. Whole
// bytes drain into buf as they complete; up to 7 bits stay pending between
// blocks, since only stored blocks are byte aligned.
type bitWriter struct {
	buf  []byte
	bits uint64
	n    uint
}

func (b *bitWriter) reset() {
	b.buf = b.buf[:0]
	b.bits = 0
	b.n = 0
}

// writeBits appends the low width bits of code. width must be at most 32.
func (b *bitWriter) writeBits(code uint32, width uint8) {
	b.bits |= uint64(code) << b.n
	b.n += uint(width)
	for b.n >= 8 {
		b.buf = append(b.buf, byte(b.bits))
		b.bits >>= 8
		b.n -= 8
	}
}

// alignByte pads the current byte with zero bits. A no-op when already
// aligned.
func (b *bitWriter) alignByte() {
	if b.n == 0 {
		return
	}
	b.buf = append(b.buf, byte(b.bits))
	b.bits = 0
	b.n = 0
}

// writeBytes appends raw bytes. The writer must be byte aligned.
func (b *bitWriter) writeBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// take returns the completed bytes and truncates the buffer; pending bits
// carry over to the next block.
func (b *bitWriter) take() []byte {
	out := b.buf
	b.buf = b.buf[:0]
	return out
}
