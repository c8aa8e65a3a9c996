// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

// Package deflate implements the compression side of the DEFLATE format for
// the fast levels 1-3: hash-chain LZ77 match finding and block encoding
// with stored, fixed and dynamic Huffman forms chosen by counted bit cost.
package deflate

import (
	"errors"
	"fmt"
	"io"
)

const (
	// The working buffer holds one full window of history plus one window
	// of fresh input, with headroom so tokenizing always reaches the slide
	// point even with the lookahead held back.
	bufLen = 2*windowSize + maxMatch + lookAhead

	// Block emission threshold. A block never carries more tokens.
	maxTokens = 1 << 14

	// Bytes held back from matching until more input or a flush arrives,
	// so no match is cut short at a chunk boundary.
	lookAhead = maxMatch + minMatch + 1
)

var errWriterClosed = errors.New("deflate: writer is closed")

// Compressor is a streaming DEFLATE encoder. It accumulates input in a
// sliding buffer, tokenizes it through the level's matcher, and emits a
// block whenever enough tokens gather or the stream is flushed or closed.
type Compressor struct {
	w   io.Writer
	err error

	m   matcher
	enc blockEncoder
	bw  bitWriter

	buf        []byte
	blockStart int // first byte not yet covered by an emitted block
	pos        int // next byte to tokenize
	end        int // end of valid data in buf

	tokens []token
	closed bool
}

// NewCompressor returns a Compressor writing raw DEFLATE data to w.
// Levels 1 through 3 are supported.
func NewCompressor(w io.Writer, level int) (*Compressor, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("deflate: unsupported compression level %d", level)
	}
	c := &Compressor{
		w:      w,
		buf:    make([]byte, bufLen),
		tokens: make([]token, 0, maxTokens),
	}
	c.m.params = levels[level]
	return c, nil
}

// Reset discards all state and switches output to w, keeping allocations.
func (c *Compressor) Reset(w io.Writer) {
	c.w = w
	c.err = nil
	c.closed = false
	c.blockStart = 0
	c.pos = 0
	c.end = 0
	c.tokens = c.tokens[:0]
	c.bw.reset()
	c.m.reset()
}

func (c *Compressor) Write(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.closed {
		return 0, errWriterClosed
	}
	for len(p) > 0 {
		if c.end == len(c.buf) {
			if err := c.advance(false); err != nil {
				return n, err
			}
		}
		m := copy(c.buf[c.end:], p)
		c.end += m
		n += m
		p = p[m:]
	}
	return n, nil
}

// advance tokenizes buffered input up to the flush-dependent limit, emitting
// full blocks as the token buffer fills. When not flushing it also slides
// the oldest history out to make room for more input.
func (c *Compressor) advance(flush bool) error {
	limit := c.end
	if !flush {
		limit -= lookAhead
	}
	for c.pos < limit {
		c.tokens, c.pos = c.m.appendTokens(c.tokens, c.buf[:c.end], c.pos, limit, maxTokens)
		if len(c.tokens) >= maxTokens {
			if err := c.emitBlock(false); err != nil {
				return err
			}
		}
	}
	// Slide by exactly one window so chain slots, indexed position modulo
	// windowSize, keep addressing the same positions after the rebase.
	if !flush && c.pos >= 2*windowSize {
		// The stored fallback needs the block's raw bytes, so pending
		// tokens go out before their span slides away.
		if len(c.tokens) > 0 {
			if err := c.emitBlock(false); err != nil {
				return err
			}
		}
		copy(c.buf, c.buf[windowSize:c.end])
		c.pos -= windowSize
		c.end -= windowSize
		c.blockStart -= windowSize
		c.m.rebase(windowSize)
	}
	return nil
}

// emitBlock encodes the pending tokens as one block, picking the cheapest of
// the three block forms, and hands completed bytes to the underlying writer.
func (c *Compressor) emitBlock(final bool) error {
	span := c.buf[c.blockStart:c.pos]
	if len(c.tokens) == 0 {
		if !final {
			return nil
		}
		// Zero-length input still produces a valid stream.
		writeStored(&c.bw, span, true)
	} else {
		dynBits, fixedBits := c.enc.build(&c.m.hist)
		dynBits += 3
		fixedBits += 3
		storedBits := storedCost(len(span))
		switch {
		case storedBits <= dynBits && storedBits <= fixedBits:
			writeStored(&c.bw, span, final)
		case fixedBits <= dynBits:
			c.bw.writeBits(finalBit(final), 1)
			c.bw.writeBits(1, 2)
			writeTokens(&c.bw, c.tokens,
				fixedLitLens[:], fixedLitCodes[:],
				fixedDistLens[:], fixedDistCodes[:])
		default:
			c.enc.writeDynamicHeader(&c.bw, final)
			writeTokens(&c.bw, c.tokens,
				c.enc.litLens[:], c.enc.litCodes[:],
				c.enc.distLens[:], c.enc.distCodes[:])
		}
	}
	c.tokens = c.tokens[:0]
	c.m.hist.reset()
	c.blockStart = c.pos
	return c.flushOut()
}

// Flush compresses all buffered input and emits an empty stored block,
// aligning the output to a byte boundary so everything written so far can
// be decoded.
func (c *Compressor) Flush() error {
	if c.err != nil {
		return c.err
	}
	if c.closed {
		return errWriterClosed
	}
	if err := c.advance(true); err != nil {
		return err
	}
	if len(c.tokens) > 0 {
		if err := c.emitBlock(false); err != nil {
			return err
		}
	}
	writeStored(&c.bw, nil, false)
	return c.flushOut()
}

// Close emits the final block and pads the last byte with zero bits.
// The underlying writer is not closed.
func (c *Compressor) Close() error {
	if c.err != nil {
		return c.err
	}
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.advance(true); err != nil {
		return err
	}
	if err := c.emitBlock(true); err != nil {
		return err
	}
	c.bw.alignByte()
	return c.flushOut()
}

func (c *Compressor) flushOut() error {
	out := c.bw.take()
	if len(out) == 0 {
		return nil
	}
	if _, err := c.w.Write(out); err != nil {
		c.err = err
		return err
	}
	return nil
}
