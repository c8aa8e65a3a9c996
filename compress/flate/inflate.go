// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

// Package flate implements the DEFLATE compressed data format, RFC 1951.
// The decompressor handles any conforming stream; the compressor covers the
// fast levels 1 through 3.
package flate

import (
	"bufio"
	"io"
)

// Reader is the actual read interface needed by NewReader. If the passed
// io.Reader does not also have ReadByte, the decompressor introduces its
// own buffering.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Resetter resets a decompressor returned by NewReader to switch to a new
// underlying reader. This permits reusing it instead of allocating a new
// one. A non-nil dict preloads the sliding window, as if the stream's
// back-references may reach into it.
type Resetter interface {
	Reset(r io.Reader, dict []byte) error
}

// Decompression phases. The state machine is: read a block header, expand
// that block (stored copy or Huffman symbol loop, suspending whenever the
// window fills or a back-reference outruns the window space), then loop
// until the final block's end-of-block symbol.
const (
	phaseBlockHeader = iota
	phaseStored
	phaseSymbols
	phaseCopy
	phaseDone
)

type decompressor struct {
	r       Reader
	roffset int64

	// Bit reader state, LSB-first.
	b  uint32
	nb uint

	h1, h2 huffmanDecoder // literal/length and distance tables in effect

	dict dictWindow

	phase     int
	final     bool
	storedLen int

	// Pending back-reference when the window filled mid-copy.
	copyLen  int
	copyDist int

	toRead []byte
	err    error

	// Scratch for dynamic header code lengths.
	lenScratch [maxNumLitSyms + 30]uint8
}

// NewReader returns a new io.ReadCloser that reads uncompressed data from r.
// Decoded output is produced incrementally: bytes already returned stay
// valid even if a later Read reports corruption.
//
// The ReadCloser also implements Resetter.
func NewReader(r io.Reader) io.ReadCloser {
	f := new(decompressor)
	f.Reset(r, nil)
	return f
}

// NewReaderDict is like NewReader but presets the sliding window with dict,
// matching a compressor primed with the same dictionary.
func NewReaderDict(r io.Reader, dict []byte) io.ReadCloser {
	f := new(decompressor)
	f.Reset(r, dict)
	return f
}

func (f *decompressor) Reset(r io.Reader, dict []byte) error {
	if rr, ok := r.(Reader); ok {
		f.r = rr
	} else {
		f.r = bufio.NewReader(r)
	}
	f.roffset = 0
	f.b = 0
	f.nb = 0
	f.phase = phaseBlockHeader
	f.final = false
	f.storedLen = 0
	f.copyLen = 0
	f.copyDist = 0
	f.toRead = nil
	f.err = nil
	f.dict.reset()
	if len(dict) > 0 {
		f.dict.preload(dict)
	}
	return nil
}

func (f *decompressor) Close() error {
	if f.err == io.EOF {
		return nil
	}
	return f.err
}

func (f *decompressor) Read(b []byte) (int, error) {
	for {
		if len(f.toRead) > 0 {
			n := copy(b, f.toRead)
			f.toRead = f.toRead[n:]
			return n, nil
		}
		if f.err != nil {
			return 0, f.err
		}
		f.step()
	}
}

// step advances the state machine until it produces output, finishes, or
// fails. Output lands in f.toRead.
func (f *decompressor) step() {
	switch f.phase {
	case phaseBlockHeader:
		f.readBlockHeader()
	case phaseStored:
		f.copyStored()
	case phaseSymbols, phaseCopy:
		f.decodeSymbols()
	case phaseDone:
		f.toRead = f.dict.readFlush()
		if len(f.toRead) == 0 {
			f.err = io.EOF
		}
	}
}

func (f *decompressor) corrupt(reason error) {
	f.err = &CorruptError{Offset: f.roffset, Reason: reason}
}

func (f *decompressor) moreBits() bool {
	c, err := f.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		f.corrupt(err)
		return false
	}
	f.roffset++
	f.b |= uint32(c) << f.nb
	f.nb += 8
	return true
}

// readBits consumes n bits LSB-first, n at most 16.
func (f *decompressor) readBits(n uint) (uint32, bool) {
	for f.nb < n {
		if !f.moreBits() {
			return 0, false
		}
	}
	v := f.b & (1<<n - 1)
	f.b >>= n
	f.nb -= n
	return v, true
}

// huffSym decodes one symbol bit by bit with h's count/offset tables.
func (f *decompressor) huffSym(h *huffmanDecoder) (int, bool) {
	code, first, index := 0, 0, 0
	for l := 1; l <= maxCodeLen; l++ {
		if f.nb == 0 {
			if !f.moreBits() {
				return 0, false
			}
		}
		code |= int(f.b & 1)
		f.b >>= 1
		f.nb--
		count := int(h.counts[l])
		if code-first < count {
			return int(h.symbols[index+code-first]), true
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	f.corrupt(ErrInvalidCode)
	return 0, false
}

func (f *decompressor) readBlockHeader() {
	final, ok := f.readBits(1)
	if !ok {
		return
	}
	btype, ok := f.readBits(2)
	if !ok {
		return
	}
	f.final = final == 1
	switch btype {
	case 0:
		f.startStored()
	case 1:
		f.h1 = fixedLitDecoder
		f.h2 = fixedDistDecoder
		f.phase = phaseSymbols
	case 2:
		if f.readDynamicHeader() {
			f.phase = phaseSymbols
		}
	default:
		f.corrupt(ErrInvalidBlockType)
	}
}

func (f *decompressor) startStored() {
	// Discard the partial byte; stored blocks are byte aligned.
	f.b >>= f.nb & 7
	f.nb -= f.nb & 7

	n, ok := f.readBits(16)
	if !ok {
		return
	}
	inv, ok := f.readBits(16)
	if !ok {
		return
	}
	if n != ^inv&0xffff {
		f.corrupt(ErrInvalidBlockType)
		return
	}
	f.storedLen = int(n)
	f.phase = phaseStored
}

func (f *decompressor) copyStored() {
	for f.storedLen > 0 {
		if f.dict.availWrite() == 0 {
			f.toRead = f.dict.readFlush()
			return
		}
		c, ok := f.readBits(8)
		if !ok {
			return
		}
		f.dict.writeByte(byte(c))
		f.storedLen--
	}
	f.endBlock()
}

// endBlock flushes the finished block's output and moves to the next block
// header, or to the drain phase after the final block.
func (f *decompressor) endBlock() {
	if f.final {
		f.phase = phaseDone
	} else {
		f.phase = phaseBlockHeader
	}
	f.toRead = f.dict.readFlush()
}

// readDynamicHeader reads the code length description and builds the
// block's Huffman tables.
func (f *decompressor) readDynamicHeader() bool {
	hlit, ok := f.readBits(5)
	if !ok {
		return false
	}
	hdist, ok := f.readBits(5)
	if !ok {
		return false
	}
	hclen, ok := f.readBits(4)
	if !ok {
		return false
	}
	numLit := int(hlit) + 257
	numDist := int(hdist) + 1
	numClc := int(hclen) + 4
	if numLit > maxNumLitSyms-2 || numDist > 30 {
		f.corrupt(ErrInvalidCode)
		return false
	}

	var clcLens [19]uint8
	for i := 0; i < numClc; i++ {
		v, ok := f.readBits(3)
		if !ok {
			return false
		}
		clcLens[codeOrder[i]] = uint8(v)
	}
	var clc huffmanDecoder
	if !clc.init(clcLens[:]) {
		f.corrupt(ErrInvalidCode)
		return false
	}

	lens := f.lenScratch[:numLit+numDist]
	for i := 0; i < len(lens); {
		sym, ok := f.huffSym(&clc)
		if !ok {
			return false
		}
		switch {
		case sym < 16:
			lens[i] = uint8(sym)
			i++
		case sym == 16:
			if i == 0 {
				f.corrupt(ErrInvalidCode)
				return false
			}
			rep, ok := f.readBits(2)
			if !ok {
				return false
			}
			if !fillRepeat(lens, &i, lens[i-1], int(rep)+3) {
				f.corrupt(ErrInvalidCode)
				return false
			}
		case sym == 17:
			rep, ok := f.readBits(3)
			if !ok {
				return false
			}
			if !fillRepeat(lens, &i, 0, int(rep)+3) {
				f.corrupt(ErrInvalidCode)
				return false
			}
		default: // 18
			rep, ok := f.readBits(7)
			if !ok {
				return false
			}
			if !fillRepeat(lens, &i, 0, int(rep)+11) {
				f.corrupt(ErrInvalidCode)
				return false
			}
		}
	}

	if !f.h1.init(lens[:numLit]) || !f.h2.init(lens[numLit:]) {
		f.corrupt(ErrInvalidCode)
		return false
	}
	return true
}

// codeOrder is the transmission order of code length code lengths,
// RFC 1951 section 3.2.7.
var codeOrder = [19]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

func fillRepeat(lens []uint8, i *int, v uint8, n int) bool {
	if *i+n > len(lens) {
		return false
	}
	for j := 0; j < n; j++ {
		lens[*i+j] = v
	}
	*i += n
	return true
}

// decodeSymbols expands Huffman-coded tokens into the window until the
// block ends or the window fills.
func (f *decompressor) decodeSymbols() {
	if f.phase == phaseCopy {
		if !f.finishCopy() {
			return
		}
		f.phase = phaseSymbols
	}
	for {
		if f.dict.availWrite() == 0 {
			f.toRead = f.dict.readFlush()
			return
		}
		sym, ok := f.huffSym(&f.h1)
		if !ok {
			return
		}
		if sym < 256 {
			f.dict.writeByte(byte(sym))
			continue
		}
		if sym == endOfBlock {
			f.endBlock()
			return
		}
		if sym > 285 {
			// 286 and 287 exist in the fixed table but are reserved.
			f.corrupt(ErrInvalidCode)
			return
		}

		ls := sym - 257
		extra, ok := f.readBits(uint(lengthExtra[ls]))
		if !ok {
			return
		}
		length := int(lengthBase[ls]) + int(extra)

		dsym, ok := f.huffSym(&f.h2)
		if !ok {
			return
		}
		if dsym > 29 {
			f.corrupt(ErrInvalidCode)
			return
		}
		extra, ok = f.readBits(uint(distExtra[dsym]))
		if !ok {
			return
		}
		dist := int(distBase[dsym]) + int(extra)
		if dist > f.dict.histSize() {
			f.corrupt(ErrDistanceTooFar)
			return
		}

		f.copyLen = length
		f.copyDist = dist
		if !f.finishCopy() {
			f.phase = phaseCopy
			return
		}
	}
}

// finishCopy runs the pending back-reference, reporting false if it had to
// suspend for a window flush.
func (f *decompressor) finishCopy() bool {
	for f.copyLen > 0 {
		if f.dict.availWrite() == 0 {
			f.toRead = f.dict.readFlush()
			return false
		}
		f.copyLen -= f.dict.writeCopy(f.copyDist, f.copyLen)
	}
	return true
}

const endOfBlock = 256

// Decode-side symbol tables, RFC 1951 section 3.2.5.
var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193,
		12289, 16385, 24577,
	}
	distExtra = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)
