// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

import (
	"github.com/fastgz/fastgz/compress/flate/internal/huffman"
)

// Code length alphabet symbols for run-length encoding a length table.
const (
	repeatPrev3to6    = 16 // 2 extra bits
	repeatZero3to10   = 17 // 3 extra bits
	repeatZero11to138 = 18 // 7 extra bits
	numClcSymbols     = 19
	clcLimit          = 7
)

// hclenOrder is the transmission order of code length code lengths,
// RFC 1951 section 3.2.7.
var hclenOrder = [numClcSymbols]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// Fixed Huffman tables, RFC 1951 section 3.2.6. Immutable after init and
// shared by every compressor.
var (
	fixedLitLens   [288]uint8
	fixedLitCodes  [288]uint16
	fixedDistLens  [maxNumDist]uint8
	fixedDistCodes [maxNumDist]uint16
)

func init() {
	for i := range fixedLitLens {
		switch {
		case i < 144:
			fixedLitLens[i] = 8
		case i < 256:
			fixedLitLens[i] = 9
		case i < 280:
			fixedLitLens[i] = 7
		default:
			fixedLitLens[i] = 8
		}
	}
	huffman.Canonical(fixedLitLens[:], fixedLitCodes[:])
	for i := range fixedDistLens {
		fixedDistLens[i] = 5
	}
	huffman.Canonical(fixedDistLens[:], fixedDistCodes[:])
}

// blockEncoder turns one block's tokens and histogram into coded output,
// choosing stored, fixed or dynamic form by counted bit cost.
type blockEncoder struct {
	litGen  huffman.Generator
	distGen huffman.Generator
	clcGen  huffman.Generator

	litLens   [maxNumLit]uint8
	litCodes  [maxNumLit]uint16
	distLens  [maxNumDist]uint8
	distCodes [maxNumDist]uint16

	numLit  int
	numDist int

	rle      []uint8 // code length symbols interleaved with extra-bit values
	clcFreq  [numClcSymbols]uint32
	clcLens  [numClcSymbols]uint8
	clcCodes [numClcSymbols]uint16
}

// build derives the dynamic tables for hist and returns the exact bit costs
// of the dynamic and fixed encodings of the token stream (block header bits
// included in neither).
func (e *blockEncoder) build(hist *histogram) (dynBits, fixedBits int) {
	hist.lit[endBlockMarker] = 1

	e.litGen.Lengths(huffman.MaxBitsLimit, hist.lit[:], e.litLens[:])
	e.distGen.Lengths(huffman.MaxBitsLimit, hist.dist[:], e.distLens[:])
	huffman.Canonical(e.litLens[:], e.litCodes[:])
	huffman.Canonical(e.distLens[:], e.distCodes[:])

	e.numLit = maxNumLit
	for e.numLit > 257 && e.litLens[e.numLit-1] == 0 {
		e.numLit--
	}
	e.numDist = maxNumDist
	for e.numDist > 1 && e.distLens[e.numDist-1] == 0 {
		e.numDist--
	}
	if e.numDist == 1 && e.distLens[0] == 0 {
		// No distances used. Emit one 1-bit distance code anyway; a table
		// with no codes at all trips up some decoders.
		e.distLens[0] = 1
		e.distCodes[0] = 0
	}

	e.buildCodeLengthCodes()

	headerBits := 5 + 5 + 4 + 3*e.hclen()
	for i := 0; i < len(e.rle); i++ {
		sym := e.rle[i]
		headerBits += int(e.clcLens[sym])
		switch sym {
		case repeatPrev3to6:
			headerBits += 2
			i++
		case repeatZero3to10:
			headerBits += 3
			i++
		case repeatZero11to138:
			headerBits += 7
			i++
		}
	}

	extraBits := 0
	for s := 257; s < maxNumLit; s++ {
		extraBits += int(hist.lit[s]) * int(lengthExtraBits[s-257])
	}
	for d := 0; d < maxNumDist; d++ {
		extraBits += int(hist.dist[d]) * int(distExtraBits[d])
	}

	dynBody := 0
	fixedBody := 0
	for s, f := range hist.lit {
		dynBody += int(f) * int(e.litLens[s])
		fixedBody += int(f) * int(fixedLitLens[s])
	}
	for d, f := range hist.dist {
		dynBody += int(f) * int(e.distLens[d])
		fixedBody += int(f) * int(fixedDistLens[d])
	}
	return headerBits + dynBody + extraBits, fixedBody + extraBits
}

// buildCodeLengthCodes run-length encodes the literal and distance length
// tables and builds the 7-bit-limited code that describes them.
func (e *blockEncoder) buildCodeLengthCodes() {
	e.rle = e.rle[:0]
	e.clcFreq = [numClcSymbols]uint32{}
	e.rleAppend(e.litLens[:e.numLit])
	e.rleAppend(e.distLens[:e.numDist])
	e.clcGen.Lengths(clcLimit, e.clcFreq[:], e.clcLens[:])
	huffman.Canonical(e.clcLens[:], e.clcCodes[:])
}

func (e *blockEncoder) rleAppend(lens []uint8) {
	for i := 0; i < len(lens); {
		v := lens[i]
		run := 1
		for i+run < len(lens) && lens[i+run] == v {
			run++
		}
		i += run
		if v == 0 {
			e.rleZeros(run)
		} else {
			e.rleValue(v, run)
		}
	}
}

func (e *blockEncoder) rleValue(v uint8, run int) {
	// The first occurrence is always spelled out; only repeats of the
	// previous value can use symbol 16.
	e.rle = append(e.rle, v)
	e.clcFreq[v]++
	run--
	for run >= 3 {
		n := run
		if n > 6 {
			n = 6
		}
		e.rle = append(e.rle, repeatPrev3to6, uint8(n-3))
		e.clcFreq[repeatPrev3to6]++
		run -= n
	}
	for ; run > 0; run-- {
		e.rle = append(e.rle, v)
		e.clcFreq[v]++
	}
}

func (e *blockEncoder) rleZeros(run int) {
	for run >= 11 {
		n := run
		if n > 138 {
			n = 138
		}
		e.rle = append(e.rle, repeatZero11to138, uint8(n-11))
		e.clcFreq[repeatZero11to138]++
		run -= n
	}
	if run >= 3 {
		e.rle = append(e.rle, repeatZero3to10, uint8(run-3))
		e.clcFreq[repeatZero3to10]++
		return
	}
	for ; run > 0; run-- {
		e.rle = append(e.rle, 0)
		e.clcFreq[0]++
	}
}

func (e *blockEncoder) hclen() int {
	n := numClcSymbols
	for n > 4 && e.clcLens[hclenOrder[n-1]] == 0 {
		n--
	}
	return n
}

// writeDynamicHeader emits BTYPE=10 and the code length table description.
func (e *blockEncoder) writeDynamicHeader(bw *bitWriter, final bool) {
	bw.writeBits(finalBit(final), 1)
	bw.writeBits(2, 2)
	bw.writeBits(uint32(e.numLit-257), 5)
	bw.writeBits(uint32(e.numDist-1), 5)
	hclen := e.hclen()
	bw.writeBits(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		bw.writeBits(uint32(e.clcLens[hclenOrder[i]]), 3)
	}
	for i := 0; i < len(e.rle); i++ {
		sym := e.rle[i]
		bw.writeBits(uint32(e.clcCodes[sym]), e.clcLens[sym])
		switch sym {
		case repeatPrev3to6:
			i++
			bw.writeBits(uint32(e.rle[i]), 2)
		case repeatZero3to10:
			i++
			bw.writeBits(uint32(e.rle[i]), 3)
		case repeatZero11to138:
			i++
			bw.writeBits(uint32(e.rle[i]), 7)
		}
	}
}

// writeTokens Huffman-codes the token stream and terminates it with the
// end-of-block symbol.
func writeTokens(bw *bitWriter, tokens []token, litLens []uint8, litCodes []uint16, distLens []uint8, distCodes []uint16) {
	for _, t := range tokens {
		if t.isLiteral() {
			lit := t.literal()
			bw.writeBits(uint32(litCodes[lit]), litLens[lit])
			continue
		}
		length, dist := t.match()
		ls := lengthSym[length-minMatch]
		sym := 257 + uint32(ls)
		bw.writeBits(uint32(litCodes[sym]), litLens[sym])
		if lengthExtraBits[ls] > 0 {
			bw.writeBits(length-uint32(lengthBase[ls]), lengthExtraBits[ls])
		}
		ds := distanceSym(dist)
		bw.writeBits(uint32(distCodes[ds]), distLens[ds])
		if distExtraBits[ds] > 0 {
			bw.writeBits(dist-uint32(distBase[ds]), distExtraBits[ds])
		}
	}
	bw.writeBits(uint32(litCodes[endBlockMarker]), litLens[endBlockMarker])
}

// writeStored emits span as one or more stored blocks, each at most 65535
// bytes: byte-align, LEN, one's complement of LEN, then the raw bytes.
func writeStored(bw *bitWriter, span []byte, final bool) {
	for {
		chunk := span
		if len(chunk) > 0xffff {
			chunk = chunk[:0xffff]
		}
		span = span[len(chunk):]
		last := final && len(span) == 0
		bw.writeBits(finalBit(last), 1)
		bw.writeBits(0, 2)
		bw.alignByte()
		n := uint32(len(chunk))
		bw.writeBits(n, 16)
		bw.writeBits(^n&0xffff, 16)
		bw.writeBytes(chunk)
		if len(span) == 0 {
			return
		}
	}
}

// storedCost is the bit cost of writeStored for n bytes, counting worst-case
// alignment padding.
func storedCost(n int) int {
	blocks := n / 0xffff
	if n%0xffff != 0 || n == 0 {
		blocks++
	}
	return blocks*(3+7+32) + 8*n
}

func finalBit(final bool) uint32 {
	if final {
		return 1
	}
	return 0
}
