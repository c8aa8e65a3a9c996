// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package flate

// huffmanDecoder reconstructs a canonical code from per-symbol code lengths
// and decodes it with the count/offset walk: counts[l] is the number of
// codes of length l and symbols lists the symbols sorted by (length,
// symbol value), which is exactly the canonical assignment order. Decoding
// consumes one bit per level, so an unassigned code is detected the moment
// the walk runs off the table.
type huffmanDecoder struct {
	counts  [maxCodeLen + 1]uint16
	symbols [maxNumLitSyms]uint16
}

const (
	maxCodeLen    = 15
	maxNumLitSyms = 288
)

// init builds the decoder from lens, 0 meaning unused. It reports false if
// the lengths oversubscribe the code space, or leave it incomplete while
// more than one symbol is in use; DEFLATE permits incomplete codes only in
// the degenerate single-code cases.
func (h *huffmanDecoder) init(lens []uint8) bool {
	h.counts = [maxCodeLen + 1]uint16{}
	used := 0
	for _, l := range lens {
		if l != 0 {
			h.counts[l]++
			used++
		}
	}
	if used == 0 {
		return true
	}

	left := 1
	for l := 1; l <= maxCodeLen; l++ {
		left <<= 1
		left -= int(h.counts[l])
		if left < 0 {
			return false
		}
	}
	if left > 0 && used > 1 {
		return false
	}

	var offs [maxCodeLen + 1]uint16
	for l := 1; l < maxCodeLen; l++ {
		offs[l+1] = offs[l] + h.counts[l]
	}
	for sym, l := range lens {
		if l != 0 {
			h.symbols[offs[l]] = uint16(sym)
			offs[l]++
		}
	}
	return true
}

// Static tables for fixed Huffman blocks, RFC 1951 section 3.2.6. Built once
// and copied into the decompressor state, never mutated.
var (
	fixedLitDecoder  huffmanDecoder
	fixedDistDecoder huffmanDecoder
)

func init() {
	var litLens [288]uint8
	for i := range litLens {
		switch {
		case i < 144:
			litLens[i] = 8
		case i < 256:
			litLens[i] = 9
		case i < 280:
			litLens[i] = 7
		default:
			litLens[i] = 8
		}
	}

	// All 32 distance symbols get 5-bit codes. 30 and 31 never occur in
	// compressed data but complete the code space; decoding one is caught
	// as an invalid code by the symbol range check.
	var distLens [32]uint8
	for i := range distLens {
		distLens[i] = 5
	}
	if !fixedLitDecoder.init(litLens[:]) || !fixedDistDecoder.init(distLens[:]) {
		panic("flate: fixed huffman tables did not build")
	}
}
