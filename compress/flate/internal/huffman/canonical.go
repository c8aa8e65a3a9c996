// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import "math/bits"

// Canonical assigns the canonical code for every nonzero entry of lens:
// symbols sorted by (length, symbol value) receive consecutive code values
// per length, shorter lengths numerically smaller. The returned codes are
// bit-reversed so they can be emitted LSB-first, which is how DEFLATE packs
// Huffman codes into the stream.
//
// Decoders reconstruct the identical assignment from the lengths alone, so
// this rule is the whole wire contract between the two sides.
func Canonical(lens []uint8, codes []uint16) {
	var blCount [MaxBitsLimit + 1]uint16
	for _, l := range lens {
		blCount[l]++
	}
	blCount[0] = 0

	var nextCode [MaxBitsLimit + 1]uint16
	code := uint16(0)
	for b := 1; b <= MaxBitsLimit; b++ {
		code = (code + blCount[b-1]) << 1
		nextCode[b] = code
	}
	for i, l := range lens {
		if l == 0 {
			codes[i] = 0
			continue
		}
		codes[i] = bits.Reverse16(nextCode[l]) >> (16 - l)
		nextCode[l]++
	}
}
