// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

const (
	minMatch   = 3
	maxMatch   = 258
	windowSize = 32 << 10
	windowMask = windowSize - 1

	endBlockMarker = 256
	maxNumLit      = 286
	maxNumDist     = 30
)

// histogram counts token frequencies per block: literals 0-255, end-of-block
// 256 and length codes 257-285 in lit, distance codes 0-29 in dist.
type histogram struct {
	lit  [maxNumLit]uint32
	dist [maxNumDist]uint32
}

func (h *histogram) reset() {
	h.lit = [maxNumLit]uint32{}
	h.dist = [maxNumDist]uint32{}
}
