// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

// Package huffman builds length-limited canonical Huffman codes from symbol
// frequencies. Code lengths come from an in-place minimum-redundancy
// construction; when the natural tree exceeds the requested limit the length
// counts are repaired until they satisfy the Kraft equality again.
package huffman

import "sort"

// MaxBitsLimit is the longest code length DEFLATE permits in any alphabet.
const MaxBitsLimit = 15

type symCount struct {
	sym   uint16
	count uint32
}

// Generator computes length-limited code lengths from a frequency table.
// A Generator is reused across blocks to avoid per-block allocation.
type Generator struct {
	syms      []symCount
	w         []uint32
	lenCounts []int
}

// Lengths fills lens[i] with the code length for symbol i, or 0 if freqs[i]
// is zero. No length exceeds limit. It returns the number of used symbols.
//
// Ties between equal frequencies break by symbol value, so the derived
// lengths, and therefore the canonical codes, are fully deterministic.
func (g *Generator) Lengths(limit int, freqs []uint32, lens []uint8) (used int) {
	g.syms = g.syms[:0]
	for i, f := range freqs {
		if f != 0 {
			g.syms = append(g.syms, symCount{sym: uint16(i), count: f})
		}
	}
	for i := range lens {
		lens[i] = 0
	}
	used = len(g.syms)
	if used == 0 {
		return 0
	}
	sort.Slice(g.syms, func(i, j int) bool {
		a, b := g.syms[i], g.syms[j]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.sym < b.sym
	})

	g.w = g.w[:0]
	for _, s := range g.syms {
		g.w = append(g.w, s.count)
	}
	maxLen := codeLengths(g.w)
	if maxLen <= uint32(limit) {
		for i, l := range g.w {
			lens[g.syms[i].sym] = uint8(l)
		}
		return used
	}

	if cap(g.lenCounts) < int(maxLen)+1 {
		g.lenCounts = make([]int, maxLen+1)
	} else {
		g.lenCounts = g.lenCounts[:maxLen+1]
		for i := range g.lenCounts {
			g.lenCounts[i] = 0
		}
	}
	for _, l := range g.w {
		g.lenCounts[l]++
	}
	enforceLimit(g.lenCounts, limit)

	// Reassign lengths shortest-first over the frequency-sorted symbols.
	idx := 0
	for length := 1; length <= limit; length++ {
		for j := 0; j < g.lenCounts[length]; j++ {
			lens[g.syms[idx].sym] = uint8(length)
			idx++
		}
	}
	return used
}

// codeLengths rewrites w, sorted by decreasing weight, into the code length
// of each entry and returns the maximum length. This is Moffat and Katajainen,
// "In-Place Calculation of Minimum-Redundancy Codes", run mirrored so the
// smallest weights sit at the end of the slice.
func codeLengths(w []uint32) uint32 {
	n := len(w)
	if n == 0 {
		return 0
	}
	if n == 1 {
		// A single used symbol still gets a 1-bit code.
		w[0] = 1
		return 1
	}

	// Phase 1: pairwise combination, leaving parent pointers behind.
	leaf := n - 1
	root := n - 1
	for next := n - 1; next >= 1; next-- {
		if leaf < 0 || (root > next && w[root] < w[leaf]) {
			w[next] = w[root]
			w[root] = uint32(next)
			root--
		} else {
			w[next] = w[leaf]
			leaf--
		}
		if leaf < 0 || (root > next && w[root] < w[leaf]) {
			w[next] += w[root]
			w[root] = uint32(next)
			root--
		} else {
			w[next] += w[leaf]
			leaf--
		}
	}

	// Phase 2: parent pointers to internal node depths.
	w[1] = 0
	for next := 2; next <= n-1; next++ {
		w[next] = w[w[next]] + 1
	}

	// Phase 3: internal depths to leaf depths.
	avail := 1
	usedAtDepth := 0
	depth := 0
	root = 1
	next := 0
	for avail > 0 {
		for root < n && w[root] == uint32(depth) {
			usedAtDepth++
			root++
		}
		for ; avail > usedAtDepth; avail-- {
			w[next] = uint32(depth)
			next++
		}
		avail = 2 * usedAtDepth
		depth++
		usedAtDepth = 0
	}
	return w[n-1]
}

// enforceLimit folds all lengths above limit back into the tree, shuffling
// shorter codes down until the Kraft sum is exactly one again.
func enforceLimit(lenCounts []int, limit int) {
	for i := limit + 1; i < len(lenCounts); i++ {
		lenCounts[limit] += lenCounts[i]
		lenCounts[i] = 0
	}

	total := 0
	for i := 1; i <= limit; i++ {
		total += lenCounts[i] << (limit - i)
	}
	for total != 1<<limit {
		lenCounts[limit]--
		for i := limit - 1; i > 0; i-- {
			if lenCounts[i] != 0 {
				lenCounts[i]--
				lenCounts[i+1] += 2
				break
			}
		}
		total--
	}
}
