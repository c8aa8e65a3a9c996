// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

// levelParams expresses the three fast levels as data rather than branching
// logic. maxChain bounds how many chain candidates a lookup probes,
// niceLength stops the probe early once a match is long enough, and
// maxInsert is the longest match whose interior positions still get hash
// entries; longer matches skip insertion to trade ratio for speed.
type levelParams struct {
	maxChain   int
	niceLength int
	maxInsert  int
}

// MinLevel and MaxLevel bound the supported compression levels.
const (
	MinLevel = 1
	MaxLevel = 3
)

var levels = [MaxLevel + 1]levelParams{
	1: {maxChain: 4, niceLength: 8, maxInsert: 8},
	2: {maxChain: 8, niceLength: 16, maxInsert: 32},
	3: {maxChain: 32, niceLength: 64, maxInsert: maxMatch},
}
