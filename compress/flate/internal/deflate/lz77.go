// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

const (
	hashBits = 15
	hashSize = 1 << hashBits
)

// matcher finds back-references with hash chains over 3-byte prefixes.
// head holds position+1 of the most recent occurrence of each hash (0 means
// none); prev, indexed by position&windowMask, links each position to the
// previous one with the same hash. Positions are offsets into the
// compressor's buffer and get rebased when history slides.
type matcher struct {
	params levelParams
	hist   histogram
	head   [hashSize]int32
	prev   [windowSize]int32
}

func (m *matcher) reset() {
	m.head = [hashSize]int32{}
	m.prev = [windowSize]int32{}
	m.hist.reset()
}

// rebase shifts all recorded positions down by delta after the compressor
// slides its buffer. Entries falling below zero become empty.
func (m *matcher) rebase(delta int) {
	for i, v := range m.head {
		if v > int32(delta) {
			m.head[i] = v - int32(delta)
		} else {
			m.head[i] = 0
		}
	}
	for i, v := range m.prev {
		if v > int32(delta) {
			m.prev[i] = v - int32(delta)
		} else {
			m.prev[i] = 0
		}
	}
}

func hash3(buf []byte, i int) uint32 {
	v := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16
	return (v * 0x9E3779B1) >> (32 - hashBits)
}

func (m *matcher) insert(h uint32, pos int) {
	m.prev[pos&windowMask] = m.head[h]
	m.head[h] = int32(pos + 1)
}

// matchLen extends a candidate match by direct comparison, bounded by
// maxMatch and the end of buf.
func matchLen(buf []byte, prev, cur int) int {
	max := len(buf) - cur
	if max > maxMatch {
		max = maxMatch
	}
	n := 0
	for n < max && buf[prev+n] == buf[cur+n] {
		n++
	}
	return n
}

// findMatch walks the chain for the prefix at pos, probing up to maxChain
// candidates. Walking most-recent-first and keeping only strictly longer
// matches breaks length ties toward the smallest distance, which costs the
// fewest bits.
func (m *matcher) findMatch(buf []byte, pos int, cand int) (length, dist int) {
	minPos := pos - windowSize
	for depth := m.params.maxChain; depth > 0 && cand >= 0 && cand > minPos; depth-- {
		if length > 0 && buf[cand+length-1] != buf[pos+length-1] {
			cand = int(m.prev[cand&windowMask]) - 1
			continue
		}
		n := matchLen(buf, cand, pos)
		if n > length {
			length = n
			dist = pos - cand
			if n >= m.params.niceLength {
				break
			}
		}
		cand = int(m.prev[cand&windowMask]) - 1
	}
	return length, dist
}

// appendTokens tokenizes buf[pos:limit], appending to tokens and updating
// the histogram. It stops early once len(tokens) reaches maxTokens so the
// caller can emit a block, and returns the new token slice and position.
// Match extension may run past limit up to len(buf); the caller guarantees
// limit leaves no partial lookahead unless flushing.
func (m *matcher) appendTokens(tokens []token, buf []byte, pos, limit, maxTokens int) ([]token, int) {
	for pos < limit && len(tokens) < maxTokens {
		if pos+minMatch > len(buf) {
			// Tail too short to match or even hash; emit literals.
			lit := buf[pos]
			tokens = append(tokens, literalToken(lit))
			m.hist.lit[lit]++
			pos++
			continue
		}
		h := hash3(buf, pos)
		cand := int(m.head[h]) - 1
		m.insert(h, pos)

		length, dist := m.findMatch(buf, pos, cand)
		if length < minMatch {
			lit := buf[pos]
			tokens = append(tokens, literalToken(lit))
			m.hist.lit[lit]++
			pos++
			continue
		}

		tokens = append(tokens, matchToken(uint32(length), uint32(dist)))
		m.hist.lit[257+uint32(lengthSym[length-minMatch])]++
		m.hist.dist[distanceSym(uint32(dist))]++

		if length <= m.params.maxInsert {
			end := pos + length
			if end > len(buf)-minMatch {
				end = len(buf) - minMatch
			}
			for j := pos + 1; j < end; j++ {
				m.insert(hash3(buf, j), j)
			}
		}
		pos += length
	}
	return tokens, pos
}
