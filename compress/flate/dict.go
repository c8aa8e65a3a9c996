// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package flate

// dictWindow is the decoder's 32 KiB sliding history. Output accumulates in
// hist until the buffer fills or a block ends, then readFlush hands the new
// bytes to the Reader. Back-references resolve against the same buffer,
// with explicit wraparound when the source region precedes the current
// write cycle.
type dictWindow struct {
	hist [windowSize]byte

	// Invariant: 0 <= rd <= wr <= windowSize
	wr   int
	rd   int
	full bool // a full window has been written at least once
}

const windowSize = 32 << 10

func (w *dictWindow) reset() {
	w.wr = 0
	w.rd = 0
	w.full = false
}

// histSize is the number of bytes of history available for back-references.
func (w *dictWindow) histSize() int {
	if w.full {
		return windowSize
	}
	return w.wr
}

func (w *dictWindow) availWrite() int {
	return windowSize - w.wr
}

func (w *dictWindow) writeByte(c byte) {
	w.hist[w.wr] = c
	w.wr++
}

// writeCopy copies length bytes from dist bytes back in the history to the
// write position, stopping at the end of the buffer. Overlapping ranges
// (dist < length) replicate correctly because the forward copy can only
// ever source bytes already written this call. It returns the number of
// bytes copied; the caller retries after a flush if it falls short.
func (w *dictWindow) writeCopy(dist, length int) int {
	dstBase := w.wr
	dstPos := dstBase
	srcPos := dstPos - dist
	endPos := dstPos + length
	if endPos > windowSize {
		endPos = windowSize
	}

	if srcPos < 0 {
		// Source wraps to the previous window cycle at the buffer's end.
		srcPos += windowSize
		dstPos += copy(w.hist[dstPos:endPos], w.hist[srcPos:])
		srcPos = 0
	}
	for dstPos < endPos {
		dstPos += copy(w.hist[dstPos:endPos], w.hist[srcPos:dstPos])
	}
	w.wr = dstPos
	return dstPos - dstBase
}

// preload seeds the history with a preset dictionary, keeping the last
// window's worth.
func (w *dictWindow) preload(dict []byte) {
	if len(dict) > windowSize {
		dict = dict[len(dict)-windowSize:]
	}
	w.wr = copy(w.hist[:], dict)
	w.rd = w.wr
	if w.wr == windowSize {
		w.wr = 0
		w.rd = 0
		w.full = true
	}
}

// readFlush returns the bytes written since the last flush and recycles the
// buffer once the write position reaches the end.
func (w *dictWindow) readFlush() []byte {
	out := w.hist[w.rd:w.wr]
	w.rd = w.wr
	if w.wr == windowSize {
		w.wr = 0
		w.rd = 0
		w.full = true
	}
	return out
}
