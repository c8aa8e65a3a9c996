// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

import (
	"bytes"
	"compress/flate"
	"crypto/rand"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

var testLevels = []int{MinLevel, 2, MaxLevel}

// testText builds n bytes of English-like text from a fixed word list so
// every run compresses the same way.
func testText(n int) []byte {
	words := []string{
		"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dogs",
		"compression", "ratio", "window", "history", "block", "stream",
	}
	buf := make([]byte, 0, n+16)
	state := uint32(0x2545F491)
	for len(buf) < n {
		state = state*1664525 + 1013904223
		buf = append(buf, words[state>>27&15%uint32(len(words))]...)
		buf = append(buf, ' ')
		if state&0xff == 0 {
			buf = append(buf, '\n')
		}
	}
	return buf[:n]
}

func inflate(t testing.TB, compressed []byte) []byte {
	t.Helper()
	r := flate.NewReader(bytes.NewReader(compressed))
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func TestCompressorRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 7, 256, 4095, 32767, 32768, 32769, 65537, 200000}
	for _, lvl := range testLevels {
		for _, size := range sizes {
			source := testText(size)
			buf := bytes.NewBuffer(nil)
			c, err := NewCompressor(buf, lvl)
			require.NoError(t, err)
			_, err = c.Write(source)
			require.NoError(t, err)
			require.NoError(t, c.Close())

			data := inflate(t, buf.Bytes())
			if !bytes.Equal(data, source) {
				t.Fatalf("level %d size %d: output differs at %d", lvl, size, diff(data, source))
			}
		}
	}
}

func diff(d, s []byte) (pos int) {
	pos = -1
	for i := 0; i < len(d) && i < len(s); i++ {
		if d[i] != s[i] {
			return i
		}
	}
	if len(d) != len(s) {
		return len(d)
	}
	return
}

func TestCompressorSmallWrites(t *testing.T) {
	source := testText(100000)
	buf := bytes.NewBuffer(nil)
	c, err := NewCompressor(buf, 2)
	require.NoError(t, err)
	for i := 0; i < len(source); i += 777 {
		end := i + 777
		if end > len(source) {
			end = len(source)
		}
		_, err = c.Write(source[i:end])
		require.NoError(t, err)
	}
	require.NoError(t, c.Close())
	require.True(t, bytes.Equal(inflate(t, buf.Bytes()), source))
}

// Incompressible input must fall back to stored blocks, so output stays
// within the 5-bytes-per-chunk stored framing of the input size.
func TestStoredFallback(t *testing.T) {
	source := make([]byte, 65536)
	rand.Read(source)
	buf := bytes.NewBuffer(nil)
	c, _ := NewCompressor(buf, MaxLevel)
	c.Write(source)
	require.NoError(t, c.Close())

	// 5 bytes of framing per emitted block; blocks go out per maxTokens
	// batch of literals, plus the empty final one.
	maxSize := len(source) + 5*(len(source)/maxTokens+2)
	require.LessOrEqual(t, buf.Len(), maxSize)
	require.True(t, bytes.Equal(inflate(t, buf.Bytes()), source))
}

func TestFlushEmitsSyncMarker(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	c, _ := NewCompressor(buf, 1)
	c.Write([]byte("hello"))
	require.NoError(t, c.Flush())
	out := buf.Bytes()
	require.GreaterOrEqual(t, len(out), 4)
	require.Equal(t, []byte{0x00, 0x00, 0xff, 0xff}, out[len(out)-4:])
}

func TestInvalidLevel(t *testing.T) {
	for _, lvl := range []int{-1, 0, 4, 9} {
		_, err := NewCompressor(io.Discard, lvl)
		require.Error(t, err, strconv.Itoa(lvl))
	}
}

func TestCompressorReset(t *testing.T) {
	source := testText(50000)
	var first, second bytes.Buffer
	c, _ := NewCompressor(&first, 2)
	c.Write(source)
	require.NoError(t, c.Close())
	c.Reset(&second)
	c.Write(source)
	require.NoError(t, c.Close())
	require.Equal(t, first.Bytes(), second.Bytes())
}

func TestWriteAfterClose(t *testing.T) {
	c, _ := NewCompressor(io.Discard, 1)
	require.NoError(t, c.Close())
	_, err := c.Write([]byte("x"))
	require.Error(t, err)
}

func TestFindMatch(t *testing.T) {
	var m matcher
	m.params = levels[MaxLevel]
	m.reset()
	buf := []byte("abcdefabcdefabcdef")
	for i := 0; i <= 5; i++ {
		m.insert(hash3(buf, i), i)
	}
	cand := int(m.head[hash3(buf, 6)]) - 1
	length, dist := m.findMatch(buf, 6, cand)
	require.Equal(t, 12, length)
	require.Equal(t, 6, dist)
}

func TestDistanceSym(t *testing.T) {
	cases := []struct{ dist, sym uint32 }{
		{1, 0}, {2, 1}, {3, 2}, {4, 3}, {5, 4}, {6, 4}, {7, 5},
		{8, 5}, {9, 6}, {13, 7}, {25, 9}, {1024, 19}, {1025, 20}, {24577, 29}, {32768, 29},
	}
	for _, c := range cases {
		require.Equal(t, c.sym, distanceSym(c.dist), "dist %d", c.dist)
	}
}

func BenchmarkCompress(b *testing.B) {
	data := testText(64 << 10)
	for _, lvl := range testLevels {
		b.Run("level="+strconv.Itoa(lvl), func(b *testing.B) {
			c, _ := NewCompressor(io.Discard, lvl)
			for i := 0; i < b.N; i++ {
				b.SetBytes(int64(len(data)))
				c.Write(data)
				c.Close()
				c.Reset(io.Discard)
			}
		})
	}
}
