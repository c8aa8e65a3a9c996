//go:build go1.18
// +build go1.18

package flate

import (
	"bytes"
	"io"
	"testing"
)

func FuzzInflate(f *testing.F) {
	f.Add(testText(4096))
	f.Add([]byte{})
	f.Add([]byte("abcabcabcabcabc"))
	f.Fuzz(func(t *testing.T, source []byte) {
		input := compress(source)
		r := NewReader(bytes.NewReader(input))
		data, err := io.ReadAll(r)
		n := len(data)
		if err != nil && err != io.EOF {
			t.Fatal(err, n, bytes.Equal(data[:n], source[:n]))
		}
		if !bytes.Equal(data, source) {
			t.Fatal()
		}
	})
}

// FuzzInflateCorrupt feeds arbitrary bytes to the decoder; it must fail
// cleanly rather than hang or panic, and any error it reports is one of the
// structured kinds.
func FuzzInflateCorrupt(f *testing.F) {
	f.Add([]byte{0x07})
	f.Add(compress(testText(512)))
	f.Fuzz(func(t *testing.T, input []byte) {
		r := NewReader(bytes.NewReader(input))
		io.Copy(io.Discard, io.LimitReader(r, 1<<20))
		r.Close()
	})
}
