// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package flate

import (
	"bytes"
	stdflate "compress/flate"
	"io"
	"testing"

	kflate "github.com/klauspost/compress/flate"
)

func TestWriterRoundTrip(t *testing.T) {
	source := testText(150000)
	for lvl := 1; lvl <= 3; lvl++ {
		buf := bytes.NewBuffer(nil)
		w, err := NewWriter(buf, lvl)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(source)
		w.Close()

		// The output must decode with this package, the standard library
		// and a third-party engine alike.
		for name, r := range map[string]io.ReadCloser{
			"own":       NewReader(bytes.NewReader(buf.Bytes())),
			"std":       stdflate.NewReader(bytes.NewReader(buf.Bytes())),
			"klauspost": kflate.NewReader(bytes.NewReader(buf.Bytes())),
		} {
			data, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("level %d engine %s: %v", lvl, name, err)
			}
			if !bytes.Equal(data, source) {
				t.Fatalf("level %d engine %s: output differs", lvl, name)
			}
			r.Close()
		}
	}
}

func TestWriterDefaultLevel(t *testing.T) {
	source := testText(5000)
	buf := bytes.NewBuffer(nil)
	w, err := NewWriter(buf, DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(source)
	w.Close()
	data, err := io.ReadAll(NewReader(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, source) {
		t.Fatal("round trip failed")
	}
}

func TestWriterInvalidLevel(t *testing.T) {
	if _, err := NewWriter(io.Discard, 7); err == nil {
		t.Fatal("expected error for level 7")
	}
}

func TestWriterFlush(t *testing.T) {
	var network bytes.Buffer
	w, _ := NewWriter(&network, 2)
	r := NewReader(&network)

	// Flush makes everything written so far decodable without closing
	// the stream.
	for _, msg := range []string{"first message ", "second message ", "third"} {
		w.Write([]byte(msg))
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		got := make([]byte, len(msg))
		if _, err := io.ReadFull(r, got); err != nil {
			t.Fatal(err)
		}
		if string(got) != msg {
			t.Fatalf("got %q want %q", got, msg)
		}
	}
	w.Close()
}

// Small or heavily skewed inputs come out as fixed-Huffman blocks, since
// the dynamic header costs more than the body; pair that encoder path with
// this package's own reader, including self-referential matches where the
// distance is shorter than the length.
func TestFixedBlockRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("abcabcabcabcabc"),
		bytes.Repeat([]byte("a"), 100000),
		bytes.Repeat([]byte("xy"), 40),
		testText(64),
	}
	for lvl := 1; lvl <= 3; lvl++ {
		for i, source := range inputs {
			buf := bytes.NewBuffer(nil)
			w, err := NewWriter(buf, lvl)
			if err != nil {
				t.Fatal(err)
			}
			w.Write(source)
			w.Close()
			data, err := io.ReadAll(NewReader(bytes.NewReader(buf.Bytes())))
			if err != nil {
				t.Fatalf("level %d input %d: %v", lvl, i, err)
			}
			if !bytes.Equal(data, source) {
				t.Fatalf("level %d input %d: output differs at %d of %d",
					lvl, i, firstDiff(data, source), len(source))
			}
		}
	}
}

func TestWriterDeterministic(t *testing.T) {
	source := testText(80000)
	var a, b bytes.Buffer
	w, _ := NewWriter(&a, 3)
	w.Write(source)
	w.Close()
	w.Reset(&b)
	w.Write(source)
	w.Close()
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("same input and level produced different streams")
	}
}
