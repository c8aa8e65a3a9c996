// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package fastgz

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/fastgz/fastgz/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestGzipGunzip(t *testing.T) {
	source := strings.Repeat("round and round the stream goes ", 4096)
	var compressed bytes.Buffer
	require.NoError(t, Gzip(&compressed, strings.NewReader(source), gzip.DefaultCompression))

	var out bytes.Buffer
	n, err := Gunzip(&out, &compressed)
	require.NoError(t, err)
	require.Equal(t, int64(len(source)), n)
	require.Equal(t, source, out.String())
}

func TestGzipStdlibCompatible(t *testing.T) {
	source := strings.Repeat("interoperability check ", 2048)
	var compressed bytes.Buffer
	require.NoError(t, Gzip(&compressed, strings.NewReader(source), 3))

	r, err := stdgzip.NewReader(&compressed)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, source, string(data))
}

func TestGzipInvalidLevel(t *testing.T) {
	require.Error(t, Gzip(io.Discard, strings.NewReader("x"), 11))
}
