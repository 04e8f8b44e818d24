package compress

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompress(t *testing.T) {
	data := []byte("Hello, world! This is a test string to compress.")

	tests := []struct {
		name string
		algo CompressType
	}{
		{name: "Gzip", algo: CompressTypeGzip},
		{name: "Zstd", algo: CompressTypeZstd},
		{name: "Brotli", algo: CompressTypeBr},
		{name: "Deflate", algo: CompressTypeDeflate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := Compress(data, tt.algo)
			require.NoError(t, err)
			assert.NotEmpty(t, compressed)

			decompressed, err := Decompress(compressed, tt.algo)
			require.NoError(t, err)
			assert.Equal(t, data, decompressed)
		})
	}
}

func TestCompressNonePassesThrough(t *testing.T) {
	data := []byte("plain")

	compressed, err := Compress(data, CompressTypeNone)
	require.NoError(t, err)
	assert.Equal(t, data, compressed)

	decompressed, err := Decompress(data, CompressTypeNone)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestCompressTypeFromEncoding(t *testing.T) {
	tests := []struct {
		encoding string
		want     CompressType
		ok       bool
	}{
		{"gzip", CompressTypeGzip, true},
		{"x-gzip", CompressTypeGzip, true},
		{"GZIP", CompressTypeGzip, true},
		{" br ", CompressTypeBr, true},
		{"zstd", CompressTypeZstd, true},
		{"deflate", CompressTypeDeflate, true},
		{"identity", CompressTypeNone, true},
		{"", CompressTypeNone, true},
		{"sdch", CompressTypeNone, false},
	}
	for _, tt := range tests {
		got, ok := CompressTypeFromEncoding(tt.encoding)
		assert.Equal(t, tt.ok, ok, "encoding %q", tt.encoding)
		if ok {
			assert.Equal(t, tt.want, got, "encoding %q", tt.encoding)
		}
	}
}

func TestDecodeContentEncoding(t *testing.T) {
	data := []byte("Hello, Content-Encoding!")

	tests := []struct {
		name     string
		encoding string
		algo     CompressType
	}{
		{"gzip", "gzip", CompressTypeGzip},
		{"zstd", "zstd", CompressTypeZstd},
		{"br", "br", CompressTypeBr},
		{"deflate", "deflate", CompressTypeDeflate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := Compress(data, tt.algo)
			require.NoError(t, err)

			decompressed, err := DecodeContentEncoding(compressed, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, data, decompressed)
		})
	}

	t.Run("layered encodings decode in reverse", func(t *testing.T) {
		inner, err := Compress(data, CompressTypeGzip)
		require.NoError(t, err)
		outer, err := Compress(inner, CompressTypeBr)
		require.NoError(t, err)

		decompressed, err := DecodeContentEncoding(outer, "gzip, br")
		require.NoError(t, err)
		assert.Equal(t, data, decompressed)
	})

	t.Run("unsupported token", func(t *testing.T) {
		_, err := DecodeContentEncoding(data, "sdch")
		require.Error(t, err)
	})
}

func TestDecompressRawDeflate(t *testing.T) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write([]byte("raw stream"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	decompressed, err := Decompress(buf.Bytes(), CompressTypeDeflate)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw stream"), decompressed)
}
