//nolint:revive // exported
package compress

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

type CompressType = int8

const (
	CompressTypeNone    CompressType = 0
	CompressTypeGzip    CompressType = 1
	CompressTypeZstd    CompressType = 2
	CompressTypeBr      CompressType = 3
	CompressTypeDeflate CompressType = 4
)

// CompressTypeFromEncoding maps a Content-Encoding token to its codec.
func CompressTypeFromEncoding(encoding string) (CompressType, bool) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return CompressTypeNone, true
	case "gzip", "x-gzip":
		return CompressTypeGzip, true
	case "zstd":
		return CompressTypeZstd, true
	case "br":
		return CompressTypeBr, true
	case "deflate":
		return CompressTypeDeflate, true
	}
	return CompressTypeNone, false
}

var (
	gzipWriterPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(io.Discard)
		},
	}
	brotliWriterPool = sync.Pool{
		New: func() interface{} {
			return brotli.NewWriter(io.Discard)
		},
	}
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func Compress(data []byte, compressType CompressType) ([]byte, error) {
	var buf bytes.Buffer
	switch compressType {
	case CompressTypeNone:
		return data, nil
	case CompressTypeGzip:
		z := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(z)

		z.Reset(&buf)
		if _, err := z.Write(data); err != nil {
			return nil, err
		}
		if err := z.Close(); err != nil {
			return nil, err
		}
	case CompressTypeZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data))), nil
	case CompressTypeBr:
		w := brotliWriterPool.Get().(*brotli.Writer)
		defer brotliWriterPool.Put(w)

		w.Reset(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressTypeDeflate:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported compression type: %v", compressType)
	}
	return buf.Bytes(), nil
}

func Decompress(data []byte, compressType CompressType) ([]byte, error) {
	switch compressType {
	case CompressTypeNone:
		return data, nil
	case CompressTypeGzip:
		z, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = z.Close() }()
		return io.ReadAll(z)
	case CompressTypeZstd:
		return zstdDecoder.DecodeAll(data, nil)
	case CompressTypeBr:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	case CompressTypeDeflate:
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			// some servers ship raw deflate streams without the zlib header
			r := flate.NewReader(bytes.NewReader(data))
			defer func() { _ = r.Close() }()
			return io.ReadAll(r)
		}
		defer func() { _ = z.Close() }()
		return io.ReadAll(z)
	default:
		return nil, fmt.Errorf("unsupported compression type: %v", compressType)
	}
}

// DecodeContentEncoding undoes a Content-Encoding header value. Layered
// encodings like "gzip, br" decode in reverse of the listed order.
func DecodeContentEncoding(data []byte, contentEncoding string) ([]byte, error) {
	tokens := strings.Split(contentEncoding, ",")
	for i := len(tokens) - 1; i >= 0; i-- {
		compressType, ok := CompressTypeFromEncoding(tokens[i])
		if !ok {
			return nil, fmt.Errorf("%s encoding not supported", strings.TrimSpace(tokens[i]))
		}
		decoded, err := Decompress(data, compressType)
		if err != nil {
			return nil, err
		}
		data = decoded
	}
	return data, nil
}
