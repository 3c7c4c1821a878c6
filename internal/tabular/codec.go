package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"

	"mriopack/internal/schema"
)

// Compress wraps w with the writer of the given codec. Closing the returned
// writer flushes the compressed stream but does not close w.
func Compress(w io.Writer, codec schema.Codec) (io.WriteCloser, error) {
	switch codec {
	case schema.CodecBzip2:
		bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		if err != nil {
			return nil, err
		}
		return bw, nil
	case schema.CodecZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}

// Decompress wraps r with the reader of the given codec
func Decompress(r io.Reader, codec schema.Codec) (io.ReadCloser, error) {
	switch codec {
	case schema.CodecBzip2:
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, err
		}
		return br, nil
	case schema.CodecZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}

// CodecFor returns the codec implied by a resource path suffix
func CodecFor(path string) (schema.Codec, bool) {
	switch {
	case strings.HasSuffix(path, schema.CodecBzip2.Extension()):
		return schema.CodecBzip2, true
	case strings.HasSuffix(path, schema.CodecZstd.Extension()):
		return schema.CodecZstd, true
	default:
		return "", false
	}
}

// IsSparse reports whether a resource path uses the coordinate encoding
func IsSparse(path string) bool {
	return strings.HasSuffix(path, schema.SparseSuffix)
}
