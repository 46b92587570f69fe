package snapshot

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// nopWriteCloser adapts a plain writer to io.WriteCloser.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// CompressWriter wraps w in a zstd encoder when enabled, or returns w
// unchanged behind a no-op Close. The caller must Close the result to
// flush the compressed stream.
func CompressWriter(w io.Writer, enabled bool) (io.WriteCloser, error) {
	if !enabled {
		return nopWriteCloser{w}, nil
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, NewExportError("zstd", err)
	}
	return enc, nil
}

// DecompressReader wraps r in a zstd decoder. The caller must Close
// the result.
func DecompressReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, NewExportError("zstd", err)
	}
	return dec.IOReadCloser(), nil
}
