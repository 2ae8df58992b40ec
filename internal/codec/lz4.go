package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 uses the LZ4 frame format, which carries its own content size and
// checksum so no out-of-band length is needed.
type LZ4 struct{}

func (LZ4) Name() string { return NameLZ4 }

func (LZ4) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(lz4.CompressBlockBound(len(src)) + 64)
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (LZ4) Decompress(src []byte, maxSize int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	out, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if len(out) > maxSize {
		return nil, fmt.Errorf("lz4 decompress: %w", ErrTooLarge)
	}
	return out, nil
}
