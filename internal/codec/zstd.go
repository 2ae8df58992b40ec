package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdMaxWindow bounds decoder memory. Frames are a few megabytes at
// most, so this is far above anything a well-formed peer sends.
const zstdMaxWindow = 64 << 20

// The encoder and decoder are safe for concurrent use and expensive to
// build, so one pair is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxWindow(zstdMaxWindow),
		zstd.WithDecoderMaxMemory(zstdMaxWindow),
	)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// Zstd trades more CPU than Snappy for a better ratio on slow links.
type Zstd struct{}

func (Zstd) Name() string { return NameZstd }

func (Zstd) Compress(src []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(src, nil), nil
}

func (Zstd) Decompress(src []byte, maxSize int) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(out) > maxSize {
		return nil, fmt.Errorf("zstd decompress: %d bytes: %w", len(out), ErrTooLarge)
	}
	return out, nil
}
