package codec

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
)

// Snappy uses the Snappy block format. It is the default codec and is
// byte-compatible with stock Snappy block encoders.
type Snappy struct{}

func (Snappy) Name() string { return NameSnappy }

func (Snappy) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (Snappy) Decompress(src []byte, maxSize int) ([]byte, error) {
	size, err := snappy.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	if size > maxSize {
		return nil, fmt.Errorf("snappy: %d bytes: %w", size, ErrTooLarge)
	}
	out, err := snappy.Decode(make([]byte, size), src)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	return out, nil
}

// S2 is klauspost's Snappy extension. It decodes Snappy blocks too, but
// its own output is not readable by plain Snappy decoders.
type S2 struct{}

func (S2) Name() string { return NameS2 }

func (S2) Compress(src []byte) ([]byte, error) {
	return s2.Encode(nil, src), nil
}

func (S2) Decompress(src []byte, maxSize int) ([]byte, error) {
	size, err := s2.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("s2: %w", err)
	}
	if size > maxSize {
		return nil, fmt.Errorf("s2: %d bytes: %w", size, ErrTooLarge)
	}
	out, err := s2.Decode(make([]byte, size), src)
	if err != nil {
		return nil, fmt.Errorf("s2: %w", err)
	}
	return out, nil
}
