// Package codec provides the lossless byte-buffer compressors applied to
// raw frame payloads on the image channel.
//
// A Codec only has to honour the round-trip contract
// Decompress(Compress(b)) == b. The wire handshake carries a single
// "compression enabled" flag, so both ends must be configured with the
// same codec name; Snappy is the default on both sides.
package codec

import (
	"errors"
	"fmt"
	"sort"
)

// Codec compresses and decompresses frame payloads.
type Codec interface {
	// Name returns the registry name of the codec.
	Name() string

	// Compress returns the encoded form of src. src is not modified.
	Compress(src []byte) ([]byte, error)

	// Decompress decodes src. It fails rather than allocate more than
	// maxSize bytes of output.
	Decompress(src []byte, maxSize int) ([]byte, error)
}

// ErrTooLarge is returned when a decoded payload would exceed the
// caller's size limit.
var ErrTooLarge = errors.New("decoded payload exceeds size limit")

// Codec names accepted by Lookup.
const (
	NameNone   = "none"
	NameSnappy = "snappy"
	NameS2     = "s2"
	NameLZ4    = "lz4"
	NameZstd   = "zstd"
)

var registry = map[string]Codec{
	NameNone:   None{},
	NameSnappy: Snappy{},
	NameS2:     S2{},
	NameLZ4:    LZ4{},
	NameZstd:   Zstd{},
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (want one of %v)", name, Names())
	}
	return c, nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enabled reports whether c actually transforms payloads. A nil codec
// and None both mean compression is disabled.
func Enabled(c Codec) bool {
	if c == nil {
		return false
	}
	_, none := c.(None)
	return !none
}

// None passes payloads through unchanged.
type None struct{}

func (None) Name() string { return NameNone }

func (None) Compress(src []byte) ([]byte, error) { return src, nil }

func (None) Decompress(src []byte, maxSize int) ([]byte, error) {
	if len(src) > maxSize {
		return nil, fmt.Errorf("none: %d bytes: %w", len(src), ErrTooLarge)
	}
	return src, nil
}
