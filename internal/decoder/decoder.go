// Package decoder reverses the image channel encoding on the controller.
package decoder

import (
	"errors"
	"fmt"
	"image"

	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/protocol"
)

// ErrSizeMismatch is returned when a decoded payload is not exactly
// width*height*3 bytes.
var ErrSizeMismatch = errors.New("decoded payload size mismatch")

// Decoder decodes bytes into an image.
type Decoder interface {
	Decode(data []byte) (*image.RGBA, error)
}

// FrameDecoder decodes payloads of one session. Errors from Decode affect
// only the frame being decoded.
type FrameDecoder struct {
	width, height int
	codec         codec.Codec
}

// NewFrameDecoder builds a decoder from the session handshake. When the
// handshake says compression is enabled, c must be the codec the host
// uses; otherwise c is ignored.
func NewFrameDecoder(params protocol.InitParams, c codec.Codec) (*FrameDecoder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !params.Compressed {
		c = codec.None{}
	} else if !codec.Enabled(c) {
		return nil, fmt.Errorf("host compresses frames but no codec is configured")
	}
	return &FrameDecoder{
		width:  int(params.TargetWidth),
		height: int(params.TargetHeight),
		codec:  c,
	}, nil
}

// Decode decompresses payload and unpacks it into a new RGBA image.
func (d *FrameDecoder) Decode(payload []byte) (*image.RGBA, error) {
	want := d.width * d.height * protocol.BytesPerPixel
	raw, err := d.codec.Decompress(payload, want)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.codec.Name(), err)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(raw), want)
	}
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	UnpackBGR(img.Pix, raw)
	return img, nil
}

// UnpackBGR expands B, G, R triples into opaque RGBA pixels.
func UnpackBGR(dst, src []byte) {
	for i, j := 0, 0; i+2 < len(src) && j+3 < len(dst); i, j = i+3, j+4 {
		dst[j] = src[i+2]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i]
		dst[j+3] = 0xFF
	}
}
