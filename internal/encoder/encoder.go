// Package encoder turns captured screen images into image channel
// payloads: scale to the session's target size, pack as 3-byte BGR, then
// compress.
package encoder

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"

	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/protocol"
)

// Encoder encodes an image into bytes.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
}

// FrameEncoder produces raw-or-compressed frames of a fixed size.
type FrameEncoder struct {
	width, height int
	codec         codec.Codec
	raw           []byte
}

// NewFrameEncoder returns an encoder producing width x height frames. A
// nil codec or codec.None leaves payloads uncompressed.
func NewFrameEncoder(width, height int, c codec.Codec) (*FrameEncoder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if c == nil {
		c = codec.None{}
	}
	return &FrameEncoder{width: width, height: height, codec: c}, nil
}

// Size returns the target frame size.
func (e *FrameEncoder) Size() (width, height int) { return e.width, e.height }

// Compressed reports whether payloads are compressed.
func (e *FrameEncoder) Compressed() bool { return codec.Enabled(e.codec) }

// Encode scales img to the target size with bilinear interpolation and
// returns the encoded payload. The returned slice is only valid until the
// next call when compression is disabled.
func (e *FrameEncoder) Encode(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("encode: empty image %v", b)
	}
	if b.Dx() != e.width || b.Dy() != e.height {
		img = resize.Resize(uint(e.width), uint(e.height), img, resize.Bilinear)
	}
	if cap(e.raw) < e.width*e.height*protocol.BytesPerPixel {
		e.raw = make([]byte, e.width*e.height*protocol.BytesPerPixel)
	}
	e.raw = e.raw[:e.width*e.height*protocol.BytesPerPixel]
	PackBGR(e.raw, img)

	payload, err := e.codec.Compress(e.raw)
	if err != nil {
		return nil, fmt.Errorf("encode: %s: %w", e.codec.Name(), err)
	}
	return payload, nil
}

// PackBGR writes img row-major into dst as B, G, R triples. dst must hold
// exactly Dx*Dy*3 bytes.
func PackBGR(dst []byte, img image.Image) {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				p := row[x*4 : x*4+3 : x*4+3]
				dst[i] = p[2]
				dst[i+1] = p[1]
				dst[i+2] = p[0]
				i += 3
			}
		}
		return
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dst[i] = byte(bl >> 8)
			dst[i+1] = byte(g >> 8)
			dst[i+2] = byte(r >> 8)
			i += 3
		}
	}
}
