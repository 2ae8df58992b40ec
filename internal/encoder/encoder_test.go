package encoder

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/junsooki/AirDesk/internal/codec"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPackBGROrder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	dst := make([]byte, 6)
	PackBGR(dst, img)
	want := []byte{30, 20, 10, 60, 50, 40}
	if !bytes.Equal(dst, want) {
		t.Errorf("PackBGR = %v, want %v", dst, want)
	}
}

func TestPackBGRSubImage(t *testing.T) {
	img := solid(4, 4, color.RGBA{A: 255})
	img.SetRGBA(2, 3, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	sub := img.SubImage(image.Rect(2, 3, 3, 4)).(*image.RGBA)

	dst := make([]byte, 3)
	PackBGR(dst, sub)
	if want := []byte{3, 2, 1}; !bytes.Equal(dst, want) {
		t.Errorf("PackBGR(subimage) = %v, want %v", dst, want)
	}
}

func TestPackBGRGenericImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	dst := make([]byte, 3)
	PackBGR(dst, img)
	if want := []byte{50, 100, 200}; !bytes.Equal(dst, want) {
		t.Errorf("PackBGR(NRGBA) = %v, want %v", dst, want)
	}
}

func TestEncodeScalesToTarget(t *testing.T) {
	enc, err := NewFrameEncoder(4, 4, nil)
	if err != nil {
		t.Fatalf("NewFrameEncoder: %v", err)
	}
	if enc.Compressed() {
		t.Error("nil codec reported as compressed")
	}

	payload, err := enc.Encode(solid(16, 8, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(payload) != 4*4*3 {
		t.Fatalf("payload length = %d, want %d", len(payload), 4*4*3)
	}
	for i := 0; i < len(payload); i += 3 {
		if payload[i] != 0 || payload[i+1] != 0 || payload[i+2] != 255 {
			t.Fatalf("pixel %d = %v, want pure red in BGR", i/3, payload[i:i+3])
		}
	}
}

func TestEncodeCompressed(t *testing.T) {
	snappy, err := codec.Lookup(codec.NameSnappy)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	enc, err := NewFrameEncoder(64, 64, snappy)
	if err != nil {
		t.Fatalf("NewFrameEncoder: %v", err)
	}
	payload, err := enc.Encode(solid(64, 64, color.RGBA{G: 128, A: 255}))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(payload) >= 64*64*3 {
		t.Errorf("flat frame compressed to %d bytes, want fewer than raw %d", len(payload), 64*64*3)
	}
	raw, err := snappy.Decompress(payload, 64*64*3)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if raw[0] != 0 || raw[1] != 128 || raw[2] != 0 {
		t.Errorf("first pixel = %v, want [0 128 0]", raw[:3])
	}
}

func TestNewFrameEncoderRejectsBadSize(t *testing.T) {
	if _, err := NewFrameEncoder(0, 10, nil); err == nil {
		t.Error("NewFrameEncoder(0, 10) succeeded")
	}
	enc, _ := NewFrameEncoder(2, 2, nil)
	if _, err := enc.Encode(image.NewRGBA(image.Rectangle{})); err == nil {
		t.Error("Encode(empty) succeeded")
	}
}
