package decoder

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/encoder"
	"github.com/junsooki/AirDesk/internal/protocol"
)

func params(w, h int32, compressed bool) protocol.InitParams {
	return protocol.InitParams{SourceWidth: w, SourceHeight: h, TargetWidth: w, TargetHeight: h, Compressed: compressed}
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestRoundTripAllCodecs(t *testing.T) {
	src := gradient(32, 24)
	for _, name := range codec.Names() {
		t.Run(name, func(t *testing.T) {
			c, err := codec.Lookup(name)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			enc, err := encoder.NewFrameEncoder(32, 24, c)
			if err != nil {
				t.Fatalf("NewFrameEncoder: %v", err)
			}
			payload, err := enc.Encode(src)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			dec, err := NewFrameDecoder(params(32, 24, enc.Compressed()), c)
			if err != nil {
				t.Fatalf("NewFrameDecoder: %v", err)
			}
			got, err := dec.Decode(payload)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			for y := range 24 {
				for x := range 32 {
					if got.RGBAAt(x, y) != src.RGBAAt(x, y) {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.RGBAAt(x, y), src.RGBAAt(x, y))
					}
				}
			}
		})
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	dec, err := NewFrameDecoder(params(4, 4, false), nil)
	if err != nil {
		t.Fatalf("NewFrameDecoder: %v", err)
	}
	if _, err := dec.Decode(make([]byte, 4*4*3-1)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Decode(short) error = %v, want ErrSizeMismatch", err)
	}
}

func TestDecodeCorruptPayloadIsRecoverable(t *testing.T) {
	snappy, _ := codec.Lookup(codec.NameSnappy)
	dec, err := NewFrameDecoder(params(8, 8, true), snappy)
	if err != nil {
		t.Fatalf("NewFrameDecoder: %v", err)
	}
	if _, err := dec.Decode([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01}); err == nil {
		t.Fatal("Decode(garbage) succeeded")
	}

	// The decoder keeps working after a bad frame.
	enc, _ := encoder.NewFrameEncoder(8, 8, snappy)
	payload, err := enc.Encode(gradient(8, 8))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := dec.Decode(payload); err != nil {
		t.Errorf("Decode after garbage: %v", err)
	}
}

func TestNewFrameDecoderRequiresCodecWhenCompressed(t *testing.T) {
	if _, err := NewFrameDecoder(params(8, 8, true), codec.None{}); err == nil {
		t.Error("compressed session accepted without a codec")
	}
	if _, err := NewFrameDecoder(params(0, 8, false), nil); !errors.Is(err, protocol.ErrInvalidParams) {
		t.Errorf("zero width error = %v, want ErrInvalidParams", err)
	}
}

func TestUnpackBGR(t *testing.T) {
	dst := make([]byte, 8)
	UnpackBGR(dst, []byte{1, 2, 3, 4, 5, 6})
	want := []byte{3, 2, 1, 255, 6, 5, 4, 255}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("UnpackBGR = %v, want %v", dst, want)
		}
	}
}
