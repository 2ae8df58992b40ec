package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// BytesPerPixel is the fixed pixel size of a raw frame (B, G, R).
const BytesPerPixel = 3

// maxDimension bounds every handshake dimension. Anything above this is
// a corrupt or hostile stream rather than a real display.
const maxDimension = 16384

// handshakeLength is four int32 dimensions plus the compression flag.
const handshakeLength = 4*4 + 1

// ErrInvalidParams is returned for a handshake carrying impossible sizes.
var ErrInvalidParams = errors.New("invalid frame init params")

// InitParams is sent once per session, host to controller, before the
// first frame. Every frame in the session is TargetWidth x TargetHeight.
type InitParams struct {
	SourceWidth  int32
	SourceHeight int32
	TargetWidth  int32
	TargetHeight int32
	Compressed   bool
}

// FrameSize returns the raw payload size of one frame in bytes.
func (p InitParams) FrameSize() int {
	return int(p.TargetWidth) * int(p.TargetHeight) * BytesPerPixel
}

// MaxPayload bounds the encoded payload length accepted for one frame.
// Compressed payloads may exceed the raw size on incompressible input,
// so the bound leaves generous headroom for codec framing.
func (p InitParams) MaxPayload() int {
	raw := p.FrameSize()
	if !p.Compressed {
		return raw
	}
	return raw + raw/2 + 64*1024
}

// Validate checks that every dimension is in (0, 16384].
func (p InitParams) Validate() error {
	for _, d := range []struct {
		name  string
		value int32
	}{
		{"source width", p.SourceWidth},
		{"source height", p.SourceHeight},
		{"target width", p.TargetWidth},
		{"target height", p.TargetHeight},
	} {
		if d.value <= 0 || d.value > maxDimension {
			return fmt.Errorf("%w: %s %d", ErrInvalidParams, d.name, d.value)
		}
	}
	return nil
}

func (p InitParams) String() string {
	return fmt.Sprintf("%dx%d->%dx%d compressed=%t",
		p.SourceWidth, p.SourceHeight, p.TargetWidth, p.TargetHeight, p.Compressed)
}

// WriteInitParams writes the image channel handshake.
func WriteInitParams(w io.Writer, p InitParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var buf [handshakeLength]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(p.SourceWidth))
	binary.BigEndian.PutUint32(buf[4:8], uint32(p.SourceHeight))
	binary.BigEndian.PutUint32(buf[8:12], uint32(p.TargetWidth))
	binary.BigEndian.PutUint32(buf[12:16], uint32(p.TargetHeight))
	if p.Compressed {
		buf[16] = 1
	}
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write handshake: %w", err)
	}
	return nil
}

// ReadInitParams reads and validates the image channel handshake.
func ReadInitParams(r io.Reader) (InitParams, error) {
	var buf [handshakeLength]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return InitParams{}, fmt.Errorf("read handshake: %w", err)
	}
	p := InitParams{
		SourceWidth:  int32(binary.BigEndian.Uint32(buf[0:4])),
		SourceHeight: int32(binary.BigEndian.Uint32(buf[4:8])),
		TargetWidth:  int32(binary.BigEndian.Uint32(buf[8:12])),
		TargetHeight: int32(binary.BigEndian.Uint32(buf[12:16])),
		Compressed:   buf[16] != 0,
	}
	if err := p.Validate(); err != nil {
		return InitParams{}, err
	}
	return p, nil
}
