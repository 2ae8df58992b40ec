package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrFrameTooLarge is returned when a length prefix is negative or
// exceeds the session's payload bound. The stream cannot be resynchronized
// after this, so it is fatal to the channel.
var ErrFrameTooLarge = errors.New("frame payload length out of range")

// WriteFrame writes one length-prefixed frame payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(int32(len(payload))))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads one length-prefixed frame payload of at most maxLength
// bytes.
func ReadFrame(r io.Reader, maxLength int) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	length := int32(binary.BigEndian.Uint32(header[:]))
	if length < 0 || int(length) > maxLength {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrFrameTooLarge, length, maxLength)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}
