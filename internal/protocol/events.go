package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/junsooki/AirDesk/internal/input"
)

// Event type codes shared by the cursor and keyboard channels. The wheel
// codes are named for the physical rotation, not the scroll effect:
// EventWheelDown (4) scrolls toward the start of the content and
// EventWheelUp (5) toward the end.
const (
	EventMove       int32 = 1
	EventButtonDown int32 = 2
	EventButtonUp   int32 = 3
	EventWheelDown  int32 = 4
	EventWheelUp    int32 = 5
	EventKeyDown    int32 = 6
	EventKeyUp      int32 = 7
)

// UnknownEventError reports a record whose type code (or button id) the
// reader does not understand. The record has been consumed; the stream
// is still aligned and reading can continue.
type UnknownEventError struct {
	Type   int32
	Button int32
}

func (e *UnknownEventError) Error() string {
	if e.Button != 0 {
		return fmt.Sprintf("unknown button %d for event type %d", e.Button, e.Type)
	}
	return fmt.Sprintf("unknown event type %d", e.Type)
}

// WriteCursorEvent encodes one pointer event.
func WriteCursorEvent(w io.Writer, e input.CursorEvent) error {
	var buf [12]byte
	n := 4
	switch e.Action {
	case input.CursorMove:
		putInt32(buf[0:], EventMove)
		putInt32(buf[4:], e.X)
		putInt32(buf[8:], e.Y)
		n = 12
	case input.CursorButtonDown, input.CursorButtonUp:
		if !e.Button.Valid() {
			return fmt.Errorf("encode %s: invalid button", e.Action)
		}
		code := EventButtonDown
		if e.Action == input.CursorButtonUp {
			code = EventButtonUp
		}
		putInt32(buf[0:], code)
		putInt32(buf[4:], int32(e.Button))
		n = 8
	case input.CursorWheelUp:
		putInt32(buf[0:], EventWheelDown)
	case input.CursorWheelDown:
		putInt32(buf[0:], EventWheelUp)
	default:
		return fmt.Errorf("encode cursor event: unknown action %s", e.Action)
	}
	if _, err := w.Write(buf[:n]); err != nil {
		return fmt.Errorf("write cursor event: %w", err)
	}
	return nil
}

// ReadCursorEvent decodes one pointer event. An unknown type code yields
// *UnknownEventError after consuming only the 4-byte type; an unknown
// button id yields *UnknownEventError after consuming the whole record.
func ReadCursorEvent(r io.Reader) (input.CursorEvent, error) {
	eventType, err := readInt32(r)
	if err != nil {
		return input.CursorEvent{}, fmt.Errorf("read cursor event type: %w", err)
	}
	switch eventType {
	case EventMove:
		var xy [8]byte
		if _, err := io.ReadFull(r, xy[:]); err != nil {
			return input.CursorEvent{}, fmt.Errorf("read move coordinates: %w", err)
		}
		return input.Move(int32(binary.BigEndian.Uint32(xy[0:4])), int32(binary.BigEndian.Uint32(xy[4:8]))), nil
	case EventButtonDown, EventButtonUp:
		id, err := readInt32(r)
		if err != nil {
			return input.CursorEvent{}, fmt.Errorf("read button id: %w", err)
		}
		button := input.Button(id)
		if !button.Valid() {
			return input.CursorEvent{}, &UnknownEventError{Type: eventType, Button: id}
		}
		if eventType == EventButtonDown {
			return input.ButtonDown(button), nil
		}
		return input.ButtonUp(button), nil
	case EventWheelDown:
		return input.WheelUp(), nil
	case EventWheelUp:
		return input.WheelDown(), nil
	default:
		return input.CursorEvent{}, &UnknownEventError{Type: eventType}
	}
}

// WriteKeyEvent encodes one key event as type then key code.
func WriteKeyEvent(w io.Writer, e input.KeyEvent) error {
	var buf [8]byte
	switch e.Action {
	case input.KeyPress:
		putInt32(buf[0:], EventKeyDown)
	case input.KeyRelease:
		putInt32(buf[0:], EventKeyUp)
	default:
		return fmt.Errorf("encode key event: unknown action %s", e.Action)
	}
	putInt32(buf[4:], int32(e.Code))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write key event: %w", err)
	}
	return nil
}

// ReadKeyEvent decodes one key event. Keyboard records are fixed size,
// so an unknown type still consumes its key code.
func ReadKeyEvent(r io.Reader) (input.KeyEvent, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return input.KeyEvent{}, fmt.Errorf("read key event: %w", err)
	}
	eventType := int32(binary.BigEndian.Uint32(buf[0:4]))
	code := input.KeyCode(int32(binary.BigEndian.Uint32(buf[4:8])))
	switch eventType {
	case EventKeyDown:
		return input.KeyDown(code), nil
	case EventKeyUp:
		return input.KeyUp(code), nil
	default:
		return input.KeyEvent{}, &UnknownEventError{Type: eventType}
	}
}

func putInt32(b []byte, v int32) {
	binary.BigEndian.PutUint32(b, uint32(v))
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}
