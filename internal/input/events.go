package input

import "fmt"

// CursorAction identifies the kind of pointer event.
type CursorAction int

const (
	CursorMove CursorAction = iota + 1
	CursorButtonDown
	CursorButtonUp
	CursorWheelDown
	CursorWheelUp
)

func (a CursorAction) String() string {
	switch a {
	case CursorMove:
		return "move"
	case CursorButtonDown:
		return "button_down"
	case CursorButtonUp:
		return "button_up"
	case CursorWheelDown:
		return "wheel_down"
	case CursorWheelUp:
		return "wheel_up"
	default:
		return fmt.Sprintf("cursor_action(%d)", int(a))
	}
}

// Button identifies a mouse button. The numbering is shared by both
// ends of the cursor channel.
type Button int32

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Valid reports whether b is one of the known buttons.
func (b Button) Valid() bool {
	return b == ButtonLeft || b == ButtonMiddle || b == ButtonRight
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button(%d)", int32(b))
	}
}

// CursorEvent is one pointer event. X and Y are meaningful only for
// CursorMove and are already in source display coordinates; Button only
// for the button actions.
type CursorEvent struct {
	Action CursorAction
	X, Y   int32
	Button Button
}

// Move returns a pointer move to (x, y) in source coordinates.
func Move(x, y int32) CursorEvent { return CursorEvent{Action: CursorMove, X: x, Y: y} }

// ButtonDown returns a press of b.
func ButtonDown(b Button) CursorEvent { return CursorEvent{Action: CursorButtonDown, Button: b} }

// ButtonUp returns a release of b.
func ButtonUp(b Button) CursorEvent { return CursorEvent{Action: CursorButtonUp, Button: b} }

// WheelDown returns one wheel notch scrolling toward the end of the content.
func WheelDown() CursorEvent { return CursorEvent{Action: CursorWheelDown} }

// WheelUp returns one wheel notch scrolling toward the start of the content.
func WheelUp() CursorEvent { return CursorEvent{Action: CursorWheelUp} }

func (e CursorEvent) String() string {
	switch e.Action {
	case CursorMove:
		return fmt.Sprintf("move(%d,%d)", e.X, e.Y)
	case CursorButtonDown, CursorButtonUp:
		return fmt.Sprintf("%s(%s)", e.Action, e.Button)
	default:
		return e.Action.String()
	}
}

// KeyAction identifies a key press or release.
type KeyAction int

const (
	KeyPress KeyAction = iota + 1
	KeyRelease
)

func (a KeyAction) String() string {
	switch a {
	case KeyPress:
		return "key_down"
	case KeyRelease:
		return "key_up"
	default:
		return fmt.Sprintf("key_action(%d)", int(a))
	}
}

// KeyEvent is one key transition in the shared key-code space.
type KeyEvent struct {
	Action KeyAction
	Code   KeyCode
}

// KeyDown returns a press of code.
func KeyDown(code KeyCode) KeyEvent { return KeyEvent{Action: KeyPress, Code: code} }

// KeyUp returns a release of code.
func KeyUp(code KeyCode) KeyEvent { return KeyEvent{Action: KeyRelease, Code: code} }

func (e KeyEvent) String() string {
	return fmt.Sprintf("%s(%s)", e.Action, e.Code)
}
