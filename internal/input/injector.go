package input

// Injector synthesizes local input. It is the platform capability the
// host's cursor and keyboard channels deliver decoded events to.
type Injector interface {
	InjectPointer(event CursorEvent) error
	InjectKey(event KeyEvent) error
}

// WheelLines is how many lines one wheel notch scrolls.
const WheelLines = 3
