//go:build darwin && cgo

package native

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>

static CGPoint currentLocation(void) {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint p = CGEventGetLocation(event);
    CFRelease(event);
    return p;
}

static void buttonTypes(int button, int down, CGEventType *type, CGMouseButton *btn) {
    switch (button) {
        case 1:  *type = down ? kCGEventRightMouseDown : kCGEventRightMouseUp; *btn = kCGMouseButtonRight;  break;
        case 2:  *type = down ? kCGEventOtherMouseDown : kCGEventOtherMouseUp; *btn = kCGMouseButtonCenter; break;
        default: *type = down ? kCGEventLeftMouseDown  : kCGEventLeftMouseUp;  *btn = kCGMouseButtonLeft;   break;
    }
}

void moveMouse(double x, double y, int dragButton) {
    CGEventType type = kCGEventMouseMoved;
    CGMouseButton btn = kCGMouseButtonLeft;
    switch (dragButton) {
        case 0: type = kCGEventLeftMouseDragged;  btn = kCGMouseButtonLeft;   break;
        case 1: type = kCGEventRightMouseDragged; btn = kCGMouseButtonRight;  break;
        case 2: type = kCGEventOtherMouseDragged; btn = kCGMouseButtonCenter; break;
    }
    CGEventRef event = CGEventCreateMouseEvent(NULL, type, CGPointMake(x, y), btn);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}

void mouseButton(int button, int down) {
    CGEventType type;
    CGMouseButton btn;
    buttonTypes(button, down, &type, &btn);
    CGEventRef event = CGEventCreateMouseEvent(NULL, type, currentLocation(), btn);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}

void mouseScroll(int lines) {
    CGEventRef event = CGEventCreateScrollWheelEvent(NULL,
        kCGScrollEventUnitLine, 1, lines);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}

void keyEvent(CGKeyCode keyCode, int down, CGEventFlags flags) {
    CGEventRef event = CGEventCreateKeyboardEvent(NULL, keyCode, down ? true : false);
    if (flags) {
        CGEventSetFlags(event, flags);
    }
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}
*/
import "C"

import (
	"fmt"
	"sync"

	"github.com/junsooki/AirDesk/internal/input"
)

// Modifier flag bits tracked between key events.
const (
	modShift uint8 = 1 << iota
	modControl
	modAlt
	modCommand
)

// CGEventInjector injects input via CoreGraphics CGEvent APIs.
type CGEventInjector struct {
	mu        sync.Mutex
	held      map[input.Button]bool
	modifiers uint8
}

func NewCGEventInjector() *CGEventInjector {
	return &CGEventInjector{held: make(map[input.Button]bool)}
}

// NewPlatformInjector returns the injector for this platform.
func NewPlatformInjector() input.Injector {
	return NewCGEventInjector()
}

func (inj *CGEventInjector) InjectPointer(e input.CursorEvent) error {
	inj.mu.Lock()
	defer inj.mu.Unlock()

	switch e.Action {
	case input.CursorMove:
		C.moveMouse(C.double(e.X), C.double(e.Y), C.int(inj.dragButton()))
	case input.CursorButtonDown, input.CursorButtonUp:
		cg, ok := cgButton(e.Button)
		if !ok {
			return fmt.Errorf("unsupported button %s", e.Button)
		}
		down := e.Action == input.CursorButtonDown
		inj.held[e.Button] = down
		C.mouseButton(C.int(cg), boolInt(down))
	case input.CursorWheelUp:
		C.mouseScroll(C.int(input.WheelLines))
	case input.CursorWheelDown:
		C.mouseScroll(C.int(-input.WheelLines))
	default:
		return fmt.Errorf("unsupported cursor action %s", e.Action)
	}
	return nil
}

func (inj *CGEventInjector) InjectKey(e input.KeyEvent) error {
	code, ok := input.MacKeyCode(e.Code)
	if !ok {
		return fmt.Errorf("no macOS key code for %s", e.Code)
	}
	down := e.Action == input.KeyPress

	inj.mu.Lock()
	defer inj.mu.Unlock()
	if bit := modifierBit(e.Code); bit != 0 {
		if down {
			inj.modifiers |= bit
		} else {
			inj.modifiers &^= bit
		}
	}
	C.keyEvent(C.CGKeyCode(code), boolInt(down), C.CGEventFlags(modifiersToFlags(inj.modifiers)))
	return nil
}

// dragButton returns the CoreGraphics button currently held, or -1.
func (inj *CGEventInjector) dragButton() int {
	for _, b := range []input.Button{input.ButtonLeft, input.ButtonRight, input.ButtonMiddle} {
		if inj.held[b] {
			cg, _ := cgButton(b)
			return cg
		}
	}
	return -1
}

// cgButton maps to the 0=left, 1=right, 2=center numbering used above.
func cgButton(b input.Button) (int, bool) {
	switch b {
	case input.ButtonLeft:
		return 0, true
	case input.ButtonRight:
		return 1, true
	case input.ButtonMiddle:
		return 2, true
	}
	return 0, false
}

func modifierBit(k input.KeyCode) uint8 {
	switch k {
	case input.KeyShift:
		return modShift
	case input.KeyControl:
		return modControl
	case input.KeyAlt:
		return modAlt
	case input.KeyMeta:
		return modCommand
	}
	return 0
}

func modifiersToFlags(m uint8) uint64 {
	var flags uint64
	if m&modShift != 0 {
		flags |= 0x00020000 // kCGEventFlagMaskShift
	}
	if m&modControl != 0 {
		flags |= 0x00040000 // kCGEventFlagMaskControl
	}
	if m&modAlt != 0 {
		flags |= 0x00080000 // kCGEventFlagMaskAlternate
	}
	if m&modCommand != 0 {
		flags |= 0x00100000 // kCGEventFlagMaskCommand
	}
	return flags
}

func boolInt(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
