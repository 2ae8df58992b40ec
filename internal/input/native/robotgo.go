//go:build !darwin

package native

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/junsooki/AirDesk/internal/input"
)

// RobotInjector injects input through robotgo.
type RobotInjector struct{}

func NewRobotInjector() *RobotInjector {
	return &RobotInjector{}
}

// NewPlatformInjector returns the injector for this platform.
func NewPlatformInjector() input.Injector {
	return NewRobotInjector()
}

func (r *RobotInjector) InjectPointer(e input.CursorEvent) error {
	switch e.Action {
	case input.CursorMove:
		robotgo.Move(int(e.X), int(e.Y))
	case input.CursorButtonDown:
		return toggleButton(e.Button, "down")
	case input.CursorButtonUp:
		return toggleButton(e.Button, "up")
	case input.CursorWheelUp:
		robotgo.ScrollDir(input.WheelLines, "up")
	case input.CursorWheelDown:
		robotgo.ScrollDir(input.WheelLines, "down")
	default:
		return fmt.Errorf("unsupported cursor action %s", e.Action)
	}
	return nil
}

func (r *RobotInjector) InjectKey(e input.KeyEvent) error {
	name, ok := input.RobotgoKey(e.Code)
	if !ok {
		return fmt.Errorf("no robotgo key for %s", e.Code)
	}
	state := "down"
	if e.Action == input.KeyRelease {
		state = "up"
	}
	if err := robotgo.KeyToggle(name, state); err != nil {
		return fmt.Errorf("key %s %s: %w", name, state, err)
	}
	return nil
}

func toggleButton(b input.Button, state string) error {
	var name string
	switch b {
	case input.ButtonLeft:
		name = "left"
	case input.ButtonMiddle:
		name = "center"
	case input.ButtonRight:
		name = "right"
	default:
		return fmt.Errorf("unsupported button %s", b)
	}
	if err := robotgo.Toggle(name, state); err != nil {
		return fmt.Errorf("button %s %s: %w", name, state, err)
	}
	return nil
}
