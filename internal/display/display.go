// Package display shows the remote screen in a window and turns local
// pointer and keyboard activity into session input.
package display

import (
	"fmt"
	"image"

	"github.com/junsooki/AirDesk/internal/input"
	"github.com/junsooki/AirDesk/internal/session"
)

// FrameSource provides decoded frames to the display.
type FrameSource interface {
	CurrentFrame() *image.RGBA
}

// InputSink receives local input. Methods must not block.
type InputSink interface {
	PointerMoved(localX, localY, viewWidth, viewHeight int)
	PointerButton(b input.Button, pressed bool)
	Wheel(up bool)
	Key(code input.KeyCode, pressed bool)
}

// Session is what the window drives: a frame source and an input sink.
type Session interface {
	FrameSource
	InputSink
}

// overlayText is the status line drawn over the remote screen.
func overlayText(state session.State, fps int, err error) string {
	if state == session.StateActive {
		return fmt.Sprintf("FPS: %d", fps)
	}
	if err != nil {
		return fmt.Sprintf("%s: %v", state, err)
	}
	return state.String()
}

// wheelAccumulator turns fractional wheel deltas, as reported by
// trackpads, into whole notches.
type wheelAccumulator struct {
	acc float64
}

// add records dy and calls notch once per whole notch. Positive dy
// scrolls up.
func (w *wheelAccumulator) add(dy float64, notch func(up bool)) {
	w.acc += dy
	for w.acc >= 1 {
		w.acc--
		notch(true)
	}
	for w.acc <= -1 {
		w.acc++
		notch(false)
	}
}
