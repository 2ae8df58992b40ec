package display

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/junsooki/AirDesk/internal/input"
	"github.com/junsooki/AirDesk/internal/session"
)

func TestOverlayText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state session.State
		fps   int
		err   error
		want  string
	}{
		{session.StateActive, 27, nil, "FPS: 27"},
		{session.StateAwaitingConnections, 0, nil, "awaiting_connections"},
		{session.StateStopped, 0, errors.New("image channel: EOF"), "stopped: image channel: EOF"},
	}
	for _, tt := range tests {
		if got := overlayText(tt.state, tt.fps, tt.err); got != tt.want {
			t.Errorf("overlayText(%v, %d, %v) = %q, want %q", tt.state, tt.fps, tt.err, got, tt.want)
		}
	}
}

func TestWheelAccumulator(t *testing.T) {
	t.Parallel()

	var w wheelAccumulator
	var notches []bool
	record := func(up bool) { notches = append(notches, up) }

	w.add(0.4, record)
	w.add(0.4, record)
	if len(notches) != 0 {
		t.Fatalf("notches after 0.8 = %v", notches)
	}
	w.add(0.4, record)
	if len(notches) != 1 || !notches[0] {
		t.Fatalf("notches after 1.2 = %v, want one up", notches)
	}

	notches = nil
	w.add(-3.2, record)
	if len(notches) != 3 {
		t.Fatalf("notches = %v, want three down", notches)
	}
	for _, up := range notches {
		if up {
			t.Errorf("down scroll produced an up notch")
		}
	}
}

func TestKeyCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  ebiten.Key
		want input.KeyCode
	}{
		{ebiten.KeyA, input.KeyA},
		{ebiten.KeyEnter, input.KeyEnter},
		{ebiten.KeyNumpadEnter, input.KeyEnter},
		{ebiten.KeyShiftRight, input.KeyShift},
		{ebiten.KeyArrowUp, input.KeyArrowUp},
		{ebiten.KeyF12, input.KeyF12},
		{ebiten.Key0, input.Key0},
	}
	for _, tt := range tests {
		got, ok := keyCode(tt.key)
		if !ok || got != tt.want {
			t.Errorf("keyCode(%v) = %v, %v, want %v", tt.key, got, ok, tt.want)
		}
	}
	if _, ok := keyCode(ebiten.KeyPrintScreen); ok {
		t.Error("PrintScreen should have no wire code")
	}
}

func TestDisplayTracksStatus(t *testing.T) {
	t.Parallel()

	d := NewEbitenDisplay("test")
	d.StateChanged(session.StateAwaitingConnections, nil)
	d.StateChanged(session.StateActive, nil)
	d.FPS(12)
	if d.state != session.StateActive || d.fps.Load() != 12 {
		t.Fatalf("state = %v fps = %d", d.state, d.fps.Load())
	}

	cause := errors.New("peer gone")
	d.StateChanged(session.StateStopping, cause)
	d.StateChanged(session.StateStopped, nil)
	if d.lastErr != cause {
		t.Errorf("lastErr = %v, want %v", d.lastErr, cause)
	}

	// A new attempt clears the old error.
	d.StateChanged(session.StateAwaitingConnections, nil)
	if d.lastErr != nil {
		t.Errorf("lastErr after restart = %v", d.lastErr)
	}
}

func TestCloseTerminates(t *testing.T) {
	t.Parallel()

	d := NewEbitenDisplay("test")
	d.Close()
	if err := d.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update after Close = %v, want ebiten.Termination", err)
	}
}

var _ Session = (*session.Controller)(nil)
