package session

import (
	"errors"
	"sync"
	"testing"
)

func TestLifecycleTransitions(t *testing.T) {
	t.Parallel()

	status := newRecordingStatus()
	l := NewLifecycle(status)
	if l.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", l.State())
	}

	steps := []State{StateAwaitingConnections, StateActive, StateStopping, StateStopped, StateAwaitingConnections}
	for _, s := range steps {
		if err := l.Transition(s, nil); err != nil {
			t.Fatalf("Transition(%s): %v", s, err)
		}
		if got := (<-status.states).state; got != s {
			t.Errorf("reported state = %s, want %s", got, s)
		}
	}
}

func TestLifecycleRejectsInvalidTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []State
		bad  State
	}{
		{"idle to active", nil, StateActive},
		{"idle to stopped", nil, StateStopped},
		{"awaiting to stopped", []State{StateAwaitingConnections}, StateStopped},
		{"active to awaiting", []State{StateAwaitingConnections, StateActive}, StateAwaitingConnections},
		{"stopping to active", []State{StateAwaitingConnections, StateStopping}, StateActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(nil)
			for _, s := range tt.path {
				if err := l.Transition(s, nil); err != nil {
					t.Fatalf("Transition(%s): %v", s, err)
				}
			}
			if err := l.Transition(tt.bad, nil); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Transition(%s) error = %v, want ErrInvalidTransition", tt.bad, err)
			}
		})
	}
}

func TestLifecycleRecordsFirstFailure(t *testing.T) {
	t.Parallel()

	status := newRecordingStatus()
	l := NewLifecycle(status)
	first := errors.New("cursor channel: read: EOF")
	second := errors.New("image channel: write: closed")

	l.Transition(StateAwaitingConnections, nil)
	l.Transition(StateActive, nil)
	l.Transition(StateStopping, first)
	l.Transition(StateStopping, second)
	l.Transition(StateStopped, second)

	if !errors.Is(l.Err(), first) {
		t.Errorf("Err() = %v, want first failure", l.Err())
	}
	stopped := status.waitState(t, StateStopped)
	if !errors.Is(stopped.err, first) {
		t.Errorf("stopped reported %v, want first failure", stopped.err)
	}

	// A fresh start clears the failure.
	if err := l.begin(); err != nil {
		t.Fatalf("begin after stop: %v", err)
	}
	if l.Err() != nil {
		t.Errorf("Err() after restart = %v, want nil", l.Err())
	}
}

func TestLifecycleBeginOnlyOnce(t *testing.T) {
	t.Parallel()

	l := NewLifecycle(nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.begin() == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 {
		t.Errorf("%d concurrent starts succeeded, want 1", succeeded)
	}
	if err := l.begin(); !errors.Is(err, ErrRunning) {
		t.Errorf("begin while awaiting = %v, want ErrRunning", err)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if got := StateAwaitingConnections.String(); got != "awaiting_connections" {
		t.Errorf("String() = %q", got)
	}
	if got := State(42).String(); got != "state(42)" {
		t.Errorf("String() = %q", got)
	}
}
