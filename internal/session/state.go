// Package session runs one remote-control session over the three
// channels: the host's capture/send and inject workers, the controller's
// receive/render and input senders, and the lifecycle that gates and
// tears them down together.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// State is a session lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateAwaitingConnections
	StateActive
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConnections:
		return "awaiting_connections"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrInvalidTransition is returned for a lifecycle move the state machine
// does not allow.
var ErrInvalidTransition = errors.New("invalid session state transition")

// ErrRunning is returned by Start while a session is still in progress.
var ErrRunning = errors.New("session already running")

var transitions = map[State][]State{
	StateIdle:                {StateAwaitingConnections},
	StateAwaitingConnections: {StateActive, StateStopping},
	StateActive:              {StateStopping},
	StateStopping:            {StateStopped},
	StateStopped:             {StateAwaitingConnections},
}

// Status receives lifecycle and frame rate updates. Implementations must
// be safe for concurrent use and must not block.
type Status interface {
	// StateChanged reports a new state. err is the cause when a session
	// stops because of a failure, nil otherwise.
	StateChanged(state State, err error)
	// FPS reports the frames observed during the last reporting interval.
	FPS(fps int)
}

// LogStatus reports status updates to a logger.
type LogStatus struct {
	Logger *slog.Logger
}

func (s LogStatus) StateChanged(state State, err error) {
	if err != nil {
		s.Logger.Error("session state changed", "state", state, "error", err)
		return
	}
	s.Logger.Info("session state changed", "state", state)
}

func (s LogStatus) FPS(fps int) {
	s.Logger.Debug("frame rate", "fps", fps)
}

// MultiStatus fans updates out to several sinks.
type MultiStatus []Status

func (m MultiStatus) StateChanged(state State, err error) {
	for _, s := range m {
		s.StateChanged(state, err)
	}
}

func (m MultiStatus) FPS(fps int) {
	for _, s := range m {
		s.FPS(fps)
	}
}

// Lifecycle is the session state machine.
type Lifecycle struct {
	mu     sync.Mutex
	state  State
	err    error
	status Status
}

// NewLifecycle returns a lifecycle in StateIdle reporting to status.
func NewLifecycle(status Status) *Lifecycle {
	return &Lifecycle{status: status}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the failure that stopped the last session, if any.
func (l *Lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Transition moves to the given state. Moving to the current state is a
// no-op so that concurrent stop paths need no coordination. err is
// recorded when entering StateStopping or StateStopped and cleared when a
// new session starts.
func (l *Lifecycle) Transition(to State, err error) error {
	l.mu.Lock()
	changed, reported, terr := l.applyLocked(to, err)
	l.mu.Unlock()
	if terr != nil {
		return terr
	}
	if changed {
		l.notify(to, reported)
	}
	return nil
}

// begin moves from Idle or Stopped into AwaitingConnections.
func (l *Lifecycle) begin() error {
	l.mu.Lock()
	if l.state != StateIdle && l.state != StateStopped {
		state := l.state
		l.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrRunning, state)
	}
	_, _, err := l.applyLocked(StateAwaitingConnections, nil)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify(StateAwaitingConnections, nil)
	return nil
}

func (l *Lifecycle) applyLocked(to State, err error) (changed bool, reported error, _ error) {
	from := l.state
	if from == to {
		return false, nil, nil
	}
	if !slices.Contains(transitions[from], to) {
		return false, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	l.state = to
	switch to {
	case StateAwaitingConnections:
		l.err = nil
	case StateStopping, StateStopped:
		if err != nil && l.err == nil {
			l.err = err
		}
		reported = l.err
	}
	return true, reported, nil
}

func (l *Lifecycle) notify(state State, err error) {
	if l.status != nil {
		l.status.StateChanged(state, err)
	}
}
