// Package session provides the interview session state machine and controller.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// Status represents the lifecycle state of an interview session.
type Status int

const (
	// StatusIdle - Session created, no media acquired yet.
	StatusIdle Status = iota
	// StatusAwaitingMedia - Device access negotiation in progress.
	StatusAwaitingMedia
	// StatusRecording - Capture running, questions being answered.
	StatusRecording
	// StatusFinalizing - Capture stopped, artifacts being assembled and uploaded.
	StatusFinalizing
	// StatusCompleted - Terminal state. No path returns from here.
	StatusCompleted
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusAwaitingMedia:
		return "AWAITING_MEDIA"
	case StatusRecording:
		return "RECORDING"
	case StatusFinalizing:
		return "FINALIZING"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the status is terminal (COMPLETED).
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Errors for invalid state transitions.
var (
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrSessionCompleted  = errors.New("session is completed")
)

// Lifecycle manages the state machine for a single interview session.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	IDLE → AWAITING_MEDIA → RECORDING → FINALIZING → COMPLETED
//	            │
//	            └── back to IDLE on device-access failure
//
// Transitions are monotonic except AWAITING_MEDIA → IDLE.
type Lifecycle struct {
	mu        sync.RWMutex
	sessionId string
	status    Status
}

// NewLifecycle creates a new session lifecycle in IDLE state.
func NewLifecycle(sessionId string) *Lifecycle {
	return &Lifecycle{
		sessionId: sessionId,
		status:    StatusIdle,
	}
}

// SessionId returns the session ID.
func (l *Lifecycle) SessionId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionId
}

// Status returns the current status.
func (l *Lifecycle) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// IsRecording returns true if the session is actively capturing.
func (l *Lifecycle) IsRecording() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status == StatusRecording
}

// IsCompleted returns true if the session reached its terminal state.
func (l *Lifecycle) IsCompleted() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status.IsTerminal()
}

// Transition moves the session to the given status, validating the edge.
func (l *Lifecycle) Transition(to Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status.IsTerminal() {
		return ErrSessionCompleted
	}
	if !validEdge(l.status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, l.status, to)
	}
	l.status = to
	return nil
}

// validEdge reports whether a transition between the two states is allowed.
func validEdge(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusAwaitingMedia
	case StatusAwaitingMedia:
		// Forward on success, back to IDLE on device-access failure.
		return to == StatusRecording || to == StatusIdle
	case StatusRecording:
		return to == StatusFinalizing
	case StatusFinalizing:
		return to == StatusCompleted
	default:
		return false
	}
}
