package p2psession

import (
	"errors"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// codeErr wraps a non-success twinerr.Code as an error for callers
// that need the ordinary Go error-handling path.
func codeErr(code twinerr.Code) error {
	return twinerr.New(code)
}

var (
	// ErrSessionNotFound is returned when an operation names an
	// unknown session_id.
	ErrSessionNotFound = errors.New("p2psession: session not found")

	// ErrSessionExists reports a session_id already tracked locally.
	// Initiate does not return it: it always draws a fresh random id.
	ErrSessionExists = errors.New("p2psession: session already exists")

	// ErrWrongState is returned when an inbound packet's transition
	// is invalid for the session's current state.
	ErrWrongState = errors.New("p2psession: operation invalid in current state")

	// ErrExpired describes a packet whose expiration_deadline has
	// already passed. The inbound handlers do not return it: they ack
	// such a packet with twinerr.EXPIRED and do not act on it.
	ErrExpired = errors.New("p2psession: expiration deadline passed")

	// ErrEmptyChainedFrame resolves spec §9's open question: a
	// TransportInfo packet with HAS_NEXT_MARKER set but an empty
	// inner body is malformed, not a degenerate success.
	ErrEmptyChainedFrame = errors.New("p2psession: chained transport-info frame is empty")
)
