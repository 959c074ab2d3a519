package signaling

import "errors"

var (
	// ErrUnknownSchema is returned when an inbound packet's schema id
	// has no registered handler.
	ErrUnknownSchema = errors.New("signaling: unknown schema id")

	// ErrNoSuchRequest is returned when an inbound ack references a
	// request id with no pending entry (already completed, or never
	// sent by us).
	ErrNoSuchRequest = errors.New("signaling: no pending request for id")

	// ErrSignedOut is returned by SendIQ once OnSignOut has run.
	ErrSignedOut = errors.New("signaling: signed out")
)
