package signaling

import "context"

// Connection is the transport abstraction Signaling hands framed
// packet bytes to (spec §4.6). cmd/twind implements it over a
// pkg/transport Pipe; the package tests use in-memory loopbacks.
type Connection interface {
	Send(ctx context.Context, data []byte) error
}
