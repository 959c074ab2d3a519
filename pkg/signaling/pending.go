package signaling

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// PendingRequest is a request id awaiting its reply, per spec §4.6.
type PendingRequest struct {
	RequestID uint64
	Method    Method

	// done receives exactly one completion, a twinerr.Code and the
	// schema-specific reply attributes (nil when the request is
	// completed locally: sign-out, a failed send or ctx expiry).
	done chan pendingResult
}

type pendingResult struct {
	code  twinerr.Code
	reply interface{}
}

// Wait blocks until the request completes, either by a matching ack
// or by OnSignOut forcing DISCONNECTED.
func (p *PendingRequest) Wait() (twinerr.Code, interface{}) {
	r := <-p.done
	return r.code, r.reply
}

// pendingTable is the monitor-protected request_id -> PendingRequest
// map of spec §4.6: a map behind one RWMutex, filled by allocate and
// drained by complete and signOut.
type pendingTable struct {
	mu       sync.RWMutex
	pending  map[uint64]*PendingRequest
	nextID   uint64
	signedOut bool
}

func newPendingTable() *pendingTable {
	t := &pendingTable{pending: make(map[uint64]*PendingRequest)}
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err == nil {
		t.nextID = binary.BigEndian.Uint64(seed[:])
	}
	return t
}

// allocate reserves a fresh monotonically increasing request id and
// registers the pending entry. Returns ErrSignedOut once OnSignOut
// has run.
func (t *pendingTable) allocate(method Method) (*PendingRequest, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.signedOut {
		return nil, ErrSignedOut
	}

	t.nextID++
	req := &PendingRequest{RequestID: t.nextID, Method: method, done: make(chan pendingResult, 1)}
	t.pending[req.RequestID] = req
	return req, nil
}

// complete removes the pending entry for requestID, if any, and
// delivers its result. Returns ErrNoSuchRequest if there was none —
// callers treat a duplicate ack for an already-completed request as
// a no-op, matching the idempotency requirement of spec §4.6.
func (t *pendingTable) complete(requestID uint64, code twinerr.Code, reply interface{}) error {
	t.mu.Lock()
	req, ok := t.pending[requestID]
	if ok {
		delete(t.pending, requestID)
	}
	t.mu.Unlock()

	if !ok {
		return ErrNoSuchRequest
	}
	req.done <- pendingResult{code: code, reply: reply}
	return nil
}

// signOut clears every pending entry and completes each with
// DISCONNECTED, never silently dropping a caller (spec §4.6).
func (t *pendingTable) signOut() {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[uint64]*PendingRequest)
	t.signedOut = true
	t.mu.Unlock()

	for _, req := range pending {
		req.done <- pendingResult{code: twinerr.DISCONNECTED}
	}
}

// nextRequestID reserves a fresh request id with no pending entry,
// for fire-and-forget push notifications that carry a requestId
// field in their header but never receive a reply.
func (t *pendingTable) nextRequestID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	return t.nextID
}

func (t *pendingTable) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending)
}
