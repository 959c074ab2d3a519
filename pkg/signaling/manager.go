// Package signaling implements the Signaling component of spec §4.6:
// a monitor-protected pending-request table over a Connection,
// retried outbound IQs, idempotent inbound ack/request dispatch, and
// a background observer executor. One struct coordinates the request
// table, a handler registry, and the transport layer, keyed by this
// spec's request-id/schema-id IQ catalogue rather than fixed exchange
// contexts.
package signaling

import (
	"context"
	"sync"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/twinlog"
	"github.com/twinlife/twincall/pkg/wire"
)

// RequestHandler services an inbound request-shaped packet and
// returns the ack's error code and reply attributes.
type RequestHandler func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute)

// Signaling is the Signaling component of spec §4.6.
type Signaling struct {
	conn    Connection
	params  config.SessionParams
	compact bool

	pending   *pendingTable
	observers *observerRegistry

	mu       sync.RWMutex
	handlers map[Method]RequestHandler

	log twinlog.Logger
}

// New creates a Signaling bound to conn. factory may be nil to
// disable logging. compact selects the compact wire UUID encoding.
func New(conn Connection, params config.SessionParams, compact bool, factory twinlog.Factory) *Signaling {
	s := &Signaling{
		conn:      conn,
		params:    params,
		compact:   compact,
		pending:   newPendingTable(),
		observers: newObserverRegistry(),
		handlers:  make(map[Method]RequestHandler),
		log:       twinlog.Scoped(factory, "signaling"),
	}
	s.observers.start()
	return s
}

// Observe registers o to receive every inbound event.
func (s *Signaling) Observe(o Observer) { s.observers.register(o) }

// SetConnection rebinds the Connection a Signaling sends framed
// packets through, for test harnesses that must wire two instances
// together after construction to break the circular reference.
func (s *Signaling) SetConnection(conn Connection) { s.conn = conn }

// RegisterHandler registers h to service inbound requests of method.
func (s *Signaling) RegisterHandler(method Method, h RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// PendingCount reports the number of outbound requests awaiting a
// reply, for diagnostics and tests.
func (s *Signaling) PendingCount() int { return s.pending.count() }

// SendIQ allocates a request id, serializes attrs under method's
// schema, and sends it over Connection with retry — except
// TransportInfo, which spec §4.6 marks best-effort and never
// retried. It blocks until the matching reply arrives, ctx is done,
// or OnSignOut runs.
func (s *Signaling) SendIQ(ctx context.Context, method Method, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute, error) {
	req, err := s.pending.allocate(method)
	if err != nil {
		return twinerr.DISCONNECTED, nil, err
	}

	send := func() error {
		return s.encodeAndSend(ctx, method, req.RequestID, attrs)
	}

	var sendErr error
	if method == TransportInfo {
		sendErr = send()
	} else {
		sendErr = s.retrySend(ctx, send)
	}
	if sendErr != nil {
		s.pending.complete(req.RequestID, twinerr.DISCONNECTED, nil)
		return twinerr.DISCONNECTED, nil, sendErr
	}

	select {
	case <-ctx.Done():
		s.pending.complete(req.RequestID, twinerr.TIMEOUT, nil)
		return twinerr.TIMEOUT, nil, ctx.Err()
	case r := <-req.done:
		reply, _ := r.reply.([]wire.Attribute)
		return r.code, reply, nil
	}
}

// SendNotify sends a fire-and-forget push-shaped packet (spec §4.6:
// InviteCallRoom, MemberNotification, DeviceRinging) with no pending
// entry and no wait for a reply. method must satisfy Method.IsPush.
func (s *Signaling) SendNotify(ctx context.Context, method Method, attrs []wire.Attribute) error {
	return s.encodeAndSend(ctx, method, s.pending.nextRequestID(), attrs)
}

// HandleInbound decodes one packet and routes it by schema id: a
// push notification goes straight to observers, a reply completes
// the matching pending request (a no-op if already completed or
// unknown, per the idempotency requirement of spec §4.6), and a
// request is dispatched to its registered handler and acked.
func (s *Signaling) HandleInbound(ctx context.Context, data []byte) error {
	r := s.newReader(data)
	header, err := r.GetHeader()
	if err != nil {
		return err
	}
	method, ok := MethodForSchema(header.SchemaID)
	if !ok {
		return ErrUnknownSchema
	}

	switch {
	case method.IsPush():
		attrs, err := r.ReadAttributes()
		if err != nil {
			return err
		}
		s.observers.notify(Event{Method: method, Attributes: attrs})
		return nil

	case method.IsReply():
		code, err := r.GetInt32()
		if err != nil {
			return err
		}
		attrs, err := r.ReadAttributes()
		if err != nil {
			return err
		}
		errCode := twinerr.Code(code)
		if err := s.pending.complete(header.RequestID, errCode, attrs); err != nil {
			if s.log != nil {
				s.log.Infof("ignoring %s for unknown/completed request %d: %v", method, header.RequestID, err)
			}
			return nil
		}
		s.observers.notify(Event{Method: method, RequestID: header.RequestID, Code: errCode, Attributes: attrs})
		return nil

	default:
		s.mu.RLock()
		handler, ok := s.handlers[method]
		s.mu.RUnlock()
		if !ok {
			return ErrUnknownSchema
		}
		attrs, err := r.ReadAttributes()
		if err != nil {
			return err
		}
		code, replyAttrs := handler(header.RequestID, attrs)
		s.observers.notify(Event{Method: method, RequestID: header.RequestID, Code: code, Attributes: attrs})
		return s.sendReply(ctx, method, header.RequestID, code, replyAttrs)
	}
}

// OnSignOut clears every pending request and completes each with
// DISCONNECTED, never silently dropping a caller (spec §4.6).
func (s *Signaling) OnSignOut() {
	s.pending.signOut()
}

func (s *Signaling) encodeAndSend(ctx context.Context, method Method, requestID uint64, attrs []wire.Attribute) error {
	w, buf := s.newWriter()
	if err := w.PutHeader(wire.Header{SchemaID: method.SchemaID(), SchemaVersion: 1, RequestID: requestID}); err != nil {
		return err
	}
	if err := w.WriteAttributes(attrs); err != nil {
		return err
	}
	return s.conn.Send(ctx, buf.Bytes())
}

func (s *Signaling) sendReply(ctx context.Context, requestMethod Method, requestID uint64, code twinerr.Code, attrs []wire.Attribute) error {
	reply := replyFor(requestMethod)
	w, buf := s.newWriter()
	if err := w.PutHeader(wire.Header{SchemaID: reply.SchemaID(), SchemaVersion: 1, RequestID: requestID}); err != nil {
		return err
	}
	if err := w.PutInt32(int32(code)); err != nil {
		return err
	}
	if err := w.WriteAttributes(attrs); err != nil {
		return err
	}
	return s.conn.Send(ctx, buf.Bytes())
}
