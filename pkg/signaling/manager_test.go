package signaling

import (
	"context"
	"testing"
	"time"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/wire"
)

// loopbackConn wires one Signaling's outbound Send directly into a
// peer's HandleInbound, modeling an in-memory test-pair
// transport without any real network code.
type loopbackConn struct {
	peer *Signaling
}

func (c *loopbackConn) Send(ctx context.Context, data []byte) error {
	go c.peer.HandleInbound(ctx, data)
	return nil
}

func newSignalingPair(t *testing.T) (a, b *Signaling) {
	t.Helper()
	params := config.SessionParams{}.WithDefaults()
	a = New(nil, params, false, nil)
	b = New(nil, params, false, nil)
	a.conn = &loopbackConn{peer: b}
	b.conn = &loopbackConn{peer: a}
	return a, b
}

func TestSendIQRoundTripViaRequestHandler(t *testing.T) {
	a, b := newSignalingPair(t)

	b.RegisterHandler(SessionInitiate, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.SUCCESS, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	code, _, err := a.SendIQ(ctx, SessionInitiate, []wire.Attribute{wire.StringAttr("sdp", "v=0")})
	if err != nil {
		t.Fatalf("SendIQ: %v", err)
	}
	if code != twinerr.SUCCESS {
		t.Fatalf("got code %v, want SUCCESS", code)
	}
}

func TestSendIQPropagatesHandlerErrorCode(t *testing.T) {
	a, b := newSignalingPair(t)
	b.RegisterHandler(SessionTerminate, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.EXPIRED, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	code, _, err := a.SendIQ(ctx, SessionTerminate, nil)
	if err != nil {
		t.Fatalf("SendIQ: %v", err)
	}
	if code != twinerr.EXPIRED {
		t.Fatalf("got code %v, want EXPIRED", code)
	}
}

func TestOnSignOutCompletesPendingWithDisconnected(t *testing.T) {
	params := config.SessionParams{}.WithDefaults()
	a := New(nil, params, false, nil)
	// No peer wired: conn.Send would fail, so stub a conn that just
	// swallows the bytes — the request stays pending until sign-out.
	a.conn = &loopbackConn{peer: New(nil, params, false, nil)}

	ctx := context.Background()
	done := make(chan twinerr.Code, 1)
	go func() {
		code, _, _ := a.SendIQ(ctx, SessionPing, nil)
		done <- code
	}()

	// Give SendIQ a moment to register its pending entry before sign-out.
	time.Sleep(20 * time.Millisecond)
	a.OnSignOut()

	select {
	case code := <-done:
		if code != twinerr.DISCONNECTED {
			t.Fatalf("got code %v, want DISCONNECTED", code)
		}
	case <-time.After(time.Second):
		t.Fatal("SendIQ did not return after OnSignOut")
	}
}

func TestDuplicateAckIsIdempotent(t *testing.T) {
	a, b := newSignalingPair(t)
	b.RegisterHandler(SessionUpdate, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.SUCCESS, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	code, _, err := a.SendIQ(ctx, SessionUpdate, nil)
	if err != nil || code != twinerr.SUCCESS {
		t.Fatalf("SendIQ: code %v, err %v", code, err)
	}

	// A stale ack for a request id with no pending entry (already
	// completed, or never sent) must not panic or be delivered to
	// observers as a fresh event; HandleInbound swallows it as a
	// no-op.
	w, buf := a.newWriter()
	_ = w.PutHeader(wire.Header{SchemaID: Ack.SchemaID(), SchemaVersion: 1, RequestID: 0xFFFFFFFF})
	_ = w.PutInt32(int32(twinerr.SUCCESS))
	_ = w.WriteAttributes(nil)
	if err := a.HandleInbound(ctx, buf.Bytes()); err != nil {
		t.Fatalf("HandleInbound (duplicate ack): %v", err)
	}
}

func TestPushNotificationReachesObserverWithoutPendingRequest(t *testing.T) {
	a, _ := newSignalingPair(t)

	received := make(chan Event, 1)
	a.Observe(func(ev Event) { received <- ev })

	w, buf := a.newWriter()
	_ = w.PutHeader(wire.Header{SchemaID: MemberNotification.SchemaID(), SchemaVersion: 1, RequestID: 0})
	_ = w.WriteAttributes([]wire.Attribute{wire.StringAttr("member", "alice")})

	if err := a.HandleInbound(context.Background(), buf.Bytes()); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	select {
	case ev := <-received:
		if ev.Method != MemberNotification {
			t.Fatalf("got method %v, want MemberNotification", ev.Method)
		}
	case <-time.After(time.Second):
		t.Fatal("observer was not notified")
	}
}
