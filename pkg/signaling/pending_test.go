package signaling

import (
	"testing"

	"github.com/twinlife/twincall/pkg/twinerr"
)

func TestPendingTableAllocateAssignsUniqueIDs(t *testing.T) {
	tbl := newPendingTable()
	a, err := tbl.allocate(SessionInitiate)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	b, err := tbl.allocate(SessionAccept)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if a.RequestID == b.RequestID {
		t.Fatal("expected distinct request ids")
	}
	if tbl.count() != 2 {
		t.Fatalf("got count %d, want 2", tbl.count())
	}
}

func TestPendingTableCompleteDeliversResult(t *testing.T) {
	tbl := newPendingTable()
	req, err := tbl.allocate(SessionPing)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if err := tbl.complete(req.RequestID, twinerr.SUCCESS, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}

	select {
	case r := <-req.done:
		if r.code != twinerr.SUCCESS {
			t.Fatalf("got code %v, want SUCCESS", r.code)
		}
	default:
		t.Fatal("expected a delivered result")
	}
	if tbl.count() != 0 {
		t.Fatalf("expected entry removed, count %d", tbl.count())
	}
}

func TestPendingTableCompleteUnknownIsNoSuchRequest(t *testing.T) {
	tbl := newPendingTable()
	if err := tbl.complete(12345, twinerr.SUCCESS, nil); err != ErrNoSuchRequest {
		t.Fatalf("got err %v, want ErrNoSuchRequest", err)
	}
}

func TestPendingTableSignOutCompletesAllWithDisconnected(t *testing.T) {
	tbl := newPendingTable()
	reqs := make([]*PendingRequest, 3)
	for i := range reqs {
		req, err := tbl.allocate(SessionUpdate)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		reqs[i] = req
	}

	tbl.signOut()

	for _, req := range reqs {
		r := <-req.done
		if r.code != twinerr.DISCONNECTED {
			t.Fatalf("got code %v, want DISCONNECTED", r.code)
		}
	}
	if _, err := tbl.allocate(SessionUpdate); err != ErrSignedOut {
		t.Fatalf("got err %v, want ErrSignedOut after sign-out", err)
	}
}
