package p2psession

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionTransitionRejectsUnexpectedFrom(t *testing.T) {
	s := NewSession(uuid.New(), uuid.New(), Endpoint{Twincode: uuid.New()}, MediaOffer{Audio: true}, time.Time{}, nil)

	if err := s.transition(Accepted, Ringing); err != ErrWrongState {
		t.Fatalf("got %v, want ErrWrongState", err)
	}
	if s.State() != Initiated {
		t.Fatalf("got state %v, want Initiated (rejected transition must not mutate state)", s.State())
	}
}

func TestSessionTransitionIsIdempotentForCurrentState(t *testing.T) {
	s := NewSession(uuid.New(), uuid.New(), Endpoint{Twincode: uuid.New()}, MediaOffer{}, time.Time{}, nil)
	if err := s.transition(Initiated, Ringing, Accepted); err != nil {
		t.Fatalf("re-delivery of the current state must be a no-op, got %v", err)
	}
}

func TestSessionTransitionFollowsAllowedPath(t *testing.T) {
	s := NewSession(uuid.New(), uuid.New(), Endpoint{Twincode: uuid.New()}, MediaOffer{}, time.Time{}, nil)
	if err := s.transition(Ringing, Initiated); err != nil {
		t.Fatalf("transition to Ringing: %v", err)
	}
	if err := s.transition(Accepted, Initiated, Ringing); err != nil {
		t.Fatalf("transition to Accepted: %v", err)
	}
	if s.State().IsTerminal() {
		t.Fatal("Accepted must not be terminal")
	}
	if err := s.transition(Closed, Accepted); err != nil {
		t.Fatalf("transition to Closed: %v", err)
	}
	if !s.State().IsTerminal() {
		t.Fatal("Closed must be terminal")
	}
}

func TestSessionExpired(t *testing.T) {
	past := time.Now().Add(-time.Second)
	s := NewSession(uuid.New(), uuid.New(), Endpoint{Twincode: uuid.New()}, MediaOffer{}, past, nil)
	if !s.Expired(time.Now()) {
		t.Fatal("expected session with past expiration to report Expired")
	}

	noDeadline := NewSession(uuid.New(), uuid.New(), Endpoint{Twincode: uuid.New()}, MediaOffer{}, time.Time{}, nil)
	if noDeadline.Expired(time.Now()) {
		t.Fatal("zero expiration must never report Expired")
	}
}

func TestSessionSilenceTracksTouch(t *testing.T) {
	s := NewSession(uuid.New(), uuid.New(), Endpoint{Twincode: uuid.New()}, MediaOffer{}, time.Time{}, nil)
	now := time.Now()
	s.touch(now)
	if d := s.Silence(now.Add(5 * time.Second)); d < 5*time.Second {
		t.Fatalf("got silence %v, want >= 5s", d)
	}
	s.touch(now.Add(5 * time.Second))
	if d := s.Silence(now.Add(5 * time.Second)); d != 0 {
		t.Fatalf("got silence %v, want 0 right after touch", d)
	}
}
