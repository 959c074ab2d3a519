package callroom

import (
	"testing"

	"github.com/google/uuid"
)

func TestSetMemberReturnsPriorEntryOnReplace(t *testing.T) {
	owner := uuid.New()
	r := newRoom(uuid.New(), owner, owner, 0, 16, false, stateOwned)

	memberID, peer := uuid.New(), uuid.New()
	prior, current := r.setMember(memberID, peer, MemberNeedsSession)
	if prior != nil {
		t.Fatalf("got prior %+v, want nil on first join", prior)
	}
	if current.Status != MemberNeedsSession {
		t.Fatalf("got status %v, want MemberNeedsSession", current.Status)
	}

	r.setMemberSession(memberID, uuid.New())
	prior2, _ := r.setMember(memberID, peer, MemberNeedsSession)
	if prior2 == nil || prior2.P2PSessionID == (uuid.UUID{}) {
		t.Fatal("expected the replaced entry's prior session id to survive for tie-break handling")
	}
}

func TestDeleteMemberRemovesFromRoster(t *testing.T) {
	owner := uuid.New()
	r := newRoom(uuid.New(), owner, owner, 0, 16, false, stateOwned)
	memberID := uuid.New()
	r.setMember(memberID, uuid.New(), MemberConnected)

	if removed := r.deleteMember(memberID); removed == nil {
		t.Fatal("expected deleteMember to return the removed entry")
	}
	if len(r.Members()) != 0 {
		t.Fatal("expected roster to be empty after delete")
	}
	if r.deleteMember(memberID) != nil {
		t.Fatal("deleting an already-absent member must return nil")
	}
}

func TestDestroyClearsRosterAndMarksAbsent(t *testing.T) {
	owner := uuid.New()
	r := newRoom(uuid.New(), owner, owner, 0, 16, false, stateOwned)
	r.setMember(uuid.New(), uuid.New(), MemberConnected)

	r.destroy()
	if !r.absent() {
		t.Fatal("expected room to be absent after destroy")
	}
	if len(r.Members()) != 0 {
		t.Fatal("expected roster cleared after destroy")
	}
}

func TestIsOwnerReflectsLocalIdentity(t *testing.T) {
	owner := uuid.New()
	local := uuid.New()
	r := newRoom(uuid.New(), owner, local, 0, 16, false, stateInvited)
	if r.IsOwner() {
		t.Fatal("local twincode is not the owner")
	}

	ownRoom := newRoom(uuid.New(), owner, owner, 0, 16, false, stateOwned)
	if !ownRoom.IsOwner() {
		t.Fatal("expected the creator to be recognized as owner")
	}
}
