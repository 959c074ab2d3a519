// Package callroom implements the CallRoomSM component of spec §4.7:
// the per-room finite state machine for multi-party call rooms
// (create/invite/join/leave/destroy plus member notifications). A
// mutex-guarded table of entries with CRUD and validation methods
// backs the member roster, with create/remove lifecycle bookkeeping
// for the owned/absent transitions.
package callroom

import (
	"sync"

	"github.com/google/uuid"
)

// MemberStatus is a room member's join-progress, mirroring spec §4.7's
// member-notification reasons.
type MemberStatus int

const (
	// MemberInvited has been invited but has not yet joined.
	MemberInvited MemberStatus = iota
	// MemberNeedsSession has joined the room but has no P2P session
	// toward it yet (spec scenario S5's NEW_MEMBER_NEED_SESSION).
	MemberNeedsSession
	// MemberConnected has an active P2P session toward it.
	MemberConnected
)

// Member is one entry of a CallRoom's roster.
type Member struct {
	ID           uuid.UUID
	PeerTwincode uuid.UUID
	P2PSessionID uuid.UUID // zero value until a session exists
	Status       MemberStatus
}

// roomState is a room's position in the lifecycle diagram of spec
// §4.7: absent -> owned|invited -> member -> absent.
type roomState int

const (
	stateAbsent roomState = iota
	stateOwned
	stateInvited
	stateMember
)

// Room is the CallRoom of spec §3.
type Room struct {
	mu sync.Mutex

	ID          uuid.UUID
	Owner       uuid.UUID
	ModeBits    uint32
	MaxMembers  int
	AutoDestroy bool

	// LocalMemberID is the member id the server assigned to us, set
	// once CreateCallRoom or JoinCallRoom acks (zero until then).
	LocalMemberID uuid.UUID

	state   roomState
	local   uuid.UUID // our own twincode, for destroy/owner checks
	members map[uuid.UUID]*Member
}

func newRoom(id, owner, local uuid.UUID, modeBits uint32, maxMembers int, autoDestroy bool, state roomState) *Room {
	return &Room{
		ID:          id,
		Owner:       owner,
		ModeBits:    modeBits,
		MaxMembers:  maxMembers,
		AutoDestroy: autoDestroy,
		state:       state,
		local:       local,
		members:     make(map[uuid.UUID]*Member),
	}
}

// IsOwner reports whether local owns this room.
func (r *Room) IsOwner() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Owner == r.local
}

// Members returns a snapshot of the current roster.
func (r *Room) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	return out
}

// absent reports whether the room has left the tracked lifecycle
// (destroyed, or we left it).
func (r *Room) absent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateAbsent
}

// setMember inserts or replaces the roster entry for id, returning the
// prior entry (if any, so the caller can detect the double-join
// tie-break of spec §4.7) and the freshly inserted entry.
func (r *Room) setMember(id, peer uuid.UUID, status MemberStatus) (prior *Member, current Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior = r.members[id]
	m := &Member{ID: id, PeerTwincode: peer, Status: status}
	r.members[id] = m
	r.state = stateMember
	return prior, *m
}

// setMemberSession records the P2P session id established toward a
// roster member.
func (r *Room) setMemberSession(id, sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[id]; ok {
		m.P2PSessionID = sessionID
		m.Status = MemberConnected
	}
}

// deleteMember removes id from the roster, returning the removed
// entry (nil if absent).
func (r *Room) deleteMember(id uuid.UUID) *Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.members[id]
	delete(r.members, id)
	return m
}

// setLocalMemberID records the member id the server assigned to the
// local twincode, once CreateCallRoom/JoinCallRoom has acked.
func (r *Room) setLocalMemberID(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LocalMemberID = id
}

// destroy transitions the room to the absent state.
func (r *Room) destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = stateAbsent
	r.members = make(map[uuid.UUID]*Member)
}
