package callroom

import "github.com/google/uuid"

// Observer receives call-room lifecycle events. Every method runs on
// the Manager's signaling dispatch goroutine (spec §5) and must not
// block.
type Observer interface {
	// OnInvited reports an inbound InviteCallRoom push: roomID's
	// owner is inviting the local twincode to join.
	OnInvited(roomID, owner uuid.UUID, modeBits uint32, maxMembers int)

	// OnMemberJoined reports memberID joined roomID. needsSession is
	// true when the application must establish a fresh P2P session
	// toward the member (NotifyNewMemberNeedSession).
	OnMemberJoined(roomID uuid.UUID, member Member, needsSession bool)

	// OnMemberLeft reports memberID left or was dropped from roomID.
	// If priorSession is non-zero, that P2P session should be
	// terminated with p2psession.ReasonMerge or similar by the caller.
	OnMemberLeft(roomID, memberID, priorSession uuid.UUID)

	// OnRoomDestroyed reports roomID reached the absent state.
	OnRoomDestroyed(roomID uuid.UUID)
}

// NoopObserver implements Observer with no-op callbacks.
type NoopObserver struct{}

func (NoopObserver) OnInvited(uuid.UUID, uuid.UUID, uint32, int)  {}
func (NoopObserver) OnMemberJoined(uuid.UUID, Member, bool)       {}
func (NoopObserver) OnMemberLeft(uuid.UUID, uuid.UUID, uuid.UUID) {}
func (NoopObserver) OnRoomDestroyed(uuid.UUID)                    {}
