package callroom

import (
	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/wire"
)

const (
	attrRoomID     = "roomId"
	attrOwner      = "owner"
	attrModeBits   = "modeBits"
	attrMaxMembers = "maxMembers"
	attrMemberID   = "memberId"
	attrPeer       = "peer"
	attrReason     = "reason"
)

func buildCreateAttrs(owner uuid.UUID, modeBits uint32, maxMembers int) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrOwner, owner),
		wire.LongAttr(attrModeBits, int64(modeBits)),
		wire.LongAttr(attrMaxMembers, int64(maxMembers)),
	}
}

func buildJoinAttrs(roomID, peer uuid.UUID) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrRoomID, roomID),
		wire.UUIDAttr(attrPeer, peer),
	}
}

func buildLeaveAttrs(roomID, memberID uuid.UUID) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrRoomID, roomID),
		wire.UUIDAttr(attrMemberID, memberID),
	}
}

func buildDestroyAttrs(roomID uuid.UUID) []wire.Attribute {
	return []wire.Attribute{wire.UUIDAttr(attrRoomID, roomID)}
}

func buildInviteAttrs(roomID, owner uuid.UUID, modeBits uint32, maxMembers int) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrRoomID, roomID),
		wire.UUIDAttr(attrOwner, owner),
		wire.LongAttr(attrModeBits, int64(modeBits)),
		wire.LongAttr(attrMaxMembers, int64(maxMembers)),
	}
}

func getUUID(attrs []wire.Attribute, name string) (uuid.UUID, bool) {
	a, ok := wire.Find(attrs, name)
	if !ok || a.Tag != wire.TagUUID {
		return uuid.UUID{}, false
	}
	return a.UUID, true
}

func getLong(attrs []wire.Attribute, name string) (int64, bool) {
	a, ok := wire.Find(attrs, name)
	if !ok || a.Tag != wire.TagLong {
		return 0, false
	}
	return a.Long, true
}

// inviteNotice is the decoded payload of an inbound InviteCallRoom
// push.
type inviteNotice struct {
	RoomID     uuid.UUID
	Owner      uuid.UUID
	ModeBits   uint32
	MaxMembers int
}

func decodeInviteAttrs(attrs []wire.Attribute) (inviteNotice, bool) {
	roomID, ok1 := getUUID(attrs, attrRoomID)
	owner, ok2 := getUUID(attrs, attrOwner)
	modeBits, ok3 := getLong(attrs, attrModeBits)
	maxMembers, ok4 := getLong(attrs, attrMaxMembers)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return inviteNotice{}, false
	}
	return inviteNotice{RoomID: roomID, Owner: owner, ModeBits: uint32(modeBits), MaxMembers: int(maxMembers)}, true
}

// memberNotice is the decoded payload of an inbound MemberNotification
// push.
type memberNotice struct {
	RoomID   uuid.UUID
	MemberID uuid.UUID
	Peer     uuid.UUID
	Reason   NotifyReason
}

func decodeMemberNotificationAttrs(attrs []wire.Attribute) (memberNotice, bool) {
	roomID, ok1 := getUUID(attrs, attrRoomID)
	memberID, ok2 := getUUID(attrs, attrMemberID)
	peer, _ := getUUID(attrs, attrPeer) // absent on DEL_MEMBER
	reason, ok3 := getLong(attrs, attrReason)
	if !ok1 || !ok2 || !ok3 {
		return memberNotice{}, false
	}
	return memberNotice{RoomID: roomID, MemberID: memberID, Peer: peer, Reason: NotifyReason(reason)}, true
}
