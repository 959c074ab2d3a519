package callroom

// NotifyReason is the wire-stable reason carried by a
// MemberNotification push (spec §4.7, scenario S5).
type NotifyReason int32

const (
	// NotifyNewMember reports a member joined and already has a
	// usable P2P session (rejoining an existing relation).
	NotifyNewMember NotifyReason = iota
	// NotifyNewMemberNeedSession reports a member joined and needs a
	// fresh P2P session established toward it.
	NotifyNewMemberNeedSession
	// NotifyDelMember reports a member left or was dropped.
	NotifyDelMember
)
