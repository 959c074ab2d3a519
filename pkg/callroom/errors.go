package callroom

import "errors"

var (
	// ErrRoomNotFound is returned when an operation names an unknown room_id.
	ErrRoomNotFound = errors.New("callroom: room not found")

	// ErrRoomExists reports a room_id already tracked locally. Create
	// does not return it: the room id the server assigns replaces any
	// entry tracked under that id.
	ErrRoomExists = errors.New("callroom: room already exists")

	// ErrNotOwner is returned when destroy is attempted by a twincode other
	// than the room's owner.
	ErrNotOwner = errors.New("callroom: not the room owner")

	// ErrMemberNotFound reports an unknown member_id within an
	// otherwise known room. No Manager operation returns it.
	ErrMemberNotFound = errors.New("callroom: member not found")

	// ErrWrongState reports an operation invalid for the room's current
	// lifecycle state (e.g. join on a room already absent). No Manager
	// operation returns it.
	ErrWrongState = errors.New("callroom: operation invalid in current state")
)
