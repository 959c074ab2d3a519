package signaling

import "github.com/google/uuid"

// Method identifies one entry of the signaling IQ catalogue (spec
// §4.6). Each has a fixed schema id used as the wire Header.SchemaID.
type Method int

const (
	CreateCallRoom Method = iota
	OnCreateCallRoom
	InviteCallRoom
	JoinCallRoom
	OnJoinCallRoom
	LeaveCallRoom
	OnLeaveCallRoom
	DestroyCallRoom
	OnDestroyCallRoom
	MemberNotification
	SessionInitiate
	SessionAccept
	SessionUpdate
	TransportInfo
	SessionTerminate
	SessionPing
	DeviceRinging
	// Ack is the generic reply schema for every P2P session method
	// (SessionInitiate/Accept/Update/TransportInfo/Terminate/Ping):
	// just an ErrorCode, no method-specific payload.
	Ack
)

var methodNames = map[Method]string{
	CreateCallRoom:      "CreateCallRoom",
	OnCreateCallRoom:    "OnCreateCallRoom",
	InviteCallRoom:      "InviteCallRoom",
	JoinCallRoom:        "JoinCallRoom",
	OnJoinCallRoom:      "OnJoinCallRoom",
	LeaveCallRoom:       "LeaveCallRoom",
	OnLeaveCallRoom:     "OnLeaveCallRoom",
	DestroyCallRoom:     "DestroyCallRoom",
	OnDestroyCallRoom:   "OnDestroyCallRoom",
	MemberNotification:  "MemberNotification",
	SessionInitiate:     "SessionInitiate",
	SessionAccept:       "SessionAccept",
	SessionUpdate:       "SessionUpdate",
	TransportInfo:       "TransportInfo",
	SessionTerminate:    "SessionTerminate",
	SessionPing:         "SessionPing",
	DeviceRinging:       "DeviceRinging",
	Ack:                 "Ack",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Unknown"
}

// pushMethods are server-to-client notifications that never have a
// pending request to resolve: InviteCallRoom, MemberNotification and
// DeviceRinging are hints, not replies.
var pushMethods = map[Method]bool{
	InviteCallRoom:      true,
	MemberNotification:  true,
	DeviceRinging:       true,
}

// IsPush reports whether m is a server push notification rather than
// a reply to an outbound request.
func (m Method) IsPush() bool { return pushMethods[m] }

// replyMethods are reply-shaped schemas: either a method-specific
// On* response or the generic Ack used by every P2P session method.
var replyMethods = map[Method]bool{
	OnCreateCallRoom:  true,
	OnJoinCallRoom:    true,
	OnLeaveCallRoom:   true,
	OnDestroyCallRoom: true,
	Ack:               true,
}

// IsReply reports whether m carries an ErrorCode correlating to one
// of our own pending outbound requests.
func (m Method) IsReply() bool { return replyMethods[m] }

// replyFor returns the reply schema a handler of an inbound m must
// use to acknowledge it.
func replyFor(m Method) Method {
	switch m {
	case CreateCallRoom:
		return OnCreateCallRoom
	case JoinCallRoom:
		return OnJoinCallRoom
	case LeaveCallRoom:
		return OnLeaveCallRoom
	case DestroyCallRoom:
		return OnDestroyCallRoom
	default:
		return Ack
	}
}

// schemaIDs assigns each Method a fixed schema UUID. Generated once
// and kept stable: changing any of these breaks wire compatibility.
var schemaIDs = map[Method]uuid.UUID{
	CreateCallRoom:     uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca001"),
	OnCreateCallRoom:   uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca002"),
	InviteCallRoom:     uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca003"),
	JoinCallRoom:       uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca004"),
	OnJoinCallRoom:     uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca005"),
	LeaveCallRoom:      uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca006"),
	OnLeaveCallRoom:    uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca007"),
	DestroyCallRoom:    uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca008"),
	OnDestroyCallRoom:  uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca009"),
	MemberNotification: uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca00a"),
	SessionInitiate:    uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca00b"),
	SessionAccept:      uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca00c"),
	SessionUpdate:      uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca00d"),
	TransportInfo:      uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca00e"),
	SessionTerminate:   uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca00f"),
	SessionPing:        uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca010"),
	DeviceRinging:      uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca011"),
	Ack:                uuid.MustParse("8f14e45f-ceea-467e-9a19-7812001ca012"),
}

var methodBySchema = func() map[uuid.UUID]Method {
	m := make(map[uuid.UUID]Method, len(schemaIDs))
	for method, id := range schemaIDs {
		m[id] = method
	}
	return m
}()

// SchemaID returns m's fixed wire schema id.
func (m Method) SchemaID() uuid.UUID { return schemaIDs[m] }

// MethodForSchema resolves an inbound schema id back to a Method.
func MethodForSchema(id uuid.UUID) (Method, bool) {
	m, ok := methodBySchema[id]
	return m, ok
}
