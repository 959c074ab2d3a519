package p2psession

import (
	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
)

// Observer receives session lifecycle events from a Manager. Methods
// are called on the goroutine handling the inbound packet, or on the
// Manager's own watchdog and ping goroutines, so calls may run
// concurrently: implementations must not block.
type Observer interface {
	// OnSessionInitiate reports an inbound session-initiate was
	// accepted into the Initiated state; the application decides
	// whether to ring locally and eventually calls Manager.Accept or
	// Manager.Terminate.
	OnSessionInitiate(sessionID uuid.UUID, from uuid.UUID, offer MediaOffer, sdpText string)

	// OnDeviceRinging reports that a remote device is alerting the
	// user for sessionID.
	OnDeviceRinging(sessionID uuid.UUID, device uuid.UUID)

	// OnSessionAccept reports sessionID moved to Accepted, carrying
	// the peer's answer SDP.
	OnSessionAccept(sessionID uuid.UUID, answer string)

	// OnSessionUpdate reports an update round-trip completed.
	OnSessionUpdate(sessionID uuid.UUID, offer MediaOffer, sdpText string)

	// OnTransportInfo delivers one candidate batch from a (possibly
	// chained) transport-info packet. Returning a non-success code
	// stops the Manager from walking any further chained frames in
	// the same packet.
	OnTransportInfo(sessionID uuid.UUID, candidates []sdp.Candidate) twinerr.Code

	// OnSessionTerminate reports sessionID reached Closed.
	OnSessionTerminate(sessionID uuid.UUID, reason Reason)
}

// NoopObserver implements Observer with callbacks that do nothing,
// for callers that only care about a subset of events (embed and
// override).
type NoopObserver struct{}

func (NoopObserver) OnSessionInitiate(uuid.UUID, uuid.UUID, MediaOffer, string) {}
func (NoopObserver) OnDeviceRinging(uuid.UUID, uuid.UUID)                      {}
func (NoopObserver) OnSessionAccept(uuid.UUID, string)        {}
func (NoopObserver) OnSessionUpdate(uuid.UUID, MediaOffer, string) {}
func (NoopObserver) OnTransportInfo(uuid.UUID, []sdp.Candidate) twinerr.Code {
	return twinerr.SUCCESS
}
func (NoopObserver) OnSessionTerminate(uuid.UUID, Reason) {}
