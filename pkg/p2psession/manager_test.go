package p2psession

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/crypto"
	"github.com/twinlife/twincall/pkg/keystore"
	"github.com/twinlife/twincall/pkg/signaling"
	"github.com/twinlife/twincall/pkg/twinerr"
)

// loopbackConn wires one Signaling's outbound Send directly into a
// peer's HandleInbound, mirroring pkg/signaling's own in-memory test
// pair so p2psession can be exercised without a real transport.
type loopbackConn struct {
	peer *signaling.Signaling
}

func (c *loopbackConn) Send(ctx context.Context, data []byte) error {
	go c.peer.HandleInbound(ctx, data)
	return nil
}

type recordingObserver struct {
	NoopObserver
	initiate chan string
	accept   chan string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		initiate: make(chan string, 1),
		accept:   make(chan string, 1),
	}
}

func (o *recordingObserver) OnSessionInitiate(sessionID, from uuid.UUID, offer MediaOffer, sdpText string) {
	o.initiate <- sdpText
}
func (o *recordingObserver) OnSessionAccept(sessionID uuid.UUID, answer string) {
	o.accept <- answer
}

var _ Observer = (*recordingObserver)(nil)

// twoPartyStores builds a pair of keystore.Stores each holding its own
// private key and the other's public encryption key, with no prior
// relation — forcing BuildSessionKeyPair onto the ECDH fallback path
// (spec §4.5's click-to-call case).
func twoPartyStores(t *testing.T, a, b uuid.UUID) (storeA, storeB *keystore.Store) {
	t.Helper()
	storeA = keystore.NewStore(nil)
	storeB = keystore.NewStore(nil)

	infoA, err := storeA.InsertKey(a, crypto.KindX25519Ed25519)
	if err != nil {
		t.Fatalf("InsertKey A: %v", err)
	}
	infoB, err := storeB.InsertKey(b, crypto.KindX25519Ed25519)
	if err != nil {
		t.Fatalf("InsertKey B: %v", err)
	}
	storeA.ImportPeerKey(b, crypto.KindX25519Ed25519, infoB.SigningPublicKey, infoB.EncryptionPublicKey)
	storeB.ImportPeerKey(a, crypto.KindX25519Ed25519, infoA.SigningPublicKey, infoA.EncryptionPublicKey)
	return storeA, storeB
}

func newSignalingPair() (a, b *signaling.Signaling) {
	params := config.SessionParams{}.WithDefaults()
	a = signaling.New(nil, params, false, nil)
	b = signaling.New(nil, params, false, nil)
	a.SetConnection(&loopbackConn{peer: b})
	b.SetConnection(&loopbackConn{peer: a})
	return a, b
}

func TestInitiateAcceptRoundTrip(t *testing.T) {
	local, peer := uuid.New(), uuid.New()
	storeLocal, storePeer := twoPartyStores(t, local, peer)
	sigLocal, sigPeer := newSignalingPair()

	obsPeer := newRecordingObserver()
	obsLocal := newRecordingObserver()
	params := config.SessionParams{}.WithDefaults()
	secret := config.SecretParams{}.WithDefaults()
	sdpParams := config.SdpParams{}.WithDefaults()

	mgrLocal := New(sigLocal, storeLocal, params, secret, sdpParams, obsLocal, nil)
	mgrPeer := New(sigPeer, storePeer, params, secret, sdpParams, obsPeer, nil)
	defer mgrLocal.Close()
	defer mgrPeer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	offer := MediaOffer{Audio: true}
	session, code, err := mgrLocal.Initiate(ctx, local, Endpoint{Twincode: peer}, offer, "v=0\r\no=- offer\r\n", time.Now().Add(time.Minute), 1, 0)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if code != twinerr.SUCCESS {
		t.Fatalf("Initiate ack code %v, want SUCCESS", code)
	}

	select {
	case sdpText := <-obsPeer.initiate:
		if sdpText == "" {
			t.Fatal("expected decrypted SDP offer body")
		}
	case <-time.After(time.Second):
		t.Fatal("peer never observed the inbound session-initiate")
	}

	acceptCode, err := mgrPeer.Accept(ctx, session.ID, "v=0\r\no=- answer\r\n", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if acceptCode != twinerr.SUCCESS {
		t.Fatalf("Accept ack code %v, want SUCCESS", acceptCode)
	}

	select {
	case answer := <-obsLocal.accept:
		if answer == "" {
			t.Fatal("expected decrypted SDP answer body")
		}
	case <-time.After(time.Second):
		t.Fatal("local never observed the inbound session-accept")
	}

	if session.State() != Accepted {
		t.Fatalf("got local state %v, want Accepted", session.State())
	}
}

func TestTerminateClosesBothSides(t *testing.T) {
	local, peer := uuid.New(), uuid.New()
	storeLocal, storePeer := twoPartyStores(t, local, peer)
	sigLocal, sigPeer := newSignalingPair()

	params := config.SessionParams{}.WithDefaults()
	secret := config.SecretParams{}.WithDefaults()
	sdpParams := config.SdpParams{}.WithDefaults()
	obsPeer := newRecordingObserver()

	mgrLocal := New(sigLocal, storeLocal, params, secret, sdpParams, NoopObserver{}, nil)
	mgrPeer := New(sigPeer, storePeer, params, secret, sdpParams, obsPeer, nil)
	defer mgrLocal.Close()
	defer mgrPeer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, code, err := mgrLocal.Initiate(ctx, local, Endpoint{Twincode: peer}, MediaOffer{Audio: true}, "v=0\r\n", time.Now().Add(time.Minute), 1, 0)
	if err != nil || code != twinerr.SUCCESS {
		t.Fatalf("Initiate: code %v, err %v", code, err)
	}
	<-obsPeer.initiate

	termCode, err := mgrLocal.Terminate(ctx, session.ID, ReasonCancel)
	if err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if termCode != twinerr.SUCCESS {
		t.Fatalf("Terminate ack code %v, want SUCCESS", termCode)
	}
	if session.State() != Closed {
		t.Fatalf("got local state %v, want Closed", session.State())
	}
	if mgrPeer.get(session.ID) != nil {
		t.Fatal("peer still tracks the session after terminate")
	}
}
