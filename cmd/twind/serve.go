package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"
	"github.com/spf13/cobra"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/crypto"
	"github.com/twinlife/twincall/pkg/keystore"
	"github.com/twinlife/twincall/pkg/orchestrator"
	"github.com/twinlife/twincall/pkg/p2psession"
	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/signaling"
	"github.com/twinlife/twincall/pkg/transport"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/twinlog"
)

var serveDuration time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run two in-memory peers through a session initiate",
	Long: `serve wires up two peers, each with its own KeyStore, Signaling and
Orchestrator, connected over an in-memory transport.Pipe instead of a
real broker. One peer initiates a P2P session with an encrypted SDP
offer against the other; the initiate ack and the observer callbacks
are printed as they happen. Neither peer accepts the session. The
process exits after --duration.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().DurationVarP(&serveDuration, "duration", "d", 3*time.Second, "how long to run before tearing down")
}

// pipeConnection adapts one half of a transport.Pipe into a
// signaling.Connection: frame the packet and write it to the peer.
type pipeConnection struct {
	writer *transport.StreamWriter
}

func (c *pipeConnection) Send(ctx context.Context, data []byte) error {
	_, err := c.writer.Write(data)
	return err
}

// peer bundles the per-side collaborators this demo wires together.
type peer struct {
	name     string
	twincode uuid.UUID
	store    *keystore.Store
	sig      *signaling.Signaling
	sessions *p2psession.Manager
	orch     *orchestrator.Orchestrator
	sched    *timerScheduler
}

type demoObserver struct {
	name string
}

func (o *demoObserver) OnSessionInitiate(sessionID, from uuid.UUID, offer p2psession.MediaOffer, sdpText string) {
	fmt.Printf("[%s] session %s: inbound initiate from %s (audio=%v video=%v)\n", o.name, sessionID, from, offer.Audio, offer.Video)
}
func (o *demoObserver) OnDeviceRinging(sessionID, device uuid.UUID) {
	fmt.Printf("[%s] session %s: device %s ringing\n", o.name, sessionID, device)
}
func (o *demoObserver) OnSessionAccept(sessionID uuid.UUID, answer string) {
	fmt.Printf("[%s] session %s: accepted, answer sdp=%q\n", o.name, sessionID, answer)
}
func (o *demoObserver) OnSessionUpdate(sessionID uuid.UUID, offer p2psession.MediaOffer, sdpText string) {
	fmt.Printf("[%s] session %s: updated\n", o.name, sessionID)
}
func (o *demoObserver) OnTransportInfo(sessionID uuid.UUID, candidates []sdp.Candidate) twinerr.Code {
	fmt.Printf("[%s] session %s: %d transport-info candidate(s)\n", o.name, sessionID, len(candidates))
	return twinerr.SUCCESS
}
func (o *demoObserver) OnSessionTerminate(sessionID uuid.UUID, reason p2psession.Reason) {
	fmt.Printf("[%s] session %s: terminated (%s)\n", o.name, sessionID, reason)
}

func newPeer(name string, twincode uuid.UUID, factory twinlog.Factory) *peer {
	store := keystore.NewStore(factory)
	if _, err := store.InsertKey(twincode, crypto.KindX25519Ed25519); err != nil {
		panic(err)
	}

	sched := newTimerScheduler()
	ctx := &loggingContext{name: name}
	orch := orchestrator.New(ctx, sched, alwaysOnline{}, config.OrchestratorParams{}, factory)
	sched.onFire = orch.OnWakeupAlarm

	return &peer{
		name:     name,
		twincode: twincode,
		store:    store,
		orch:     orch,
		sched:    sched,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	factory := twinlog.NewDefaultFactory(logging.LogLevelWarn)
	sessionParams := config.SessionParams{}.WithDefaults()
	secretParams := config.SecretParams{}.WithDefaults()
	sdpParams := config.SdpParams{}.WithDefaults()

	alice := newPeer("alice", uuid.New(), factory)
	bob := newPeer("bob", uuid.New(), factory)
	defer alice.sched.stop()
	defer bob.sched.stop()

	aliceInfo, _ := alice.store.LoadTwincodeKey(alice.twincode)
	bobInfo, _ := bob.store.LoadTwincodeKey(bob.twincode)
	alice.store.ImportPeerKey(bob.twincode, bobInfo.Kind, bobInfo.SigningPublicKey, bobInfo.EncryptionPublicKey)
	bob.store.ImportPeerKey(alice.twincode, aliceInfo.Kind, aliceInfo.SigningPublicKey, aliceInfo.EncryptionPublicKey)

	pipe := transport.NewPipe()
	defer pipe.Close()

	aliceWriter := transport.NewStreamWriter(pipe.Conn0())
	bobWriter := transport.NewStreamWriter(pipe.Conn1())

	alice.sig = signaling.New(&pipeConnection{writer: aliceWriter}, sessionParams, false, factory)
	bob.sig = signaling.New(&pipeConnection{writer: bobWriter}, sessionParams, false, factory)

	// Conn0's writes land on Conn1's reads and vice versa, so each
	// peer's read loop listens on the end it does not write to.
	go readLoopFrames(pipe.Conn1(), bob.sig)
	go readLoopFrames(pipe.Conn0(), alice.sig)

	alice.sessions = p2psession.New(alice.sig, alice.store, sessionParams, secretParams, sdpParams, &demoObserver{name: "alice"}, factory)
	bob.sessions = p2psession.New(bob.sig, bob.store, sessionParams, secretParams, sdpParams, &demoObserver{name: "bob"}, factory)
	defer alice.sessions.Close()
	defer bob.sessions.Close()

	alice.orch.OnForeground()
	bob.orch.OnForeground()

	ctx, cancel := context.WithTimeout(context.Background(), serveDuration)
	defer cancel()

	offer := p2psession.MediaOffer{Audio: true}
	peerEndpoint := p2psession.Endpoint{Twincode: bob.twincode, Device: uuid.New()}
	expiration := time.Now().Add(serveDuration)

	session, code, err := alice.sessions.Initiate(ctx, alice.twincode, peerEndpoint, offer, "v=0\r\no=alice 0 0 IN IP4 127.0.0.1\r\n", expiration, 1, 0)
	if err != nil {
		return fmt.Errorf("initiate: %w", err)
	}
	fmt.Printf("[alice] session %s: initiate acked with %s\n", session.ID, code)

	<-ctx.Done()
	fmt.Println("twind: demo duration elapsed, shutting down")
	return nil
}

func readLoopFrames(conn io.Reader, sig *signaling.Signaling) {
	reader := transport.NewStreamReader(conn)
	for {
		frame, err := reader.Read()
		if err != nil {
			return
		}
		go sig.HandleInbound(context.Background(), frame)
	}
}
