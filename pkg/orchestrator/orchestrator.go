// Package orchestrator implements the Orchestrator component of spec
// §4.9: the process-wide application-state machine that decides when
// the signaling connection should be up, schedules the RECONNECT
// background job (the CONNECT job id is only ever cancelled), and
// reference-counts the
// power-management locks that keep it alive outside the foreground.
//
// A single struct coordinates several sub-resources under one mutex,
// exposing Start/Stop-like lifecycle calls. golang.org/x/sync/errgroup
// supervises every outstanding lease-quiescence and disconnect-grace
// goroutine so Close can wait for all of them to settle.
package orchestrator

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/twinlog"
)

// PushPriority classifies an inbound push notification (spec §4.9).
type PushPriority int

const (
	PushNormal PushPriority = iota
	PushHigh
)

// Orchestrator is the Orchestrator component of spec §4.9.
type Orchestrator struct {
	mu     sync.Mutex
	state  AppState
	online bool

	connected    bool
	pendingMsg   bool
	earliest     *time.Time
	pushAvail    bool
	wakeupGrace  time.Duration
	schedGen     uint64
	leases       map[Lock]leaseState

	closed  bool
	closing chan struct{}

	ctx          TwinlifeContext
	scheduler    Scheduler
	connectivity ConnectivityService
	params       config.OrchestratorParams

	group *errgroup.Group
	log   twinlog.Logger
}

// New constructs an Orchestrator that drives ctx's Connect/Disconnect/
// Suspend calls and schedules jobs on scheduler. factory may be nil to
// disable logging. The orchestrator starts in Background with
// whatever connectivity is reports at construction time.
func New(ctx TwinlifeContext, scheduler Scheduler, connectivity ConnectivityService, params config.OrchestratorParams, factory twinlog.Factory) *Orchestrator {
	o := &Orchestrator{
		state:        Background,
		ctx:          ctx,
		scheduler:    scheduler,
		connectivity: connectivity,
		params:       params.WithDefaults(),
		leases:       make(map[Lock]leaseState),
		closing:      make(chan struct{}),
		group:        new(errgroup.Group),
		log:          twinlog.Scoped(factory, "orchestrator"),
	}
	if connectivity != nil {
		o.online = connectivity.IsConnectedNetwork()
	}
	return o
}

// State reports the current application state.
func (o *Orchestrator) State() AppState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Connected reports whether the orchestrator currently believes the
// connection is up (i.e. the last call it made was Connect, not
// Disconnect/Suspend).
func (o *Orchestrator) Connected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.connected
}

// SetPushAvailable records whether push notifications are currently
// deliverable, which governs the long-delay periodic reconnect
// interval (spec §4.9: 2h with push, 30min without).
func (o *Orchestrator) SetPushAvailable(available bool) {
	o.mu.Lock()
	o.pushAvail = available
	o.mu.Unlock()
}

// OnForeground reports the host application became visible. The
// connection must stay up; any pending disconnect grace is cancelled.
func (o *Orchestrator) OnForeground() {
	o.mu.Lock()
	o.state = Foreground
	o.mu.Unlock()
	if o.scheduler != nil {
		o.scheduler.Cancel(JobReconnect)
	}
	o.reschedule()
}

// OnBackground reports the host application left the foreground.
// Unless a VoIP lock or a pending MESSAGE job extends it, the
// connection is dropped after BackgroundDisconnectDelay.
func (o *Orchestrator) OnBackground() {
	o.mu.Lock()
	o.state = Background
	o.mu.Unlock()
	o.reschedule()
	o.scheduleReconnect()
}

// OnSuspend reports the host is tearing the process down. The
// connection is suspended immediately and no further jobs run until a
// new lifecycle event arrives.
func (o *Orchestrator) OnSuspend() {
	o.mu.Lock()
	o.state = Suspended
	o.connected = false
	o.schedGen++
	o.mu.Unlock()
	if o.scheduler != nil {
		o.scheduler.Cancel(JobReconnect)
		o.scheduler.Cancel(JobConnect)
	}
	o.ctx.Suspend()
}

// OnWakeupPush reports a push notification arrived while backgrounded.
// It grants at least WakeupPushMinForeground of connected time (spec
// §4.9), or the caller-supplied delay if longer, then disconnects
// unless a VoIP lock or pending MESSAGE job extends it.
func (o *Orchestrator) OnWakeupPush(priority PushPriority, sentTime time.Time, delay time.Duration) {
	if delay < o.params.WakeupPushMinForeground {
		delay = o.params.WakeupPushMinForeground
	}
	o.mu.Lock()
	o.state = WakeupPush
	o.wakeupGrace = delay
	o.mu.Unlock()
	o.reschedule()
}

// OnWakeupAlarm reports job (RECONNECT or CONNECT) fired from the
// Scheduler while backgrounded. The run ends after a single
// AlarmProbeInterval if nothing (no VoIP lock, no pending MESSAGE
// job) needs the connection; otherwise the connection stays up while
// they hold it. AlarmServiceBackgroundDelay is not applied.
func (o *Orchestrator) OnWakeupAlarm(job JobID) {
	o.mu.Lock()
	o.state = WakeupAlarm
	o.mu.Unlock()
	o.reschedule()
}

// OnNetworkOnline reports the ConnectivityService transitioned to
// reachable.
func (o *Orchestrator) OnNetworkOnline() {
	o.mu.Lock()
	o.online = true
	o.mu.Unlock()
	o.reschedule()
}

// OnNetworkOffline reports the ConnectivityService transitioned to
// unreachable.
func (o *Orchestrator) OnNetworkOffline() {
	o.mu.Lock()
	o.online = false
	o.mu.Unlock()
}

// SubmitJob admits or rejects a job of priority given the current
// application state and online status (spec §4.9's admission table).
// A successfully admitted PriorityMessage job extends the background
// disconnect grace until CompleteMessageJob is called.
func (o *Orchestrator) SubmitJob(priority Priority, deadline time.Time) bool {
	o.mu.Lock()
	ok := priority.admitted(o.state, o.online)
	if ok && priority == PriorityMessage {
		o.pendingMsg = true
		if o.earliest == nil || deadline.Before(*o.earliest) {
			d := deadline
			o.earliest = &d
		}
	}
	o.mu.Unlock()

	if ok && priority == PriorityMessage {
		o.reschedule()
	}
	return ok
}

// CompleteMessageJob reports the outstanding MESSAGE job finished,
// clearing the background disconnect grace it was holding open and
// rescheduling the periodic reconnect job.
func (o *Orchestrator) CompleteMessageJob() {
	o.mu.Lock()
	o.pendingMsg = false
	o.earliest = nil
	o.mu.Unlock()
	o.reschedule()
	o.scheduleReconnect()
}

// Close cancels every outstanding scheduler job and waits for every
// in-flight lease-quiescence and disconnect-grace goroutine to settle.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.closing)
	o.mu.Unlock()

	if o.scheduler != nil {
		o.scheduler.Cancel(JobReconnect)
		o.scheduler.Cancel(JobConnect)
	}
	return o.group.Wait()
}

// reschedule re-derives whether the connection should be up from the
// current state and lease/job bookkeeping, per spec §4.9's decision
// rules, and (re)arms the disconnect-grace timer accordingly.
func (o *Orchestrator) reschedule() {
	o.mu.Lock()
	state := o.state
	closed := o.closed
	voip := o.leases[VoIPLock].held
	pendingMsg := o.pendingMsg
	o.mu.Unlock()
	if closed {
		return
	}

	switch {
	case state == Foreground:
		o.ensureConnected()
		o.cancelDisconnect()

	case state.background():
		o.ensureConnected()
		if voip || pendingMsg {
			o.cancelDisconnect()
		} else {
			o.armDisconnect(o.backgroundGraceFor(state))
		}
	}
}

func (o *Orchestrator) backgroundGraceFor(state AppState) time.Duration {
	switch state {
	case WakeupPush:
		return o.wakeupGrace
	case WakeupAlarm:
		return o.params.AlarmProbeInterval
	default:
		return o.params.BackgroundDisconnectDelay
	}
}

func (o *Orchestrator) ensureConnected() {
	o.mu.Lock()
	if o.connected {
		o.mu.Unlock()
		return
	}
	o.connected = true
	o.mu.Unlock()
	o.ctx.Connect()
}

func (o *Orchestrator) armDisconnect(delay time.Duration) {
	o.mu.Lock()
	o.schedGen++
	gen := o.schedGen
	closing := o.closing
	o.mu.Unlock()

	o.group.Go(func() error {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-closing:
			return nil
		case <-t.C:
		}

		o.mu.Lock()
		stale := o.schedGen != gen
		o.mu.Unlock()
		if stale {
			return nil
		}
		o.fireDisconnect()
		return nil
	})
}

func (o *Orchestrator) cancelDisconnect() {
	o.mu.Lock()
	o.schedGen++
	o.mu.Unlock()
}

func (o *Orchestrator) fireDisconnect() {
	o.mu.Lock()
	if !o.connected {
		o.mu.Unlock()
		return
	}
	o.connected = false
	next := o.state
	switch o.state {
	case WakeupPush, WakeupAlarm, Background:
		next = BackgroundIdle
	}
	o.state = next
	o.mu.Unlock()

	o.ctx.Disconnect()
	if o.log != nil {
		o.log.Debugf("orchestrator: disconnected, state -> %s", next)
	}
}

// scheduleReconnect computes the periodic RECONNECT delay (spec
// §4.9: 2h with push available, 30min without, floored at
// MinReconnectDelay, shortened to the earliest pending message
// deadline when one is sooner) and arms it on the Scheduler.
func (o *Orchestrator) scheduleReconnect() {
	if o.scheduler == nil {
		return
	}
	o.mu.Lock()
	pushAvail := o.pushAvail
	earliest := o.earliest
	o.mu.Unlock()

	delay := o.params.ReconnectDelayWithoutPush
	if pushAvail {
		delay = o.params.ReconnectDelayWithPush
	}
	if earliest != nil {
		if until := time.Until(*earliest); until > 0 && until < delay {
			delay = until
		}
	}
	if delay < o.params.MinReconnectDelay {
		delay = o.params.MinReconnectDelay
	}
	o.scheduler.ScheduleAt(JobReconnect, time.Now().Add(delay))
}
