package orchestrator

import (
	"sync"
	"testing"
	"time"

	"github.com/twinlife/twincall/internal/config"
)

// fakeContext records Connect/Disconnect/Suspend calls for assertions.
type fakeContext struct {
	mu                           sync.Mutex
	connects, disconnects, susp int
}

func (f *fakeContext) Connect()    { f.mu.Lock(); f.connects++; f.mu.Unlock() }
func (f *fakeContext) Disconnect() { f.mu.Lock(); f.disconnects++; f.mu.Unlock() }
func (f *fakeContext) Suspend()    { f.mu.Lock(); f.susp++; f.mu.Unlock() }

func (f *fakeContext) counts() (connects, disconnects, susp int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects, f.disconnects, f.susp
}

// fakeScheduler records the last scheduled deadline per job and whether it
// was cancelled since.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[JobID]time.Time
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[JobID]time.Time)}
}

func (f *fakeScheduler) ScheduleAt(job JobID, deadline time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[job] = deadline
}

func (f *fakeScheduler) Cancel(job JobID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scheduled, job)
}

func (f *fakeScheduler) has(job JobID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.scheduled[job]
	return ok
}

type fakeConnectivity struct{ online bool }

func (f fakeConnectivity) IsConnectedNetwork() bool { return f.online }

func fastParams() config.OrchestratorParams {
	return config.OrchestratorParams{
		BackgroundDisconnectDelay:   20 * time.Millisecond,
		WakeupPushMinForeground:     20 * time.Millisecond,
		AlarmServiceBackgroundDelay: 40 * time.Millisecond,
		AlarmProbeInterval:          20 * time.Millisecond,
		ReconnectDelayWithPush:      2 * time.Hour,
		ReconnectDelayWithoutPush:   30 * time.Minute,
		MinReconnectDelay:           10 * time.Minute,
		LeaseQuiescence:             20 * time.Millisecond,
	}.WithDefaults()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %s", timeout)
	}
}

func TestOrchestratorForegroundStaysConnected(t *testing.T) {
	ctx := &fakeContext{}
	o := New(ctx, nil, fakeConnectivity{online: true}, fastParams(), nil)
	defer o.Close()

	o.OnForeground()
	waitFor(t, time.Second, func() bool { return o.Connected() })

	time.Sleep(3 * fastParams().BackgroundDisconnectDelay)
	if !o.Connected() {
		t.Fatal("foreground connection dropped, want suppressed disconnect")
	}
	connects, disconnects, _ := ctx.counts()
	if connects != 1 || disconnects != 0 {
		t.Errorf("counts = (%d,%d), want (1,0)", connects, disconnects)
	}
}

func TestOrchestratorBackgroundDisconnectsAfterGrace(t *testing.T) {
	ctx := &fakeContext{}
	sched := newFakeScheduler()
	o := New(ctx, sched, fakeConnectivity{online: true}, fastParams(), nil)
	defer o.Close()

	o.OnBackground()
	waitFor(t, time.Second, func() bool { return o.Connected() })
	waitFor(t, time.Second, func() bool { return !o.Connected() })

	if o.State() != BackgroundIdle {
		t.Errorf("State() = %v, want BackgroundIdle", o.State())
	}
	if !sched.has(JobReconnect) {
		t.Error("expected RECONNECT job scheduled on entering background")
	}
}

func TestOrchestratorVoIPLockSuppressesDisconnect(t *testing.T) {
	ctx := &fakeContext{}
	o := New(ctx, nil, fakeConnectivity{online: true}, fastParams(), nil)
	defer o.Close()

	release := o.Acquire(VoIPLock)
	o.OnBackground()
	waitFor(t, time.Second, func() bool { return o.Connected() })

	time.Sleep(3 * fastParams().BackgroundDisconnectDelay)
	if !o.Connected() {
		t.Fatal("VoIP lock held, connection should not have dropped")
	}

	release()
	waitFor(t, time.Second, func() bool { return !o.Connected() })
}

// TestOrchestratorPushScenario exercises spec §8 scenario S6: a HIGH
// priority push grants at least WakeupPushMinForeground of connected time,
// then disconnects into BACKGROUND_IDLE absent a VoIP lock or MESSAGE job.
func TestOrchestratorPushScenario(t *testing.T) {
	ctx := &fakeContext{}
	o := New(ctx, nil, fakeConnectivity{online: true}, fastParams(), nil)
	defer o.Close()

	o.OnWakeupPush(PushHigh, time.Now().Add(-200*time.Millisecond), 30*time.Millisecond)
	if o.State() != WakeupPush {
		t.Fatalf("State() = %v, want WakeupPush", o.State())
	}
	waitFor(t, time.Second, func() bool { return o.Connected() })

	waitFor(t, time.Second, func() bool { return !o.Connected() })
	if o.State() != BackgroundIdle {
		t.Errorf("State() = %v, want BackgroundIdle", o.State())
	}
}

func TestOrchestratorMessageJobExtendsBackground(t *testing.T) {
	ctx := &fakeContext{}
	sched := newFakeScheduler()
	o := New(ctx, sched, fakeConnectivity{online: true}, fastParams(), nil)
	defer o.Close()

	if !o.SubmitJob(PriorityMessage, time.Now().Add(time.Hour)) {
		t.Fatal("SubmitJob(MESSAGE) rejected while online")
	}
	o.OnBackground()
	waitFor(t, time.Second, func() bool { return o.Connected() })

	time.Sleep(3 * fastParams().BackgroundDisconnectDelay)
	if !o.Connected() {
		t.Fatal("pending MESSAGE job should have extended background connection")
	}

	o.CompleteMessageJob()
	waitFor(t, time.Second, func() bool { return !o.Connected() })
}

func TestOrchestratorJobAdmission(t *testing.T) {
	cases := []struct {
		name     string
		priority Priority
		state    AppState
		online   bool
		want     bool
	}{
		{"connect always", PriorityConnect, Suspended, false, true},
		{"foreground job in background rejected", PriorityForeground, Background, true, false},
		{"foreground job in foreground", PriorityForeground, Foreground, true, true},
		{"foreground job in wakeup push", PriorityForeground, WakeupPush, true, true},
		{"update needs foreground+online", PriorityUpdate, Foreground, true, true},
		{"update offline rejected", PriorityUpdate, Foreground, false, false},
		{"message any state online", PriorityMessage, Background, true, true},
		{"message offline rejected", PriorityMessage, Background, false, false},
		{"report needs active+online", PriorityReport, WakeupAlarm, true, true},
		{"report in background rejected", PriorityReport, Background, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.priority.admitted(c.state, c.online); got != c.want {
				t.Errorf("admitted(%v,%v) = %v, want %v", c.state, c.online, got, c.want)
			}
		})
	}
}

func TestOrchestratorSuspendCancelsJobs(t *testing.T) {
	ctx := &fakeContext{}
	sched := newFakeScheduler()
	o := New(ctx, sched, fakeConnectivity{online: true}, fastParams(), nil)
	defer o.Close()

	o.OnForeground()
	waitFor(t, time.Second, func() bool { return o.Connected() })

	o.OnSuspend()
	if o.State() != Suspended {
		t.Errorf("State() = %v, want Suspended", o.State())
	}
	if o.Connected() {
		t.Error("Connected() = true after suspend")
	}
	_, _, susp := ctx.counts()
	if susp != 1 {
		t.Errorf("Suspend calls = %d, want 1", susp)
	}
	if sched.has(JobReconnect) || sched.has(JobConnect) {
		t.Error("jobs should be cancelled on suspend")
	}
}

func TestOrchestratorCloseIsIdempotent(t *testing.T) {
	o := New(&fakeContext{}, nil, fakeConnectivity{online: true}, fastParams(), nil)
	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
