package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/twinlife/twincall/pkg/orchestrator"
)

// timerScheduler is the orchestrator.Scheduler collaborator for this
// demo: one time.Timer per JobID, firing back into the orchestrator's
// own OnWakeupAlarm rather than a real OS alarm service.
type timerScheduler struct {
	mu     sync.Mutex
	timers map[orchestrator.JobID]*time.Timer
	onFire func(orchestrator.JobID)
}

func newTimerScheduler() *timerScheduler {
	return &timerScheduler{timers: make(map[orchestrator.JobID]*time.Timer)}
}

func (s *timerScheduler) ScheduleAt(job orchestrator.JobID, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[job]; ok {
		t.Stop()
	}
	delay := time.Until(deadline)
	if delay < 0 {
		delay = 0
	}
	s.timers[job] = time.AfterFunc(delay, func() {
		if s.onFire != nil {
			s.onFire(job)
		}
	})
}

func (s *timerScheduler) Cancel(job orchestrator.JobID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[job]; ok {
		t.Stop()
		delete(s.timers, job)
	}
}

func (s *timerScheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
}

// alwaysOnline is the ConnectivityService collaborator for this demo:
// the loopback pipe never goes offline.
type alwaysOnline struct{}

func (alwaysOnline) IsConnectedNetwork() bool { return true }

// loggingContext is the orchestrator.TwinlifeContext collaborator for
// this demo. The real signaling connection is established once, up
// front, and shared by both peers' pipe halves for the process
// lifetime; Connect/Disconnect/Suspend only log the transition so the
// state machine's decisions are visible, rather than tearing down a
// connection the other peer is still using.
type loggingContext struct {
	name string
}

func (c *loggingContext) Connect()    { fmt.Printf("[%s] orchestrator: connect\n", c.name) }
func (c *loggingContext) Disconnect() { fmt.Printf("[%s] orchestrator: disconnect\n", c.name) }
func (c *loggingContext) Suspend()    { fmt.Printf("[%s] orchestrator: suspend\n", c.name) }
