package orchestrator

import (
	"sync"
	"time"
)

// leaseState tracks one Lock's reference count and the generation at
// which it last transitioned 0→1, so a delayed release goroutine can
// tell whether a fresh acquire raced it before acting (spec §5: "the
// underlying OS handle is acquired on the 0→1 transition and released
// after a 1s quiescence timer, to coalesce bursts").
type leaseState struct {
	count int
	gen   uint64
	held  bool
}

// Acquire reference-counts lock and returns a release func. The first
// acquire of a lock (0→1) is logged as the real acquisition; nested
// acquires just bump the count. Calling the returned func more than
// once is a no-op.
func (o *Orchestrator) Acquire(lock Lock) func() {
	o.mu.Lock()
	st := o.leases[lock]
	st.count++
	st.gen++
	wasHeld := st.held
	st.held = true
	o.leases[lock] = st
	o.mu.Unlock()

	if !wasHeld && o.log != nil {
		o.log.Debugf("orchestrator: acquired %s", lock)
	}
	if lock == VoIPLock {
		o.reschedule()
	}

	var once sync.Once
	return func() {
		once.Do(func() { o.release(lock) })
	}
}

// Held reports whether lock is currently considered acquired
// (including during its post-release quiescence window).
func (o *Orchestrator) Held(lock Lock) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.leases[lock].held
}

func (o *Orchestrator) release(lock Lock) {
	o.mu.Lock()
	st := o.leases[lock]
	if st.count == 0 {
		o.mu.Unlock()
		return
	}
	st.count--
	o.leases[lock] = st
	if st.count > 0 {
		o.mu.Unlock()
		return
	}
	gen := st.gen
	closing := o.closing
	o.mu.Unlock()

	o.group.Go(func() error {
		t := time.NewTimer(o.params.LeaseQuiescence)
		defer t.Stop()
		select {
		case <-closing:
		case <-t.C:
		}

		o.mu.Lock()
		cur := o.leases[lock]
		if cur.count == 0 && cur.gen == gen {
			cur.held = false
			o.leases[lock] = cur
		}
		o.mu.Unlock()

		if o.log != nil {
			o.log.Debugf("orchestrator: released %s", lock)
		}
		if lock == VoIPLock {
			o.reschedule()
		}
		return nil
	})
}
