package p2psession

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/signaling"
	"github.com/twinlife/twincall/pkg/twinerr"
)

// watchdog runs on its own goroutine for the Manager's lifetime,
// pinging sessions that have been silent past PingInterval and
// closing any whose expiration_deadline has passed (spec §4.8,
// §5: timeouts are driven by a watchdog, never by the caller).
func (m *Manager) watchdog() {
	tick := m.params.PingInterval / 4
	if tick <= 0 {
		tick = 5 * time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	now := time.Now()
	for _, s := range m.snapshot() {
		if s.State().IsTerminal() {
			continue
		}
		if s.Expired(now) {
			m.closeLocally(s, ReasonTimeout)
			continue
		}
		if s.Silence(now) > m.params.PingInterval {
			go m.pingOnce(s)
		}
	}
}

func (m *Manager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) pingOnce(s *Session) {
	s.touch(time.Now()) // avoid re-pinging every tick while one is in flight
	ctx, cancel := context.WithTimeout(context.Background(), m.params.RetryBaseDelay*time.Duration(m.params.MaxIQRetries+1)*4)
	defer cancel()

	attrs := buildSessionPingAttrs(s.ID, s.Expiration)
	code, _, err := m.sig.SendIQ(ctx, signaling.SessionPing, attrs)
	if err != nil {
		return
	}
	if code == twinerr.EXPIRED {
		m.closeLocally(s, ReasonTimeout)
	}
}

// sessionIDsLocked is exposed for tests that need to assert on the
// Manager's tracked set without reaching into the unexported map.
func (m *Manager) sessionIDsLocked() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
