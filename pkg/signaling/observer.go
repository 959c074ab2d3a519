package signaling

import (
	"sync"

	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/wire"
)

// Event is delivered to every registered Observer once per inbound
// packet, on the background executor goroutine (spec §4.6).
type Event struct {
	Method     Method
	RequestID  uint64
	Code       twinerr.Code
	Attributes []wire.Attribute
}

// Observer receives signaling events. Registered callbacks must not
// block; Signaling invokes them sequentially from one background
// goroutine per Signaling instance.
type Observer func(Event)

type observerRegistry struct {
	mu        sync.RWMutex
	observers []Observer
	queue     chan Event
	once      sync.Once
}

func newObserverRegistry() *observerRegistry {
	r := &observerRegistry{queue: make(chan Event, 64)}
	return r
}

// register adds o to the registry.
func (r *observerRegistry) register(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// start launches the background executor exactly once.
func (r *observerRegistry) start() {
	r.once.Do(func() {
		go func() {
			for ev := range r.queue {
				r.mu.RLock()
				observers := r.observers
				r.mu.RUnlock()
				for _, o := range observers {
					o(ev)
				}
			}
		}()
	})
}

// notify enqueues ev for delivery on the background executor.
func (r *observerRegistry) notify(ev Event) {
	r.queue <- ev
}

// close stops accepting new events; safe to call once.
func (r *observerRegistry) close() {
	close(r.queue)
}
