package transport

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// NetworkCondition configures network behavior simulation on a Pipe,
// so pkg/signaling's retry/backoff policy (spec §4.8: "retry up to 3
// times, exponential backoff") and pkg/p2psession's ping timeout can be
// exercised against loss, duplication and reordering without a real
// broker link.
type NetworkCondition struct {
	// DropRate is the probability of dropping a packet (0.0 - 1.0).
	DropRate float64

	// DelayMin is the minimum delay to add to each packet.
	DelayMin time.Duration

	// DelayMax is the maximum delay to add to each packet.
	// Actual delay is uniformly distributed between DelayMin and DelayMax.
	DelayMax time.Duration

	// DuplicateRate is the probability of duplicating a packet (0.0 - 1.0).
	DuplicateRate float64
}

// PipeConfig configures a Pipe.
type PipeConfig struct {
	// AutoProcess enables automatic message delivery in a background goroutine.
	// Default: true
	AutoProcess bool

	// ProcessInterval is how often the auto-processor checks for messages.
	// Default: 1ms
	ProcessInterval time.Duration
}

// DefaultPipeConfig returns the default pipe configuration.
func DefaultPipeConfig() PipeConfig {
	return PipeConfig{
		AutoProcess:     true,
		ProcessInterval: 1 * time.Millisecond,
	}
}

// Pipe provides the in-memory Connection the spec's signaling layer is
// built against in tests and cmd/twind's loopback demo (spec §6:
// "we assume a reliable, ordered, authenticated connection abstraction
// exists" — Pipe is that abstraction with no real socket underneath).
// It wraps pion's test.Bridge, which already gives byte-identical,
// flaky-free delivery semantics, and adds the network condition
// simulation above it.
//
// By default, Pipe automatically delivers frames in a background
// goroutine. Use SetAutoProcess(false) for manual control over
// delivery order in a test.
type Pipe struct {
	bridge *test.Bridge

	mu              sync.RWMutex
	condition       NetworkCondition
	closed          bool
	rng             *rand.Rand
	autoProcess     bool
	processInterval time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

// NewPipe creates a new bidirectional pipe with auto-processing enabled.
func NewPipe() *Pipe {
	return NewPipeWithConfig(DefaultPipeConfig())
}

// NewPipeWithConfig creates a new pipe with the given configuration.
func NewPipeWithConfig(config PipeConfig) *Pipe {
	p := &Pipe{
		bridge:          test.NewBridge(),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		autoProcess:     config.AutoProcess,
		processInterval: config.ProcessInterval,
		stopCh:          make(chan struct{}),
	}

	if config.ProcessInterval == 0 {
		p.processInterval = 1 * time.Millisecond
	}

	if p.autoProcess {
		p.startAutoProcess()
	}

	return p
}

// startAutoProcess starts the background message delivery goroutine.
func (p *Pipe) startAutoProcess() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.processInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()
}

// SetAutoProcess enables or disables automatic message delivery.
// When disabled, a test must call Tick() or Process() manually to
// control delivery.
func (p *Pipe) SetAutoProcess(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if p.autoProcess == enabled {
		return
	}

	p.autoProcess = enabled

	if enabled {
		p.stopCh = make(chan struct{})
		p.startAutoProcess()
	} else {
		close(p.stopCh)
		p.wg.Wait()
	}
}

// AutoProcess returns whether auto-processing is enabled.
func (p *Pipe) AutoProcess() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.autoProcess
}

// SetCondition configures network condition simulation, applied on
// every write in either direction.
func (p *Pipe) SetCondition(cond NetworkCondition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.condition = cond
}

// Condition returns the current network condition configuration.
func (p *Pipe) Condition() NetworkCondition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.condition
}

// Conn0 returns the connection for endpoint 0. A signaling.Connection
// writes framed packets (pkg/transport's StreamWriter) onto one end
// and a read loop drains the other.
func (p *Pipe) Conn0() net.Conn {
	return conditionConn{Conn: p.bridge.GetConn0(), pipe: p}
}

// Conn1 returns the connection for endpoint 1.
func (p *Pipe) Conn1() net.Conn {
	return conditionConn{Conn: p.bridge.GetConn1(), pipe: p}
}

// Tick delivers one packet in each direction (if available).
// Returns the number of packets delivered (0, 1, or 2).
func (p *Pipe) Tick() int {
	return p.bridge.Tick()
}

// Process delivers all queued packets. Returns the number of packets
// delivered.
func (p *Pipe) Process() int {
	count := 0
	for {
		n := p.Tick()
		if n == 0 {
			break
		}
		count += n
	}
	return count
}

// Close closes both endpoints of the pipe and stops auto-processing.
func (p *Pipe) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	if p.autoProcess {
		close(p.stopCh)
	}
	p.mu.Unlock()

	p.wg.Wait()

	var errs []error
	if err := p.bridge.GetConn0().Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.bridge.GetConn1().Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// conditionConn wraps one end of the bridge so writes onto it are
// subject to the pipe's NetworkCondition (drop/delay/duplicate),
// without touching pion's test.Bridge itself.
type conditionConn struct {
	net.Conn
	pipe *Pipe
}

func (c conditionConn) Write(b []byte) (int, error) {
	c.pipe.mu.RLock()
	cond := c.pipe.condition
	rng := c.pipe.rng
	c.pipe.mu.RUnlock()

	if cond.DropRate > 0 && rng.Float64() < cond.DropRate {
		return len(b), nil // silently drop: the peer never sees this frame
	}

	if cond.DelayMax > 0 {
		delay := cond.DelayMin
		if cond.DelayMax > cond.DelayMin {
			delay += time.Duration(rng.Int63n(int64(cond.DelayMax - cond.DelayMin)))
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	if cond.DuplicateRate > 0 && rng.Float64() < cond.DuplicateRate {
		if _, err := c.Conn.Write(b); err != nil {
			return 0, err
		}
	}

	return c.Conn.Write(b)
}

