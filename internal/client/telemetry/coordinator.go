// Package telemetry manages the client's real-time device-status channel.
// The Coordinator keeps at most one channel open and at most one connection
// attempt in flight, whatever the number of callers.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
)

// DefaultConnectTimeout bounds a single dial.
const DefaultConnectTimeout = 10 * time.Second

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Channel is an open telemetry connection.
type Channel interface {
	Close() error
}

// Dialer opens a channel authorized by token. It must honor ctx.
type Dialer interface {
	Dial(ctx context.Context, token string) (Channel, error)
}

type attempt struct {
	done   chan struct{}
	once   sync.Once
	ok     bool
	cancel context.CancelFunc
}

func (a *attempt) finish(ok bool) {
	a.once.Do(func() {
		a.ok = ok
		close(a.done)
	})
}

type Coordinator struct {
	dialer         Dialer
	connectTimeout time.Duration
	logger         logging.Logger

	mu      sync.Mutex
	state   State
	ch      Channel
	attempt *attempt
	lastErr error
}

type Option func(*Coordinator)

func WithConnectTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}

func NewCoordinator(d Dialer, logger logging.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.Nop{}
	}
	c := &Coordinator{
		dialer:         d,
		connectTimeout: DefaultConnectTimeout,
		logger:         logger.With("module", "telemetry"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start begins a connection attempt, or joins the one in flight, and returns
// a channel that yields the outcome once. When already connected it yields
// true without dialing. A Disconnect during the attempt yields false.
func (c *Coordinator) Start(token string) <-chan bool {
	out := make(chan bool, 1)

	c.mu.Lock()
	if c.state == Connected {
		c.mu.Unlock()
		out <- true
		return out
	}

	a := c.attempt
	if a == nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.connectTimeout)
		a = &attempt{done: make(chan struct{}), cancel: cancel}
		c.attempt = a
		c.state = Connecting
		go c.run(ctx, a, token)
	}
	c.mu.Unlock()

	go func() {
		<-a.done
		out <- a.ok
	}()
	return out
}

// Connect is Start followed by a wait bounded by ctx. ctx does not bound
// the dial itself; an abandoned attempt still completes in the background.
func (c *Coordinator) Connect(ctx context.Context, token string) bool {
	select {
	case ok := <-c.Start(token):
		return ok
	case <-ctx.Done():
		return false
	}
}

func (c *Coordinator) run(ctx context.Context, a *attempt, token string) {
	defer a.cancel()

	ch, err := c.dialer.Dial(ctx, token)

	c.mu.Lock()
	if c.attempt != a {
		// Disconnected while dialing.
		c.mu.Unlock()
		if ch != nil {
			_ = ch.Close()
		}
		a.finish(false)
		return
	}

	c.attempt = nil
	if err != nil {
		c.state = Disconnected
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn(ctx, "telemetry connect failed", "error", err)
		a.finish(false)
		return
	}

	c.state = Connected
	c.ch = ch
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info(ctx, "telemetry connected")
	a.finish(true)
}

// Disconnect closes the channel and cancels any attempt in flight. It is
// safe to call at any time, any number of times.
func (c *Coordinator) Disconnect() error {
	c.mu.Lock()
	a := c.attempt
	c.attempt = nil
	ch := c.ch
	c.ch = nil
	was := c.state
	c.state = Disconnected
	c.mu.Unlock()

	if a != nil {
		a.cancel()
		a.finish(false)
	}

	if ch == nil {
		return nil
	}
	if err := ch.Close(); err != nil {
		return fmt.Errorf("close telemetry channel: %w", err)
	}
	if was == Connected {
		c.logger.Info(context.Background(), "telemetry disconnected")
	}
	return nil
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError is the error of the most recent failed attempt, wrapping
// common.ErrTelemetryUnavailable, or nil once a later attempt succeeds.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastErr == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrTelemetryUnavailable, c.lastErr)
}
