package core

// poller.go re-fetches a view on a fixed interval.
//
// Each view owns one Poller and runs it on its own goroutine. Run fetches
// immediately, then on every tick, and stops when its context is cancelled.
// Pause suppresses ticks (an add form is open); Trigger forces a fetch at
// once (the terminal or tab became active again, or a workflow finished).
// Fetch errors are logged and the poller keeps going.

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is used when a non-positive interval is given.
const DefaultPollInterval = 10 * time.Second

// Poller calls a fetch function periodically.
type Poller struct {
	name     string
	interval time.Duration
	fetch    func(context.Context) error
	onFetch  func(error)

	trigger chan struct{}

	mu     sync.Mutex
	pauses int
}

// NewPoller creates a poller named for logs and metrics.
func NewPoller(name string, interval time.Duration, fetch func(context.Context) error) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		trigger:  make(chan struct{}, 1),
	}
}

// OnFetch registers a callback run after every fetch with its error.
func (p *Poller) OnFetch(fn func(error)) {
	p.onFetch = fn
}

// Interval returns the tick interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	slog.Debug("poller started", "view", p.name, "interval", p.interval.String())

	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("poller stopped", "view", p.name)
			return
		case <-ticker.C:
			if p.Paused() {
				continue
			}
			p.runOnce(ctx)
		case <-p.trigger:
			p.runOnce(ctx)
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	start := time.Now()
	err := p.fetch(ctx)
	if err != nil && ctx.Err() == nil {
		slog.Warn("refresh failed", "view", p.name, "error", err, "duration_ms", since(start))
	}
	if p.onFetch != nil {
		p.onFetch(err)
	}
}

// Pause stops tick-driven fetches. Triggers still fetch. Pauses nest: ticks
// resume only after every Pause has been matched by a Resume.
func (p *Poller) Pause() {
	p.mu.Lock()
	p.pauses++
	p.mu.Unlock()
}

// Resume undoes one Pause. Extra calls are ignored.
func (p *Poller) Resume() {
	p.mu.Lock()
	if p.pauses > 0 {
		p.pauses--
	}
	p.mu.Unlock()
}

// Paused reports whether ticks are suppressed.
func (p *Poller) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauses > 0
}

// Trigger requests an immediate fetch. Requests made while one is pending
// collapse into it.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}
