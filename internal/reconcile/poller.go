package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the background refresh runs.
const DefaultInterval = 30 * time.Second

// Reconciler runs one reconciliation cycle. *Engine satisfies it.
type Reconciler interface {
	Reconcile(ctx context.Context) Result
}

// Poller refreshes the cart in the background until stopped. It reconciles once
// on Start and then re-arms its timer after every attempt, failed or not.
type Poller struct {
	reconciler Reconciler
	interval   time.Duration
	log        *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(r Reconciler, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{reconciler: r, interval: interval, log: log}
}

// Start launches the background loop. It returns false if the poller is already running.
// The loop also ends when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		select {
		case <-p.done:
		default:
			return false
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	return true
}

// Stop disarms the timer and waits for an in-progress cycle to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.log.Info("cart poller started", "interval", p.interval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("cart poller stopped")
			return
		case <-timer.C:
			res := p.reconciler.Reconcile(ctx)
			if err := res.Err(); err != nil {
				p.log.Debug("background reconcile incomplete", "seq", res.Seq, "error", err)
			}
			timer.Reset(p.interval)
		}
	}
}
