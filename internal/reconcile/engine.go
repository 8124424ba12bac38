// Package reconcile keeps every registered view in step with the server's cart.
//
// A reconciliation cycle draws a sequence number, fetches the per-item quantities
// and the aggregate concurrently, and fans each result out to the renderers.
// Fetches are never cancelled when superseded. Instead, apply drops any result
// whose sequence number is not newer than the last one applied, so a slow fetch
// that resolves late can never roll the screen back.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds each fetch of a cycle.
const DefaultFetchTimeout = 10 * time.Second

// Fetcher reads authoritative cart state. *gateway.Client satisfies it.
type Fetcher interface {
	FetchQuantities(ctx context.Context) (domain.CartSnapshot, error)
	FetchAggregate(ctx context.Context) (domain.Aggregate, error)
}

type SnapshotRenderer interface {
	RenderSnapshot(s domain.CartSnapshot)
}

type AggregateRenderer interface {
	RenderAggregate(a domain.Aggregate)
}

// Result reports what one cycle did.
type Result struct {
	Seq              uint64
	SnapshotApplied  bool
	AggregateApplied bool
	SnapshotErr      error
	AggregateErr     error
}

// Err returns the first fetch error of the cycle, if any.
func (r Result) Err() error {
	return errors.Join(r.SnapshotErr, r.AggregateErr)
}

type Engine struct {
	fetcher Fetcher
	clock   Clock
	timeout time.Duration
	log     *slog.Logger

	mu                 sync.Mutex
	snapshotRenderers  []SnapshotRenderer
	aggregateRenderers []AggregateRenderer
	current            domain.CartSnapshot
	currentAggregate   domain.Aggregate
	lastSnapshotSeq    uint64
	lastAggregateSeq   uint64
}

type Option func(*Engine)

func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func NewEngine(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher: fetcher,
		timeout: DefaultFetchTimeout,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Register(r SnapshotRenderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshotRenderers = append(e.snapshotRenderers, r)
	if e.lastSnapshotSeq > 0 {
		r.RenderSnapshot(e.current)
	}
}

func (e *Engine) RegisterAggregate(r AggregateRenderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aggregateRenderers = append(e.aggregateRenderers, r)
	if e.lastAggregateSeq > 0 {
		r.RenderAggregate(e.currentAggregate)
	}
}

// Current returns the last applied snapshot; false before the first one.
func (e *Engine) Current() (domain.CartSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.lastSnapshotSeq > 0
}

// CurrentAggregate returns the last applied aggregate; false before the first one.
func (e *Engine) CurrentAggregate() (domain.Aggregate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentAggregate, e.lastAggregateSeq > 0
}

// Reconcile runs one cycle. Errors are logged and reported in the Result; the
// previous rendering is left untouched on failure and nothing is retried.
func (e *Engine) Reconcile(ctx context.Context) Result {
	res := Result{Seq: e.clock.Next()}

	var g errgroup.Group
	g.Go(func() error {
		snap, err := fetchWithin(ctx, e.timeout, "get-item-quantities", e.fetcher.FetchQuantities)
		if err != nil {
			res.SnapshotErr = err
			e.logFailure(ctx, "quantities fetch failed", res.Seq, err)
			return nil
		}
		snap.Seq = res.Seq
		res.SnapshotApplied = e.ApplySnapshot(snap)
		return nil
	})
	g.Go(func() error {
		agg, err := fetchWithin(ctx, e.timeout, "get-cart-quantity", e.fetcher.FetchAggregate)
		if err != nil {
			res.AggregateErr = err
			e.logFailure(ctx, "aggregate fetch failed", res.Seq, err)
			return nil
		}
		agg.Seq = res.Seq
		res.AggregateApplied = e.ApplyAggregate(agg)
		return nil
	})
	_ = g.Wait()

	return res
}

// ApplySnapshot renders s unless a snapshot with the same or a newer sequence
// number has already been applied. It reports whether s was applied.
func (e *Engine) ApplySnapshot(s domain.CartSnapshot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.Seq <= e.lastSnapshotSeq {
		e.log.Debug("dropping stale snapshot", "seq", s.Seq, "applied_seq", e.lastSnapshotSeq)
		return false
	}
	e.lastSnapshotSeq = s.Seq
	e.current = s
	for _, r := range e.snapshotRenderers {
		r.RenderSnapshot(s)
	}
	return true
}

// ApplyAggregate is ApplySnapshot for the navbar aggregate.
func (e *Engine) ApplyAggregate(a domain.Aggregate) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a.Seq <= e.lastAggregateSeq {
		e.log.Debug("dropping stale aggregate", "seq", a.Seq, "applied_seq", e.lastAggregateSeq)
		return false
	}
	e.lastAggregateSeq = a.Seq
	e.currentAggregate = a
	for _, r := range e.aggregateRenderers {
		r.RenderAggregate(a)
	}
	return true
}

// NextSeq reserves a sequence number for a fetch made outside Reconcile.
func (e *Engine) NextSeq() uint64 {
	return e.clock.Next()
}

func (e *Engine) logFailure(ctx context.Context, msg string, seq uint64, err error) {
	kind, _ := gateway.KindOf(err)
	e.log.WarnContext(ctx, msg, "seq", seq, "kind", kind, "error", err)
}

type fetchResult[T any] struct {
	val T
	err error
}

// fetchWithin runs fetch with a deadline and gives up on it once the deadline
// passes, even if fetch ignores its context. A late result is discarded.
func fetchWithin[T any](ctx context.Context, timeout time.Duration, op string, fetch func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fetchResult[T], 1)
	go func() {
		v, err := fetch(ctx)
		done <- fetchResult[T]{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if _, ok := gateway.KindOf(r.err); !ok {
				return zero, &gateway.Error{Kind: gateway.KindTimeout, Op: op, Err: r.err}
			}
		}
		return r.val, r.err
	case <-ctx.Done():
		kind := gateway.KindTimeout
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = gateway.KindTransport
		}
		return zero, &gateway.Error{Kind: kind, Op: op, Err: ctx.Err()}
	}
}
