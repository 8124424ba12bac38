package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/gateway"
	"github.com/fjod/go_cart/cart-sync/internal/reconcile"
	"github.com/fjod/go_cart/cart-sync/internal/resolver"
	"golang.org/x/sync/semaphore"
)

// State is where a mutation is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateConflict
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateConflict:
		return "conflict"
	case StateReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}

// Gateway issues cart mutations. *gateway.Client satisfies it.
type Gateway interface {
	AddItem(ctx context.Context, itemID domain.ItemID, forceNew bool) (domain.Outcome, error)
	RemoveItem(ctx context.Context, itemID domain.ItemID) (domain.Outcome, error)
}

// Controller runs user mutations against the server and triggers a
// reconciliation after every successful one.
type Controller struct {
	gw         Gateway
	resolver   *resolver.Resolver
	reconciler reconcile.Reconciler
	notifier   Notifier
	log        *slog.Logger

	// prompt is held while a conflict question is open; new mutations wait on it.
	prompt *semaphore.Weighted
	// answered counts conflict questions closed so far.
	answered atomic.Uint64

	mu          sync.Mutex
	requesting  int
	conflicts   int
	reconciling int
	observer    func(domain.MutationRequest, State)
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithObserver is called on every state transition of every mutation.
func WithObserver(f func(domain.MutationRequest, State)) Option {
	return func(c *Controller) {
		c.observer = f
	}
}

func NewController(gw Gateway, prompter resolver.Prompter, r reconcile.Reconciler, opts ...Option) *Controller {
	c := &Controller{
		gw:         gw,
		reconciler: r,
		notifier:   nopNotifier{},
		log:        slog.Default(),
		prompt:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = resolver.New(forcedAdder{c}, prompter, c.log)
	return c
}

// Add adds one unit of itemID. A declined restaurant switch returns nil.
func (c *Controller) Add(ctx context.Context, itemID domain.ItemID) error {
	return c.mutate(ctx, domain.MutationRequest{ItemID: itemID, Operation: domain.OpAdd})
}

// Remove removes one unit of itemID.
func (c *Controller) Remove(ctx context.Context, itemID domain.ItemID) error {
	return c.mutate(ctx, domain.MutationRequest{ItemID: itemID, Operation: domain.OpRemove})
}

// State summarizes all mutations in flight. A pending conflict wins over
// requests, which win over reconciliation.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.conflicts > 0:
		return StateConflict
	case c.requesting > 0:
		return StateRequesting
	case c.reconciling > 0:
		return StateReconciling
	default:
		return StateIdle
	}
}

func (c *Controller) mutate(ctx context.Context, req domain.MutationRequest) error {
	if err := c.prompt.Acquire(ctx, 1); err != nil {
		return err
	}
	c.prompt.Release(1)
	seen := c.answered.Load()

	c.enter(req, StateRequesting)
	out, err := c.send(ctx, req)
	c.leave(StateRequesting)

	if err == nil && out.Kind == domain.OutcomeRestaurantConflict && req.Operation == domain.OpAdd {
		out, err = c.resolve(ctx, req, out, seen)
		if errors.Is(err, resolver.ErrAborted) {
			c.observe(req, StateIdle)
			return nil
		}
	}

	if err != nil {
		c.observe(req, StateIdle)
		c.report(ctx, req, err)
		return err
	}

	if out.Kind != domain.OutcomeSuccess {
		failure := &gateway.Error{Kind: gateway.KindBusinessFailure, Op: opName(req.Operation), Message: out.Message}
		c.observe(req, StateIdle)
		c.report(ctx, req, failure)
		return failure
	}

	c.enter(req, StateReconciling)
	c.reconciler.Reconcile(ctx)
	c.leave(StateReconciling)
	c.observe(req, StateIdle)
	return nil
}

func (c *Controller) send(ctx context.Context, req domain.MutationRequest) (domain.Outcome, error) {
	if req.Operation == domain.OpRemove {
		return c.gw.RemoveItem(ctx, req.ItemID)
	}
	return c.gw.AddItem(ctx, req.ItemID, req.ForceNewCart)
}

// resolve asks about a restaurant conflict. If another question was answered
// after this add was sent, the cart may have changed, so the add is sent again
// and only a fresh conflict is asked about.
func (c *Controller) resolve(ctx context.Context, req domain.MutationRequest, conflict domain.Outcome, seen uint64) (domain.Outcome, error) {
	if err := c.prompt.Acquire(ctx, 1); err != nil {
		return domain.Outcome{}, resolver.ErrAborted
	}
	defer c.prompt.Release(1)

	if c.answered.Load() != seen {
		c.log.InfoContext(ctx, "cart changed while waiting to ask, resending add", "item_id", req.ItemID)
		c.enter(req, StateRequesting)
		out, err := c.send(ctx, req)
		c.leave(StateRequesting)
		if err != nil || out.Kind != domain.OutcomeRestaurantConflict {
			return out, err
		}
		conflict = out
	}

	c.enter(req, StateConflict)
	defer c.leave(StateConflict)
	defer c.answered.Add(1)

	c.log.InfoContext(ctx, "restaurant conflict", "item_id", req.ItemID)
	return c.resolver.Resolve(ctx, conflict)
}

// forcedAdder marks the retry after a confirmed restaurant switch as a request.
type forcedAdder struct {
	c *Controller
}

func (a forcedAdder) AddItem(ctx context.Context, itemID domain.ItemID, forceNew bool) (domain.Outcome, error) {
	req := domain.MutationRequest{ItemID: itemID, Operation: domain.OpAdd, ForceNewCart: forceNew}
	a.c.enter(req, StateRequesting)
	defer a.c.leave(StateRequesting)
	return a.c.gw.AddItem(ctx, itemID, forceNew)
}

func (c *Controller) report(ctx context.Context, req domain.MutationRequest, err error) {
	n := Notice{Kind: NoticeRetry, Operation: req.Operation, ItemID: req.ItemID, Message: retryMessage}

	kind, _ := gateway.KindOf(err)
	switch kind {
	case gateway.KindBusinessFailure, gateway.KindRestaurantConflict:
		n.Kind = NoticeFailure
		n.Message = gateway.MessageOf(err)
		c.log.InfoContext(ctx, "cart mutation rejected", "op", req.Operation, "item_id", req.ItemID, "reason", n.Message)
	case gateway.KindUnauthorized:
		n.Kind = NoticeSignIn
		n.Message = signInMessage
		c.log.WarnContext(ctx, "cart mutation unauthorized", "op", req.Operation, "item_id", req.ItemID)
	default:
		c.log.ErrorContext(ctx, "cart mutation failed", "op", req.Operation, "item_id", req.ItemID, "kind", kind, "error", err)
	}
	c.notifier.Notify(n)
}

func (c *Controller) enter(req domain.MutationRequest, s State) {
	c.mu.Lock()
	switch s {
	case StateRequesting:
		c.requesting++
	case StateConflict:
		c.conflicts++
	case StateReconciling:
		c.reconciling++
	}
	c.mu.Unlock()
	c.observe(req, s)
}

func (c *Controller) leave(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch s {
	case StateRequesting:
		c.requesting--
	case StateConflict:
		c.conflicts--
	case StateReconciling:
		c.reconciling--
	}
}

func (c *Controller) observe(req domain.MutationRequest, s State) {
	if c.observer != nil {
		c.observer(req, s)
	}
}

func opName(op domain.Operation) string {
	if op == domain.OpRemove {
		return "remove-from-order"
	}
	return "add-to-order"
}
