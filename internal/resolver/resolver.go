package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/gateway"
)

var (
	// ErrAborted means the user declined the restaurant switch. It is not a failure.
	ErrAborted = errors.New("restaurant switch declined")

	ErrNotConflict = errors.New("outcome is not a restaurant conflict")
)

// Adder issues add-item requests. *gateway.Client satisfies it.
type Adder interface {
	AddItem(ctx context.Context, itemID domain.ItemID, forceNew bool) (domain.Outcome, error)
}

// Prompter asks the user whether to replace the current cart.
// Implementations block until the user answers or ctx is done.
type Prompter interface {
	Confirm(ctx context.Context, message string) (domain.ConflictDecision, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, message string) (domain.ConflictDecision, error)

func (f PrompterFunc) Confirm(ctx context.Context, message string) (domain.ConflictDecision, error) {
	return f(ctx, message)
}

// Resolver turns a restaurant conflict into either a forced add or a silent abort.
type Resolver struct {
	adder    Adder
	prompter Prompter
	log      *slog.Logger
}

func New(adder Adder, prompter Prompter, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{adder: adder, prompter: prompter, log: log}
}

// Resolve asks the user about conflict and, on acceptance, reissues the add with
// forceNew set. It returns ErrAborted when the user declines. A forced attempt
// that conflicts again is reported as a business failure and not re-prompted.
func (r *Resolver) Resolve(ctx context.Context, conflict domain.Outcome) (domain.Outcome, error) {
	if conflict.Kind != domain.OutcomeRestaurantConflict {
		return conflict, ErrNotConflict
	}

	decision, err := r.prompter.Confirm(ctx, conflict.Message)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.log.InfoContext(ctx, "conflict prompt abandoned", "item_id", conflict.ItemID)
			return domain.Outcome{}, ErrAborted
		}
		return domain.Outcome{}, fmt.Errorf("prompt user: %w", err)
	}
	if decision != domain.DecisionProceed {
		r.log.InfoContext(ctx, "restaurant switch declined", "item_id", conflict.ItemID)
		return domain.Outcome{}, ErrAborted
	}

	r.log.InfoContext(ctx, "restaurant switch confirmed, retrying with force_new", "item_id", conflict.ItemID)
	out, err := r.adder.AddItem(ctx, conflict.ItemID, true)
	if err != nil {
		return domain.Outcome{}, err
	}
	if out.Kind == domain.OutcomeRestaurantConflict {
		return domain.Outcome{}, &gateway.Error{
			Kind:    gateway.KindBusinessFailure,
			Op:      "add-to-order",
			Message: out.Message,
		}
	}
	return out, nil
}
