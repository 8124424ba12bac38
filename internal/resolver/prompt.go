package resolver

import (
	"context"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
)

// Prompt is one pending question for the UI. Exactly one value must be sent on Reply.
type Prompt struct {
	Message string
	Reply   chan<- domain.ConflictDecision
}

// ChannelPrompter hands prompts to a UI component over a channel and waits for its answer.
type ChannelPrompter struct {
	prompts chan Prompt
}

func NewChannelPrompter() *ChannelPrompter {
	return &ChannelPrompter{prompts: make(chan Prompt)}
}

// Prompts is the channel the UI reads questions from.
func (p *ChannelPrompter) Prompts() <-chan Prompt {
	return p.prompts
}

func (p *ChannelPrompter) Confirm(ctx context.Context, message string) (domain.ConflictDecision, error) {
	reply := make(chan domain.ConflictDecision, 1)

	select {
	case p.prompts <- Prompt{Message: message, Reply: reply}:
	case <-ctx.Done():
		return domain.DecisionAbort, ctx.Err()
	}

	select {
	case d := <-reply:
		return d, nil
	case <-ctx.Done():
		return domain.DecisionAbort, ctx.Err()
	}
}

// Always returns a Prompter answering every question with d.
func Always(d domain.ConflictDecision) Prompter {
	return PrompterFunc(func(context.Context, string) (domain.ConflictDecision, error) {
		return d, nil
	})
}
