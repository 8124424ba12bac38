package domain

type Operation int

const (
	OpAdd Operation = iota
	OpRemove
)

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// MutationRequest describes one user-initiated cart change.
// ForceNewCart is only set after the user confirmed a restaurant switch.
type MutationRequest struct {
	ItemID       ItemID
	Operation    Operation
	ForceNewCart bool
}

// ConflictDecision is the user's answer to a restaurant conflict prompt.
type ConflictDecision int

const (
	DecisionAbort ConflictDecision = iota
	DecisionProceed
)

func (d ConflictDecision) String() string {
	if d == DecisionProceed {
		return "proceed"
	}
	return "abort"
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRestaurantConflict
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRestaurantConflict:
		return "restaurant_conflict"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the server's answer to a processed mutation.
// Message carries the conflict prompt or the failure reason.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	ItemID  ItemID
}

func Success(id ItemID) Outcome {
	return Outcome{Kind: OutcomeSuccess, ItemID: id}
}

func RestaurantConflict(id ItemID, message string) Outcome {
	return Outcome{Kind: OutcomeRestaurantConflict, ItemID: id, Message: message}
}

func Failure(id ItemID, reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, ItemID: id, Message: reason}
}
