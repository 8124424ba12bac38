package cart

import "github.com/fjod/go_cart/cart-sync/internal/domain"

type NoticeKind int

const (
	// NoticeRetry is the generic "try again" message for transport failures and timeouts.
	NoticeRetry NoticeKind = iota
	// NoticeFailure carries a server-provided business failure message verbatim.
	NoticeFailure
	// NoticeSignIn asks the user to log in again.
	NoticeSignIn
)

const (
	retryMessage  = "An error occurred. Please try again."
	signInMessage = "Please log in to continue."
)

// Notice is a user-facing message produced by a failed mutation.
type Notice struct {
	Kind      NoticeKind
	Operation domain.Operation
	ItemID    domain.ItemID
	Message   string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) {
	if f != nil {
		f(n)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
