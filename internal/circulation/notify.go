package circulation

import (
	"context"
	"time"

	"github.com/diwanlib/circulate/internal/catalog"
)

// Prompter supplies member details when a checkout reaches a book scan with
// no pending member. Returning an empty name aborts the checkout attempt.
type Prompter interface {
	MemberDetails(ctx context.Context) (name, phone string, err error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context) (string, string, error)

func (f PrompterFunc) MemberDetails(ctx context.Context) (string, string, error) {
	return f(ctx)
}

// Notifier receives operator-facing notices from the engine. Implementations
// render them; the engine never formats UI text itself.
type Notifier interface {
	// MemberSelected fires when a member card scan sets the pending member.
	MemberSelected(m catalog.Member)
	// MemberEnrolled fires when a checkout auto-registers a new member.
	MemberEnrolled(m catalog.Member)
	// CheckedOut fires on a completed checkout, with the due date.
	CheckedOut(b catalog.Book, m catalog.Member, due time.Time)
	// CheckedIn fires on a completed checkin.
	CheckedIn(b catalog.Book)
	// ScanRejected fires when a scan is refused: resolution failure or a
	// state-precondition violation.
	ScanRejected(code string, err error)
}

// NopNotifier discards all notices.
type NopNotifier struct{}

func (NopNotifier) MemberSelected(catalog.Member)                      {}
func (NopNotifier) MemberEnrolled(catalog.Member)                      {}
func (NopNotifier) CheckedOut(catalog.Book, catalog.Member, time.Time) {}
func (NopNotifier) CheckedIn(catalog.Book)                             {}
func (NopNotifier) ScanRejected(string, error)                         {}
