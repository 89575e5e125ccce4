package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/diwanlib/circulate/internal/catalog"
)

// Tiered wraps a primary store and a local fallback. The primary is
// authoritative while reachable; on the first failure the station degrades
// to the fallback and stays there for the rest of the session so a single
// operation never splits its writes across tiers.
//
// The tiers are NEVER reconciled. Records written to the fallback while
// degraded do not reach the primary; this divergence is a documented
// operational risk, not something the code tries to merge away.
type Tiered struct {
	primary  Store
	fallback Store
	degraded atomic.Bool
}

// NewTiered creates a tiered store. primary may be nil, in which case the
// store starts degraded and only the fallback is used.
func NewTiered(primary, fallback Store) *Tiered {
	t := &Tiered{primary: primary, fallback: fallback}
	if primary == nil {
		t.degraded.Store(true)
	}
	return t
}

// Degraded reports whether the store has fallen back to local persistence.
func (t *Tiered) Degraded() bool {
	return t.degraded.Load()
}

// degrade flips to the fallback after a primary failure. Sticky for the
// session.
func (t *Tiered) degrade(op string, err error) {
	if t.degraded.CompareAndSwap(false, true) {
		slog.Warn("primary store unreachable, degrading to local fallback",
			"op", op,
			"error", err,
		)
	}
}

func (t *Tiered) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	if !t.degraded.Load() {
		books, err := t.primary.ListBooks(ctx)
		if err == nil {
			return books, nil
		}
		t.degrade("list books", err)
	}
	return t.fallback.ListBooks(ctx)
}

func (t *Tiered) CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	if !t.degraded.Load() {
		created, err := t.primary.CreateBook(ctx, b)
		if err == nil {
			return created, nil
		}
		t.degrade("create book", err)
	}
	return t.fallback.CreateBook(ctx, b)
}

func (t *Tiered) DeleteBook(ctx context.Context, id int64) error {
	if !t.degraded.Load() {
		err := t.primary.DeleteBook(ctx, id)
		if err == nil {
			return nil
		}
		t.degrade("delete book", err)
	}
	return t.fallback.DeleteBook(ctx, id)
}

func (t *Tiered) SetBookStatus(ctx context.Context, id int64, status catalog.BookStatus) error {
	if !t.degraded.Load() {
		err := t.primary.SetBookStatus(ctx, id, status)
		if err == nil {
			return nil
		}
		t.degrade("set book status", err)
	}
	return t.fallback.SetBookStatus(ctx, id, status)
}

func (t *Tiered) ListMembers(ctx context.Context) ([]catalog.Member, error) {
	if !t.degraded.Load() {
		members, err := t.primary.ListMembers(ctx)
		if err == nil {
			return members, nil
		}
		t.degrade("list members", err)
	}
	return t.fallback.ListMembers(ctx)
}

func (t *Tiered) CreateMember(ctx context.Context, m catalog.Member) (catalog.Member, error) {
	if !t.degraded.Load() {
		created, err := t.primary.CreateMember(ctx, m)
		if err == nil {
			return created, nil
		}
		t.degrade("create member", err)
	}
	return t.fallback.CreateMember(ctx, m)
}

func (t *Tiered) ListTransactions(ctx context.Context) ([]catalog.Transaction, error) {
	if !t.degraded.Load() {
		txns, err := t.primary.ListTransactions(ctx)
		if err == nil {
			return txns, nil
		}
		t.degrade("list transactions", err)
	}
	return t.fallback.ListTransactions(ctx)
}

func (t *Tiered) CreateTransaction(ctx context.Context, txn catalog.Transaction) (catalog.Transaction, error) {
	if !t.degraded.Load() {
		created, err := t.primary.CreateTransaction(ctx, txn)
		if err == nil {
			return created, nil
		}
		t.degrade("create transaction", err)
	}
	return t.fallback.CreateTransaction(ctx, txn)
}

func (t *Tiered) SetTransactionStatus(ctx context.Context, id int64, status catalog.TransactionStatus) error {
	if !t.degraded.Load() {
		err := t.primary.SetTransactionStatus(ctx, id, status)
		if err == nil {
			return nil
		}
		t.degrade("set transaction status", err)
	}
	return t.fallback.SetTransactionStatus(ctx, id, status)
}

func (t *Tiered) ClearTransactions(ctx context.Context) error {
	if !t.degraded.Load() {
		err := t.primary.ClearTransactions(ctx)
		if err == nil {
			return nil
		}
		t.degrade("clear transactions", err)
	}
	return t.fallback.ClearTransactions(ctx)
}

// Close closes both tiers. The fallback error wins if both fail.
func (t *Tiered) Close() error {
	var primaryErr error
	if t.primary != nil {
		primaryErr = t.primary.Close()
	}
	if err := t.fallback.Close(); err != nil {
		return err
	}
	return primaryErr
}
