package store

import (
	"context"

	"github.com/diwanlib/circulate/internal/catalog"
)

// Store is the entity persistence contract consumed by the circulation
// engine and the HTTP surface.
//
// Lists return records in insertion order. Create operations return the
// persisted record including any store-assigned identifier. Status updates
// are the only mutations; records are otherwise immutable once written.
type Store interface {
	ListBooks(ctx context.Context) ([]catalog.Book, error)
	CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SetBookStatus(ctx context.Context, id int64, status catalog.BookStatus) error

	ListMembers(ctx context.Context) ([]catalog.Member, error)
	CreateMember(ctx context.Context, m catalog.Member) (catalog.Member, error)

	ListTransactions(ctx context.Context) ([]catalog.Transaction, error)
	CreateTransaction(ctx context.Context, t catalog.Transaction) (catalog.Transaction, error)
	SetTransactionStatus(ctx context.Context, id int64, status catalog.TransactionStatus) error
	ClearTransactions(ctx context.Context) error

	Close() error
}
