package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/diwanlib/circulate/internal/catalog"
)

// Memory is an in-memory Store. It backs the last-resort cache when no
// database is reachable and serves as the test double for the engine.
type Memory struct {
	mu         sync.Mutex
	books      []catalog.Book
	members    []catalog.Member
	txns       []catalog.Transaction
	nextBookID int64
	nextTxnID  int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextBookID: 1, nextTxnID: 1}
}

func (s *Memory) ListBooks(_ context.Context) ([]catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *Memory) CreateBook(_ context.Context, b catalog.Book) (catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextBookID
	s.nextBookID++
	if b.Status == "" {
		b.Status = catalog.StatusAvailable
	}
	s.books = append(s.books, b)
	return b, nil
}

func (s *Memory) DeleteBook(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.books {
		if b.ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("book %d not found", id)
}

func (s *Memory) SetBookStatus(_ context.Context, id int64, status catalog.BookStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == id {
			s.books[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("book %d not found", id)
}

func (s *Memory) ListMembers(_ context.Context) ([]catalog.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Member, len(s.members))
	copy(out, s.members)
	return out, nil
}

func (s *Memory) CreateMember(_ context.Context, m catalog.Member) (catalog.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, m)
	return m, nil
}

func (s *Memory) ListTransactions(_ context.Context) ([]catalog.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Transaction, len(s.txns))
	copy(out, s.txns)
	return out, nil
}

func (s *Memory) CreateTransaction(_ context.Context, t catalog.Transaction) (catalog.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTxnID
	s.nextTxnID++
	s.txns = append(s.txns, t)
	return t, nil
}

func (s *Memory) SetTransactionStatus(_ context.Context, id int64, status catalog.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txns {
		if s.txns[i].ID == id {
			s.txns[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("transaction %d not found", id)
}

func (s *Memory) ClearTransactions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = nil
	return nil
}

func (s *Memory) Close() error { return nil }
