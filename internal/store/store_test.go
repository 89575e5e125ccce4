package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diwanlib/circulate/internal/catalog"
)

// runStoreContract exercises the Store contract against any implementation.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	b1, err := s.CreateBook(ctx, catalog.Book{
		Title: "Fundamentals of Nursing", Author: "Patricia Potter",
		TTICode: "TTI001", ISBN: "9780323673587", Category: "Nursing",
	})
	require.NoError(t, err)
	assert.NotZero(t, b1.ID)
	assert.Equal(t, catalog.StatusAvailable, b1.Status)

	b2, err := s.CreateBook(ctx, catalog.Book{
		Title: "Principles of Management", Author: "Stephen Robbins",
		TTICode: "TTI002", Category: "Business Administration",
	})
	require.NoError(t, err)
	assert.NotEqual(t, b1.ID, b2.ID)

	require.NoError(t, s.SetBookStatus(ctx, b1.ID, catalog.StatusCheckedOut))
	books, err = s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, catalog.StatusCheckedOut, books[0].Status)
	assert.Equal(t, "Fundamentals of Nursing", books[0].Title)

	m, err := s.CreateMember(ctx, catalog.Member{ID: "M1700000000000", Name: "Jane Doe", Phone: "0750"})
	require.NoError(t, err)
	assert.Equal(t, "M1700000000000", m.ID)

	members, err := s.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Jane Doe", members[0].Name)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	txn, err := s.CreateTransaction(ctx, catalog.NewLoan(b1.Title, m.Name, now))
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)

	require.NoError(t, s.SetTransactionStatus(ctx, txn.ID, catalog.TxnReturned))
	txns, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, catalog.TxnReturned, txns[0].Status)
	assert.True(t, txns[0].DueDate.Equal(now.AddDate(0, 0, 14)))

	require.NoError(t, s.ClearTransactions(ctx))
	txns, err = s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	require.NoError(t, s.DeleteBook(ctx, b2.ID))
	books, err = s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Error(t, s.DeleteBook(ctx, 9999))
	assert.Error(t, s.SetBookStatus(ctx, 9999, catalog.StatusAvailable))
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemory())
}

func TestSQLiteStore_Contract(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "circulate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runStoreContract(t, s)
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circulate.db")

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s1.CreateBook(context.Background(), catalog.Book{Title: "A", Author: "B", TTICode: "T1", Category: "C"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	books, err := s2.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)
}
