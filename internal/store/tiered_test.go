package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diwanlib/circulate/internal/catalog"
)

// failingStore errors on every call after failAfter successful calls.
type failingStore struct {
	*Memory
	calls     int
	failAfter int
}

var errConnRefused = errors.New("connection refused")

func (f *failingStore) tick() error {
	f.calls++
	if f.calls > f.failAfter {
		return errConnRefused
	}
	return nil
}

func (f *failingStore) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	return f.Memory.ListBooks(ctx)
}

func (f *failingStore) CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	if err := f.tick(); err != nil {
		return catalog.Book{}, err
	}
	return f.Memory.CreateBook(ctx, b)
}

func TestTiered_UsesPrimaryWhileHealthy(t *testing.T) {
	ctx := context.Background()
	primary := NewMemory()
	fallback := NewMemory()
	tiered := NewTiered(primary, fallback)

	_, err := tiered.CreateBook(ctx, catalog.Book{Title: "A", TTICode: "T1"})
	require.NoError(t, err)
	assert.False(t, tiered.Degraded())

	// The write landed on the primary only.
	books, _ := primary.ListBooks(ctx)
	assert.Len(t, books, 1)
	books, _ = fallback.ListBooks(ctx)
	assert.Empty(t, books)
}

func TestTiered_DegradesOnPrimaryFailure(t *testing.T) {
	ctx := context.Background()
	primary := &failingStore{Memory: NewMemory(), failAfter: 1}
	fallback := NewMemory()
	tiered := NewTiered(primary, fallback)

	_, err := tiered.CreateBook(ctx, catalog.Book{Title: "A", TTICode: "T1"})
	require.NoError(t, err)
	require.False(t, tiered.Degraded())

	// Second write fails on the primary and lands on the fallback; the
	// operation itself still succeeds.
	_, err = tiered.CreateBook(ctx, catalog.Book{Title: "B", TTICode: "T2"})
	require.NoError(t, err)
	assert.True(t, tiered.Degraded())

	books, _ := fallback.ListBooks(ctx)
	require.Len(t, books, 1)
	assert.Equal(t, "B", books[0].Title)

	// Degradation is sticky: later reads come from the fallback and do not
	// see the primary's record. The tiers are never reconciled.
	books, err = tiered.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "B", books[0].Title)
}

func TestTiered_NilPrimaryStartsDegraded(t *testing.T) {
	tiered := NewTiered(nil, NewMemory())
	assert.True(t, tiered.Degraded())

	_, err := tiered.CreateBook(context.Background(), catalog.Book{Title: "A", TTICode: "T1"})
	assert.NoError(t, err)
}
