package circulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diwanlib/circulate/internal/catalog"
	"github.com/diwanlib/circulate/internal/scanner"
	"github.com/diwanlib/circulate/internal/store"
	"github.com/diwanlib/circulate/internal/testutil"
)

var testDay = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// fakeSource records start/stop calls and lets tests inject scans directly.
type fakeSource struct {
	started int
	stopped int
	handler scanner.Handler
}

func (f *fakeSource) Start(_ context.Context, h scanner.Handler) error {
	f.started++
	f.handler = h
	return nil
}

func (f *fakeSource) Stop() error {
	f.stopped++
	return nil
}

// recordingNotifier captures notices for assertions.
type recordingNotifier struct {
	selected []catalog.Member
	enrolled []catalog.Member
	out      []catalog.Book
	in       []catalog.Book
	rejected []error
}

func (r *recordingNotifier) MemberSelected(m catalog.Member) { r.selected = append(r.selected, m) }
func (r *recordingNotifier) MemberEnrolled(m catalog.Member) { r.enrolled = append(r.enrolled, m) }
func (r *recordingNotifier) CheckedOut(b catalog.Book, _ catalog.Member, _ time.Time) {
	r.out = append(r.out, b)
}
func (r *recordingNotifier) CheckedIn(b catalog.Book)     { r.in = append(r.in, b) }
func (r *recordingNotifier) ScanRejected(_ string, e error) { r.rejected = append(r.rejected, e) }

type fixture struct {
	engine   *Engine
	store    *store.Memory
	source   *fakeSource
	clock    *testutil.FixedClock
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	for _, b := range []catalog.Book{
		{Title: "Fundamentals of Nursing", Author: "Patricia Potter", TTICode: "TTI001", ISBN: "9780323673587", Category: "Nursing"},
		{Title: "Principles of Management", Author: "Stephen Robbins", TTICode: "TTI002", ISBN: "9780134486833", Category: "Business Administration"},
	} {
		_, err := mem.CreateBook(ctx, b)
		require.NoError(t, err)
	}
	_, err := mem.CreateMember(ctx, catalog.Member{ID: "M1700000000000", Name: "Jane Doe", Phone: "0750"})
	require.NoError(t, err)

	f := &fixture{
		store:    mem,
		source:   &fakeSource{},
		clock:    testutil.NewFixedClock(testDay),
		notifier: &recordingNotifier{},
	}
	base := []Option{WithClock(f.clock), WithNotifier(f.notifier)}
	f.engine = New(mem, f.source, append(base, opts...)...)
	require.NoError(t, f.engine.Load(ctx))
	return f
}

// scan advances past the cooldown window before delivering, the way real
// consecutive scans arrive.
func (f *fixture) scan(ctx context.Context, code string) error {
	f.clock.Advance(3 * time.Second)
	return f.engine.HandleScan(ctx, code)
}

func namePrompter(name, phone string) Option {
	return WithPrompter(PrompterFunc(func(context.Context) (string, string, error) {
		return name, phone, nil
	}))
}

func TestCheckout_AutoEnrollsNewMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, namePrompter("Aram Hassan", "0771"))

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	// New member enrolled with a synthesized id.
	require.Len(t, f.notifier.enrolled, 1)
	assert.Equal(t, "Aram Hassan", f.notifier.enrolled[0].Name)
	assert.Regexp(t, `^M\d+$`, f.notifier.enrolled[0].ID)

	// Book flipped, open transaction created, due date = now + 14d.
	books := f.engine.Books()
	assert.Equal(t, catalog.StatusCheckedOut, books[0].Status)
	txns := f.engine.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, "Fundamentals of Nursing", txns[0].BookTitle)
	assert.Equal(t, "Aram Hassan", txns[0].MemberName)
	assert.Equal(t, catalog.TxnCheckedOut, txns[0].Status)
	assert.True(t, txns[0].DueDate.Equal(txns[0].CheckoutDate.AddDate(0, 0, 14)))

	// Mutations reached the store.
	stored, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	storedBooks, err := f.store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCheckedOut, storedBooks[0].Status)

	// Operation closed: mode reset, scan source deactivated.
	assert.Equal(t, ModeNone, f.engine.Mode())
	assert.Nil(t, f.engine.PendingMember())
	assert.Equal(t, 1, f.source.stopped)
	require.Len(t, f.notifier.out, 1)
}

func TestCheckout_MemberCardThenBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t) // no prompter: any prompt path would fail the checkout

	require.NoError(t, f.engine.StartCheckout(ctx))

	// Member card scan sets the pending member and keeps the operation open.
	require.NoError(t, f.scan(ctx, "M1700000000000"))
	require.Len(t, f.notifier.selected, 1)
	require.NotNil(t, f.engine.PendingMember())
	assert.Equal(t, "Jane Doe", f.engine.PendingMember().Name)
	assert.Equal(t, ModeCheckout, f.engine.Mode())

	require.NoError(t, f.scan(ctx, "TTI:TTI002"))
	txns := f.engine.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, "Jane Doe", txns[0].MemberName)
	assert.Empty(t, f.notifier.enrolled, "card-holding member must not be re-enrolled")
	assert.Equal(t, ModeNone, f.engine.Mode())
}

func TestCheckout_ReusesMemberByFoldedName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, namePrompter("jane doe", ""))

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	assert.Empty(t, f.notifier.enrolled, "existing member must be reused, not duplicated")
	assert.Len(t, f.engine.Members(), 1)
	txns := f.engine.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, "Jane Doe", txns[0].MemberName)
}

func TestCheckout_AlreadyCheckedOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, namePrompter("Jane Doe", ""))

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	require.NoError(t, f.engine.StartCheckout(ctx))
	err := f.scan(ctx, "TTI:TTI001")
	require.Error(t, err)
	assert.True(t, IsAlreadyCheckedOut(err))

	// No new transaction, no status change, operation stays open for retry.
	assert.Len(t, f.engine.Transactions(), 1)
	assert.Equal(t, catalog.StatusCheckedOut, f.engine.Books()[0].Status)
	assert.Equal(t, ModeCheckout, f.engine.Mode())

	// A different book still checks out in the same operation.
	require.NoError(t, f.scan(ctx, "TTI:TTI002"))
	assert.Len(t, f.engine.Transactions(), 2)
}

func TestCheckout_MemberNameRequired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t) // default prompter supplies nothing

	require.NoError(t, f.engine.StartCheckout(ctx))
	err := f.scan(ctx, "TTI:TTI001")
	require.Error(t, err)
	assert.True(t, IsMemberNameRequired(err))

	// Aborts to idle; nothing persisted.
	assert.Equal(t, ModeNone, f.engine.Mode())
	assert.Equal(t, catalog.StatusAvailable, f.engine.Books()[0].Status)
	assert.Empty(t, f.engine.Transactions())
}

func TestCheckinAfterCheckout_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, namePrompter("Jane Doe", ""))

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	require.NoError(t, f.engine.StartCheckin(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	// Book back on the shelf and exactly one transaction closed.
	assert.Equal(t, catalog.StatusAvailable, f.engine.Books()[0].Status)
	txns := f.engine.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, catalog.TxnReturned, txns[0].Status)
	require.Len(t, f.notifier.in, 1)

	stored, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.TxnReturned, stored[0].Status)
}

func TestCheckin_AlreadyAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.engine.StartCheckin(ctx))
	err := f.scan(ctx, "TTI:TTI001")
	require.Error(t, err)
	assert.True(t, IsAlreadyAvailable(err))
	assert.Equal(t, ModeCheckin, f.engine.Mode(), "operation stays open for retry")
}

func TestCheckin_MissingTransactionStillCorrectsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Book marked out with no open transaction: a known inconsistency.
	require.NoError(t, f.store.SetBookStatus(ctx, 1, catalog.StatusCheckedOut))
	require.NoError(t, f.engine.Load(ctx))

	require.NoError(t, f.engine.StartCheckin(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	assert.Equal(t, catalog.StatusAvailable, f.engine.Books()[0].Status)
	assert.Empty(t, f.engine.Transactions())
}

func TestHandleScan_UnknownCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.engine.StartCheckout(ctx))
	err := f.scan(ctx, "GIBBERISH-XYZ")
	require.Error(t, err)
	assert.True(t, IsResolutionFailure(err))

	// Mode unchanged so the next scan can retry.
	assert.Equal(t, ModeCheckout, f.engine.Mode())
	require.Len(t, f.notifier.rejected, 1)
}

func TestHandleScan_IgnoredWhenIdle(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.engine.HandleScan(context.Background(), "TTI:TTI001"))
	assert.Empty(t, f.engine.Transactions())
}

func TestHandleScan_CooldownDropsRapidRescan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.engine.StartCheckin(ctx))
	f.clock.Advance(3 * time.Second)

	// Book stays in camera view: the same unknown code fires twice inside
	// the window. Only the first is processed.
	err := f.engine.HandleScan(ctx, "GIBBERISH")
	require.Error(t, err)
	f.clock.Advance(500 * time.Millisecond)
	assert.NoError(t, f.engine.HandleScan(ctx, "GIBBERISH"), "cooldown drops the re-trigger")
	assert.Len(t, f.notifier.rejected, 1)

	// After the window the scan is processed again.
	f.clock.Advance(2 * time.Second)
	assert.Error(t, f.engine.HandleScan(ctx, "GIBBERISH"))
}

func TestStart_RestartsActiveSource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.engine.StartCheckin(ctx))
	assert.Equal(t, 2, f.source.started)
	assert.Equal(t, ModeCheckin, f.engine.Mode())
	assert.Nil(t, f.engine.PendingMember())
}

func TestCancel_ClearsStateWithoutTouchingData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.scan(ctx, "M1700000000000"))
	require.NotNil(t, f.engine.PendingMember())

	f.engine.Cancel()

	assert.Equal(t, ModeNone, f.engine.Mode())
	assert.Nil(t, f.engine.PendingMember())
	assert.GreaterOrEqual(t, f.source.stopped, 1)
	assert.Empty(t, f.engine.Transactions())
}

// erroringStore fails every write; reads pass through.
type erroringStore struct {
	*store.Memory
}

var errDown = errors.New("store down")

func (s *erroringStore) CreateTransaction(context.Context, catalog.Transaction) (catalog.Transaction, error) {
	return catalog.Transaction{}, errDown
}

func (s *erroringStore) SetBookStatus(context.Context, int64, catalog.BookStatus) error {
	return errDown
}

func TestCheckout_StoreFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	_, err := mem.CreateBook(ctx, catalog.Book{Title: "A", TTICode: "T1", Author: "X", Category: "C"})
	require.NoError(t, err)
	_, err = mem.CreateMember(ctx, catalog.Member{ID: "M1", Name: "Jane Doe"})
	require.NoError(t, err)

	clock := testutil.NewFixedClock(testDay)
	e := New(&erroringStore{Memory: mem}, &fakeSource{},
		WithClock(clock),
		namePrompter("Jane Doe", ""),
	)
	require.NoError(t, e.Load(ctx))

	require.NoError(t, e.StartCheckout(ctx))
	clock.Advance(3 * time.Second)
	require.NoError(t, e.HandleScan(ctx, "TTI:T1"))

	// Persistence failed but the operator-visible state is consistent.
	assert.Equal(t, catalog.StatusCheckedOut, e.Books()[0].Status)
	require.Len(t, e.Transactions(), 1)
	assert.Equal(t, catalog.TxnCheckedOut, e.Transactions()[0].Status)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, namePrompter("Jane Doe", ""))

	require.NoError(t, f.engine.StartCheckout(ctx))
	require.NoError(t, f.scan(ctx, "TTI:TTI001"))

	s := f.engine.Stats(f.clock.Now())
	assert.Equal(t, 2, s.TotalBooks)
	assert.Equal(t, 1, s.CheckedOut)
	assert.Equal(t, 0, s.Overdue)

	s = f.engine.Stats(f.clock.Now().AddDate(0, 0, 40))
	assert.Equal(t, 1, s.Overdue)
}
