package circulation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/diwanlib/circulate/internal/catalog"
	"github.com/diwanlib/circulate/internal/resolver"
	"github.com/diwanlib/circulate/internal/scanner"
	"github.com/diwanlib/circulate/internal/store"
)

// DefaultCooldown suppresses duplicate re-triggers from a code that stays
// in view of the scanner. Scans arriving inside the window are dropped,
// not buffered.
const DefaultCooldown = 2 * time.Second

// Engine drives the checkout/checkin lifecycle.
//
// State model: one operation mode process-wide plus an optional pending
// member. Both reset whenever an operation starts, completes, is cancelled,
// or fails terminally.
//
// Mutation discipline: the in-memory snapshot is updated first, then the
// store is written. Store failures are logged and never roll back the
// in-memory state, so the operator's view stays consistent even when
// persistence is degraded.
type Engine struct {
	store    store.Store
	resolver *resolver.Resolver
	source   scanner.Source
	clock    Clock
	prompter Prompter
	notifier Notifier
	cooldown time.Duration

	mu       sync.Mutex
	mode     Mode
	pending  *catalog.Member
	lastScan time.Time
	loaded   bool
	books    []catalog.Book
	members  []catalog.Member
	txns     []catalog.Transaction
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock injects a clock. Default is the system clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithCooldown overrides the scan debounce window.
func WithCooldown(d time.Duration) Option {
	return func(e *Engine) { e.cooldown = d }
}

// WithNotifier sets the notice sink. Default discards notices.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithPrompter sets the member-details prompter. Default supplies nothing,
// so checkouts without a pending member abort with MemberNameRequired.
func WithPrompter(p Prompter) Option {
	return func(e *Engine) { e.prompter = p }
}

// WithResolver overrides the default resolution strategy order.
func WithResolver(r *resolver.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// New creates an Engine over a store and a scan source.
func New(s store.Store, src scanner.Source, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		source:   src,
		resolver: resolver.New(),
		clock:    SystemClock(),
		notifier: NopNotifier{},
		prompter: PrompterFunc(func(context.Context) (string, string, error) { return "", "", nil }),
		cooldown: DefaultCooldown,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load pulls the catalog snapshot from the store. Called implicitly by the
// Start methods; explicit calls refresh the snapshot between operations.
func (e *Engine) Load(ctx context.Context) error {
	books, err := e.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	members, err := e.store.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	txns, err := e.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.books = books
	e.members = members
	e.txns = txns
	e.loaded = true
	return nil
}

// StartCheckout enters checkout mode and activates the scan source.
// Starting while the source is already active stops and restarts it; a
// stuck scanner handle must never wedge the session.
func (e *Engine) StartCheckout(ctx context.Context) error {
	return e.start(ctx, ModeCheckout)
}

// StartCheckin enters checkin mode and activates the scan source.
func (e *Engine) StartCheckin(ctx context.Context) error {
	return e.start(ctx, ModeCheckin)
}

func (e *Engine) start(ctx context.Context, mode Mode) error {
	if err := e.ensureLoaded(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.mode = mode
	e.pending = nil
	e.lastScan = time.Time{}
	e.mu.Unlock()

	err := e.source.Start(ctx, func(code string) {
		// Scan delivery is fire-and-forget from the source's side; errors
		// have already been surfaced through the notifier.
		_ = e.HandleScan(ctx, code)
	})
	if err != nil {
		e.reset()
		return &OpError{
			Code:    ErrCodeScannerUnavailable,
			Message: fmt.Sprintf("cannot activate scan source: %v", err),
		}
	}

	slog.Info("operation started", "mode", mode.String())
	return nil
}

// Cancel clears the mode and pending member and deactivates the scan
// source. No persisted data is touched.
func (e *Engine) Cancel() {
	e.reset()
	slog.Info("operation cancelled")
}

func (e *Engine) reset() {
	e.mu.Lock()
	e.mode = ModeNone
	e.pending = nil
	e.mu.Unlock()

	if err := e.source.Stop(); err != nil {
		slog.Warn("scan source stop failed", "error", err)
	}
}

func (e *Engine) ensureLoaded(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if loaded {
		return nil
	}
	return e.Load(ctx)
}

// HandleScan processes one decoded scan. Exposed for tests and for wiring
// sources that deliver scans without the scanner package.
//
// Ignored entirely: empty scans, scans while no operation is in progress,
// and scans inside the cooldown window.
func (e *Engine) HandleScan(ctx context.Context, raw string) error {
	code := strings.TrimSpace(raw)
	if code == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeNone {
		return nil
	}

	now := e.clock.Now()
	if !e.lastScan.IsZero() && now.Sub(e.lastScan) < e.cooldown {
		slog.Debug("scan dropped by cooldown", "code", code)
		return nil
	}
	e.lastScan = now

	// Member cards resolve only in checkout mode and only until a member
	// is pending for the current operation.
	if e.mode == ModeCheckout && e.pending == nil {
		if m, ok := e.resolver.ResolveMember(code, e.members); ok {
			e.pending = &m
			slog.Info("member selected", "member", m.Name, "id", m.ID)
			e.notifier.MemberSelected(m)
			return nil
		}
	}

	match, ok := e.resolver.ResolveBook(code, e.books)
	if !ok {
		err := &OpError{
			Code:        ErrCodeResolutionFailed,
			Message:     "no book or member matched the scan",
			ScannedCode: code,
		}
		slog.Warn("scan resolution failed", "code", code, "mode", e.mode.String())
		e.notifier.ScanRejected(code, err)
		return err
	}
	slog.Debug("book resolved", "title", match.Book.Title, "strategy", match.Strategy)

	switch e.mode {
	case ModeCheckout:
		return e.checkout(ctx, code, match)
	default:
		return e.checkin(ctx, code, match)
	}
}

// checkout completes a loan for the matched book. Caller holds e.mu.
func (e *Engine) checkout(ctx context.Context, code string, match resolver.BookMatch) error {
	book := &e.books[match.Index]

	if book.Status == catalog.StatusCheckedOut {
		err := &OpError{
			Code:        ErrCodeAlreadyCheckedOut,
			Message:     "book is already checked out",
			ScannedCode: code,
			BookTitle:   book.Title,
		}
		e.notifier.ScanRejected(code, err)
		return err
	}

	member, err := e.checkoutMember(ctx)
	if err != nil {
		// Missing member input aborts the attempt back to idle.
		e.mode = ModeNone
		e.pending = nil
		e.stopSourceLocked()
		return err
	}

	now := e.clock.Now()
	loan := catalog.NewLoan(book.Title, member.Name, now)

	// In-memory mutation first, then persistence.
	book.Status = catalog.StatusCheckedOut
	if created, err := e.store.CreateTransaction(ctx, loan); err != nil {
		slog.Warn("transaction write failed", "book", book.Title, "error", err)
	} else {
		loan = created
	}
	e.txns = append(e.txns, loan)
	if err := e.store.SetBookStatus(ctx, book.ID, catalog.StatusCheckedOut); err != nil {
		slog.Warn("book status write failed", "book", book.Title, "error", err)
	}

	slog.Info("checkout completed",
		"book", book.Title,
		"member", member.Name,
		"due", loan.DueDate.Format(time.DateOnly),
	)
	e.notifier.CheckedOut(*book, member, loan.DueDate)

	e.mode = ModeNone
	e.pending = nil
	e.stopSourceLocked()
	return nil
}

// checkoutMember determines who the loan is for: the pending member when a
// card was scanned, otherwise whatever the prompter supplies. A new member
// is enrolled automatically when the name has no case-insensitive match.
// Caller holds e.mu.
func (e *Engine) checkoutMember(ctx context.Context) (catalog.Member, error) {
	if e.pending != nil {
		return *e.pending, nil
	}

	name, phone, err := e.prompter.MemberDetails(ctx)
	if err != nil {
		return catalog.Member{}, &OpError{
			Code:    ErrCodeMemberNameRequired,
			Message: fmt.Sprintf("member prompt failed: %v", err),
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Member{}, &OpError{
			Code:    ErrCodeMemberNameRequired,
			Message: "checkout requires a member name",
		}
	}

	if existing, ok := catalog.FindMemberByName(e.members, name); ok {
		return existing, nil
	}

	member := catalog.Member{
		ID:    catalog.NewMemberID(e.clock.Now()),
		Name:  name,
		Phone: strings.TrimSpace(phone),
	}
	if created, err := e.store.CreateMember(ctx, member); err != nil {
		slog.Warn("member write failed", "member", member.Name, "error", err)
	} else {
		member = created
	}
	e.members = append(e.members, member)

	slog.Info("member enrolled", "member", member.Name, "id", member.ID)
	e.notifier.MemberEnrolled(member)
	return member, nil
}

// checkin returns the matched book. Caller holds e.mu.
func (e *Engine) checkin(ctx context.Context, code string, match resolver.BookMatch) error {
	book := &e.books[match.Index]

	if book.Status == catalog.StatusAvailable {
		err := &OpError{
			Code:        ErrCodeAlreadyAvailable,
			Message:     "book is already available",
			ScannedCode: code,
			BookTitle:   book.Title,
		}
		e.notifier.ScanRejected(code, err)
		return err
	}

	book.Status = catalog.StatusAvailable
	if err := e.store.SetBookStatus(ctx, book.ID, catalog.StatusAvailable); err != nil {
		slog.Warn("book status write failed", "book", book.Title, "error", err)
	}

	// Close the first open transaction for this exact title. A missing
	// transaction is a recoverable inconsistency: the book status has
	// already been corrected.
	closed := false
	for i := range e.txns {
		if e.txns[i].BookTitle == book.Title && e.txns[i].Status == catalog.TxnCheckedOut {
			e.txns[i].Status = catalog.TxnReturned
			if err := e.store.SetTransactionStatus(ctx, e.txns[i].ID, catalog.TxnReturned); err != nil {
				slog.Warn("transaction status write failed", "book", book.Title, "error", err)
			}
			closed = true
			break
		}
	}
	if !closed {
		slog.Warn("no open transaction for checked-in book", "book", book.Title)
	}

	slog.Info("checkin completed", "book", book.Title)
	e.notifier.CheckedIn(*book)

	e.mode = ModeNone
	e.pending = nil
	e.stopSourceLocked()
	return nil
}

// stopSourceLocked deactivates the scan source without re-taking e.mu.
func (e *Engine) stopSourceLocked() {
	if err := e.source.Stop(); err != nil {
		slog.Warn("scan source stop failed", "error", err)
	}
}

// Mode returns the current operation mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// PendingMember returns a copy of the member held for the current checkout,
// or nil.
func (e *Engine) PendingMember() *catalog.Member {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	m := *e.pending
	return &m
}

// Books returns a copy of the in-memory book snapshot.
func (e *Engine) Books() []catalog.Book {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]catalog.Book, len(e.books))
	copy(out, e.books)
	return out
}

// Members returns a copy of the in-memory member snapshot.
func (e *Engine) Members() []catalog.Member {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]catalog.Member, len(e.members))
	copy(out, e.members)
	return out
}

// Transactions returns a copy of the in-memory transaction snapshot.
func (e *Engine) Transactions() []catalog.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]catalog.Transaction, len(e.txns))
	copy(out, e.txns)
	return out
}

// Stats summarizes the in-memory snapshot as of now.
func (e *Engine) Stats(now time.Time) catalog.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return catalog.Summarize(e.books, e.members, e.txns, now)
}
