package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/diwanlib/circulate/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is the local fallback store. It keeps a scan station operational
// when the primary database is unreachable.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite creates or opens the fallback database at the given path and
// applies pragmas and schema. Idempotent.
//
// WAL mode allows concurrent reads during writes; the connection pool is
// capped at one connection because SQLite supports a single writer and the
// engine is single-operator anyway.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type bookRow struct {
	ID       int64  `db:"id"`
	Title    string `db:"title"`
	Author   string `db:"author"`
	TTICode  string `db:"tti_code"`
	ISBN     string `db:"isbn"`
	Category string `db:"category"`
	Status   string `db:"status"`
}

func (r bookRow) toBook() catalog.Book {
	return catalog.Book{
		ID:       r.ID,
		Title:    r.Title,
		Author:   r.Author,
		TTICode:  r.TTICode,
		ISBN:     r.ISBN,
		Category: r.Category,
		Status:   catalog.BookStatus(r.Status),
	}
}

func (s *SQLite) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	var rows []bookRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, title, author, tti_code, isbn, category, status FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books := make([]catalog.Book, len(rows))
	for i, r := range rows {
		books[i] = r.toBook()
	}
	return books, nil
}

func (s *SQLite) CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	if b.Status == "" {
		b.Status = catalog.StatusAvailable
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO books (title, author, tti_code, isbn, category, status) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, b.TTICode, b.ISBN, b.Category, string(b.Status))
	if err != nil {
		return catalog.Book{}, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return catalog.Book{}, fmt.Errorf("book insert id: %w", err)
	}
	b.ID = id
	return b, nil
}

func (s *SQLite) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return requireRows(res.RowsAffected())
}

func (s *SQLite) SetBookStatus(ctx context.Context, id int64, status catalog.BookStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE books SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update book %d status: %w", id, err)
	}
	return requireRows(res.RowsAffected())
}

type memberRow struct {
	MemberID string `db:"member_id"`
	Name     string `db:"name"`
	Phone    string `db:"phone"`
}

func (s *SQLite) ListMembers(ctx context.Context) ([]catalog.Member, error) {
	var rows []memberRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT member_id, name, phone FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]catalog.Member, len(rows))
	for i, r := range rows {
		members[i] = catalog.Member{ID: r.MemberID, Name: r.Name, Phone: r.Phone}
	}
	return members, nil
}

func (s *SQLite) CreateMember(ctx context.Context, m catalog.Member) (catalog.Member, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (member_id, name, phone) VALUES (?, ?, ?)`,
		m.ID, m.Name, m.Phone)
	if err != nil {
		return catalog.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

type txnRow struct {
	ID           int64     `db:"id"`
	BookTitle    string    `db:"book_title"`
	MemberName   string    `db:"member_name"`
	CheckoutDate time.Time `db:"checkout_date"`
	DueDate      time.Time `db:"due_date"`
	Status       string    `db:"status"`
}

func (s *SQLite) ListTransactions(ctx context.Context) ([]catalog.Transaction, error) {
	var rows []txnRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, book_title, member_name, checkout_date, due_date, status FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txns := make([]catalog.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = catalog.Transaction{
			ID:           r.ID,
			BookTitle:    r.BookTitle,
			MemberName:   r.MemberName,
			CheckoutDate: r.CheckoutDate,
			DueDate:      r.DueDate,
			Status:       catalog.TransactionStatus(r.Status),
		}
	}
	return txns, nil
}

func (s *SQLite) CreateTransaction(ctx context.Context, t catalog.Transaction) (catalog.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (book_title, member_name, checkout_date, due_date, status) VALUES (?, ?, ?, ?, ?)`,
		t.BookTitle, t.MemberName, t.CheckoutDate, t.DueDate, string(t.Status))
	if err != nil {
		return catalog.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return catalog.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	return t, nil
}

func (s *SQLite) SetTransactionStatus(ctx context.Context, id int64, status catalog.TransactionStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update transaction %d status: %w", id, err)
	}
	return requireRows(res.RowsAffected())
}

func (s *SQLite) ClearTransactions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

func requireRows(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no matching row")
	}
	return nil
}
