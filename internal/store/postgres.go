package store

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diwanlib/circulate/internal/catalog"
)

const (
	tableBooks        = "books"
	tableMembers      = "members"
	tableTransactions = "transactions"
)

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		author VARCHAR(255) NOT NULL,
		tti_code VARCHAR(100) UNIQUE NOT NULL,
		isbn VARCHAR(20) NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id BIGSERIAL PRIMARY KEY,
		member_id VARCHAR(50) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		book_title VARCHAR(255) NOT NULL,
		member_name VARCHAR(255) NOT NULL,
		checkout_date TIMESTAMPTZ NOT NULL,
		due_date TIMESTAMPTZ NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Checked Out',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Postgres is the primary store. Queries are built with goqu and executed
// on a pgx connection pool.
type Postgres struct {
	pool    *pgxpool.Pool
	dialect goqu.DialectWrapper
}

// OpenPostgres connects to the primary database and creates the schema if
// it does not exist yet.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	for _, ddl := range pgSchema {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply postgres schema: %w", err)
		}
	}
	return &Postgres{pool: pool, dialect: goqu.Dialect("postgres")}, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	query, _, err := s.dialect.From(tableBooks).
		Select("id", "title", "author", "tti_code", "isbn", "category", "status").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list books query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var b catalog.Book
		var status string
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.TTICode, &b.ISBN, &b.Category, &status); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		b.Status = catalog.BookStatus(status)
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *Postgres) CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	if b.Status == "" {
		b.Status = catalog.StatusAvailable
	}
	query, _, err := s.dialect.Insert(tableBooks).
		Rows(goqu.Record{
			"title":    b.Title,
			"author":   b.Author,
			"tti_code": b.TTICode,
			"isbn":     b.ISBN,
			"category": b.Category,
			"status":   string(b.Status),
		}).
		Returning(goqu.C("id")).
		ToSQL()
	if err != nil {
		return catalog.Book{}, fmt.Errorf("build insert book query: %w", err)
	}
	if err := s.pool.QueryRow(ctx, query).Scan(&b.ID); err != nil {
		return catalog.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (s *Postgres) DeleteBook(ctx context.Context, id int64) error {
	query, _, err := s.dialect.Delete(tableBooks).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete book query: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book %d not found", id)
	}
	return nil
}

func (s *Postgres) SetBookStatus(ctx context.Context, id int64, status catalog.BookStatus) error {
	query, _, err := s.dialect.Update(tableBooks).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update book status query: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("update book %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book %d not found", id)
	}
	return nil
}

func (s *Postgres) ListMembers(ctx context.Context) ([]catalog.Member, error) {
	query, _, err := s.dialect.From(tableMembers).
		Select("member_id", "name", "phone").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list members query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []catalog.Member
	for rows.Next() {
		var m catalog.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Postgres) CreateMember(ctx context.Context, m catalog.Member) (catalog.Member, error) {
	query, _, err := s.dialect.Insert(tableMembers).
		Rows(goqu.Record{
			"member_id": m.ID,
			"name":      m.Name,
			"phone":     m.Phone,
		}).
		ToSQL()
	if err != nil {
		return catalog.Member{}, fmt.Errorf("build insert member query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return catalog.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (s *Postgres) ListTransactions(ctx context.Context) ([]catalog.Transaction, error) {
	query, _, err := s.dialect.From(tableTransactions).
		Select("id", "book_title", "member_name", "checkout_date", "due_date", "status").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transactions query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []catalog.Transaction
	for rows.Next() {
		var t catalog.Transaction
		var status string
		var checkout, due time.Time
		if err := rows.Scan(&t.ID, &t.BookTitle, &t.MemberName, &checkout, &due, &status); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		t.CheckoutDate = checkout
		t.DueDate = due
		t.Status = catalog.TransactionStatus(status)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (s *Postgres) CreateTransaction(ctx context.Context, t catalog.Transaction) (catalog.Transaction, error) {
	query, _, err := s.dialect.Insert(tableTransactions).
		Rows(goqu.Record{
			"book_title":    t.BookTitle,
			"member_name":   t.MemberName,
			"checkout_date": t.CheckoutDate,
			"due_date":      t.DueDate,
			"status":        string(t.Status),
		}).
		Returning(goqu.C("id")).
		ToSQL()
	if err != nil {
		return catalog.Transaction{}, fmt.Errorf("build insert transaction query: %w", err)
	}
	if err := s.pool.QueryRow(ctx, query).Scan(&t.ID); err != nil {
		return catalog.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *Postgres) SetTransactionStatus(ctx context.Context, id int64, status catalog.TransactionStatus) error {
	query, _, err := s.dialect.Update(tableTransactions).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update transaction status query: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("update transaction %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}
	return nil
}

func (s *Postgres) ClearTransactions(ctx context.Context) error {
	query, _, err := s.dialect.Delete(tableTransactions).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear transactions query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}
