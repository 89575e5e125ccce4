// Package export renders the catalog to interchange formats: CSV for
// spreadsheets and a printable Excel workbook with QR code labels.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/diwanlib/circulate/internal/catalog"
)

// utf8BOM prefixes CSV output so Excel detects UTF-8 instead of falling
// back to the system codepage.
const utf8BOM = "\ufeff"

// WriteBooksCSV writes the book list as CSV with a UTF-8 BOM.
func WriteBooksCSV(w io.Writer, books []catalog.Book) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Author", "TTI Code", "ISBN", "Category", "Status"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range books {
		rec := []string{b.Title, b.Author, b.TTICode, b.ISBN, b.Category, string(b.Status)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write book %q: %w", b.Title, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransactionsCSV writes the loan history as CSV with a UTF-8 BOM.
// Dates are rendered date-only; the time of day is operational noise.
func WriteTransactionsCSV(w io.Writer, txns []catalog.Transaction) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Book", "Member", "Checkout Date", "Due Date", "Status"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txns {
		rec := []string{
			t.BookTitle,
			t.MemberName,
			t.CheckoutDate.Format(time.DateOnly),
			t.DueDate.Format(time.DateOnly),
			string(t.Status),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
