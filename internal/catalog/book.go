package catalog

import (
	"regexp"
	"strings"
)

// BookStatus is the circulation state of a physical copy.
type BookStatus string

const (
	// StatusAvailable means the book is on the shelf and may be checked out.
	StatusAvailable BookStatus = "Available"
	// StatusCheckedOut means exactly one open transaction references the book.
	StatusCheckedOut BookStatus = "Checked Out"
)

// Canonical code prefixes. Printed QR labels are generated with these
// prefixes and the resolver accepts them bit-exactly, so they must never
// change once labels are in circulation.
const (
	TTIPrefix  = "TTI:"
	ISBNPrefix = "ISBN:"
	BookPrefix = "BOOK:"
)

// Book is a physical item in the catalog.
//
// TTICode is the primary scan-resolvable identifier and is unique among
// books. ISBN is an optional secondary identifier; externally printed
// barcodes usually carry the bare ISBN.
type Book struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	TTICode  string     `json:"ttiCode"`
	ISBN     string     `json:"isbn,omitempty"`
	Category string     `json:"category"`
	Status   BookStatus `json:"status"`
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeTitle replaces every character outside [A-Za-z0-9] with an
// underscore. Used for the BOOK: fallback code, which must be derivable
// from any title.
func NormalizeTitle(title string) string {
	return nonAlnum.ReplaceAllString(title, "_")
}

// TTICanonical returns "TTI:<ttiCode>", or "" when the book has no TTI code.
func (b Book) TTICanonical() string {
	if strings.TrimSpace(b.TTICode) == "" {
		return ""
	}
	return TTIPrefix + strings.TrimSpace(b.TTICode)
}

// ISBNCanonical returns "ISBN:<isbn>", or "" when the book has no ISBN.
func (b Book) ISBNCanonical() string {
	if strings.TrimSpace(b.ISBN) == "" {
		return ""
	}
	return ISBNPrefix + strings.TrimSpace(b.ISBN)
}

// TitleCanonical returns the "BOOK:" fallback code. Always non-empty since
// every book has a title.
func (b Book) TitleCanonical() string {
	return BookPrefix + NormalizeTitle(b.Title)
}

// CanonicalCode returns the code printed on this book's QR label:
// TTI code first, then ISBN, then the normalized-title fallback.
func (b Book) CanonicalCode() string {
	if c := b.TTICanonical(); c != "" {
		return c
	}
	if c := b.ISBNCanonical(); c != "" {
		return c
	}
	return b.TitleCanonical()
}
