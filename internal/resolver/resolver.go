// Package resolver maps scanned text to catalog records.
//
// Printed labels are generated by this same system with the canonical
// TTI:/ISBN:/BOOK: prefixes, so canonical matches dominate in normal
// operation. The remaining strategies tolerate externally printed barcodes
// (bare ISBN or TTI text) and scanner noise. The strategy list is an
// explicit, ordered policy; containment is intentionally permissive and may
// over-match on short codes, which is an accepted precision/recall
// trade-off.
package resolver

import (
	"strings"

	"github.com/diwanlib/circulate/internal/catalog"
)

// Strategy is one book-matching rule. Strategies are evaluated in order for
// each candidate book; the first hit wins.
type Strategy struct {
	Name  string
	Match func(code string, b catalog.Book) bool
}

// DefaultStrategies returns the standard nine-step fallback order:
// canonical codes first, then bare identifiers, then case-insensitive and
// containment matches.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "tti-canonical", Match: func(code string, b catalog.Book) bool {
			c := b.TTICanonical()
			return c != "" && code == c
		}},
		{Name: "isbn-canonical", Match: func(code string, b catalog.Book) bool {
			c := b.ISBNCanonical()
			return c != "" && code == c
		}},
		{Name: "title-canonical", Match: func(code string, b catalog.Book) bool {
			return code == b.TitleCanonical()
		}},
		{Name: "isbn-exact", Match: func(code string, b catalog.Book) bool {
			return b.ISBN != "" && code == b.ISBN
		}},
		{Name: "tti-exact", Match: func(code string, b catalog.Book) bool {
			return b.TTICode != "" && code == b.TTICode
		}},
		{Name: "isbn-fold", Match: func(code string, b catalog.Book) bool {
			return b.ISBN != "" && catalog.Fold(code) == catalog.Fold(b.ISBN)
		}},
		{Name: "tti-fold", Match: func(code string, b catalog.Book) bool {
			return b.TTICode != "" && catalog.Fold(code) == catalog.Fold(b.TTICode)
		}},
		{Name: "isbn-contains", Match: func(code string, b catalog.Book) bool {
			return b.ISBN != "" && containsEither(code, b.ISBN)
		}},
		{Name: "tti-contains", Match: func(code string, b catalog.Book) bool {
			return b.TTICode != "" && containsEither(code, b.TTICode)
		}},
	}
}

// containsEither handles scanners that prepend or append stray characters:
// either string containing the other counts as a hit.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// BookMatch identifies the matched book and which strategy matched it.
// Index addresses the book in the slice passed to ResolveBook so callers
// can mutate the authoritative copy.
type BookMatch struct {
	Index    int
	Book     catalog.Book
	Strategy string
}

// Resolver resolves scanned codes against catalog snapshots.
type Resolver struct {
	strategies []Strategy
}

// New creates a Resolver with the default strategy order.
func New() *Resolver {
	return &Resolver{strategies: DefaultStrategies()}
}

// NewWithStrategies creates a Resolver with an explicit strategy list.
// Used to test ordering and tie-break behavior in isolation.
func NewWithStrategies(strategies []Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// ResolveMember matches a scanned code against member ids: exact first,
// then case-insensitive. The input is trimmed before comparison.
func (r *Resolver) ResolveMember(code string, members []catalog.Member) (catalog.Member, bool) {
	code = strings.TrimSpace(code)
	for _, m := range members {
		if m.ID == code {
			return m, true
		}
	}
	folded := catalog.Fold(code)
	for _, m := range members {
		if catalog.Fold(m.ID) == folded {
			return m, true
		}
	}
	return catalog.Member{}, false
}

// ResolveBook scans the book collection in its natural order and returns
// the first book any strategy matches. Strategy order decides which rule
// matched a given book; collection order decides which book wins.
func (r *Resolver) ResolveBook(code string, books []catalog.Book) (BookMatch, bool) {
	code = strings.TrimSpace(code)
	for i, b := range books {
		for _, s := range r.strategies {
			if s.Match(code, b) {
				return BookMatch{Index: i, Book: b, Strategy: s.Name}, true
			}
		}
	}
	return BookMatch{}, false
}
