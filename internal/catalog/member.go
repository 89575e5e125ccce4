package catalog

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
)

// Member is a person who may borrow books.
//
// ID is either store-assigned or synthesized locally with NewMemberID when
// a member is enrolled while the primary store is unreachable.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// NewMemberID synthesizes a member id from the enrollment instant.
// The "M" prefix distinguishes member cards from book codes on a scanner.
func NewMemberID(now time.Time) string {
	return fmt.Sprintf("M%d", now.UnixMilli())
}

// Fold case-folds a string for comparison. Unicode case folding rather than
// ASCII lowercasing: member names are not restricted to Latin script.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// FindMemberByName returns the first member whose case-folded name equals
// the case-folded input. First match wins; duplicate names are a known risk
// the store layer does not prevent.
func FindMemberByName(members []Member, name string) (Member, bool) {
	want := Fold(name)
	for _, m := range members {
		if Fold(m.Name) == want {
			return m, true
		}
	}
	return Member{}, false
}
