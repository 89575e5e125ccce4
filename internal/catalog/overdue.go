package catalog

import (
	"math"
	"time"
)

// GraceDays is counted from the DUE date, not the checkout date. A loan is
// shown as overdue only once the due date is more than GraceDays in the
// past, so the effective window is LoanDays + GraceDays (28 days) from
// checkout. This two-stage policy is intentional; do not collapse it into a
// single threshold.
const GraceDays = 14

// IsOverdue reports whether an open transaction has exceeded the grace
// window as of now.
func IsOverdue(t Transaction, now time.Time) bool {
	if t.Status != TxnCheckedOut {
		return false
	}
	return daysBetween(t.DueDate, now) > GraceDays
}

// daysBetween returns floor((to - from) in whole days). Matches the display
// layer's arithmetic so status and reports never disagree.
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// OverdueLoans returns the open transactions that are overdue as of now,
// in their original order.
func OverdueLoans(txns []Transaction, now time.Time) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// MemberOverdueCount returns how many of the member's open transactions are
// overdue as of now. Member attribution is by case-folded name.
func MemberOverdueCount(m Member, txns []Transaction, now time.Time) int {
	name := Fold(m.Name)
	count := 0
	for _, t := range txns {
		if IsOverdue(t, now) && Fold(t.MemberName) == name {
			count++
		}
	}
	return count
}
