package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var day0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewLoan_DueDate(t *testing.T) {
	loan := NewLoan("Fundamentals of Nursing", "Jane Doe", day0)

	assert.Equal(t, day0, loan.CheckoutDate)
	assert.Equal(t, day0.AddDate(0, 0, 14), loan.DueDate)
	assert.Equal(t, TxnCheckedOut, loan.Status)
}

func TestIsOverdue_TwoStagePolicy(t *testing.T) {
	// Checkout on day 0 makes the due date day 14. The loan becomes overdue
	// only when now - dueDate exceeds another 14 days, i.e. on day 29.
	loan := NewLoan("Fundamentals of Nursing", "Jane Doe", day0)

	testCases := []struct {
		name string
		day  int
		want bool
	}{
		{"due day", 14, false},
		{"within grace", 27, false},
		{"grace boundary", 28, false},
		{"just past grace", 29, true},
		{"long overdue", 60, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			now := day0.AddDate(0, 0, tc.day)
			assert.Equal(t, tc.want, IsOverdue(loan, now))
		})
	}
}

func TestIsOverdue_ReturnedLoanNeverOverdue(t *testing.T) {
	loan := NewLoan("Fundamentals of Nursing", "Jane Doe", day0)
	loan.Status = TxnReturned

	assert.False(t, IsOverdue(loan, day0.AddDate(0, 0, 100)))
}

func TestMemberOverdueCount(t *testing.T) {
	now := day0.AddDate(0, 0, 40)
	txns := []Transaction{
		NewLoan("Book A", "Jane Doe", day0),
		NewLoan("Book B", "JANE DOE", day0), // same member, different casing
		NewLoan("Book C", "Aram Hassan", day0),
		NewLoan("Book D", "Jane Doe", now.AddDate(0, 0, -1)), // fresh loan
	}

	jane := Member{ID: "M1", Name: "jane doe"}
	assert.Equal(t, 2, MemberOverdueCount(jane, txns, now))

	aram := Member{ID: "M2", Name: "Aram Hassan"}
	assert.Equal(t, 1, MemberOverdueCount(aram, txns, now))
}

func TestSummarize(t *testing.T) {
	books := []Book{
		{Title: "A", Status: StatusAvailable},
		{Title: "B", Status: StatusCheckedOut},
		{Title: "C", Status: StatusCheckedOut},
		{Title: "D", Status: StatusAvailable},
		{Title: "E", Status: StatusAvailable},
		{Title: "F", Status: StatusAvailable},
	}
	members := []Member{{ID: "M1", Name: "Jane"}, {ID: "M2", Name: "Aram"}}
	now := day0.AddDate(0, 0, 40)
	txns := []Transaction{
		NewLoan("B", "Jane", day0),
		NewLoan("C", "Aram", now.AddDate(0, 0, -2)),
	}

	s := Summarize(books, members, txns, now)

	assert.Equal(t, 6, s.TotalBooks)
	assert.Equal(t, 2, s.TotalMembers)
	assert.Equal(t, 2, s.CheckedOut)
	assert.Equal(t, 1, s.Overdue)
	// Newest first, capped at five.
	assert.Len(t, s.RecentBooks, 5)
	assert.Equal(t, "F", s.RecentBooks[0].Title)
	assert.Equal(t, "B", s.RecentBooks[4].Title)
	assert.Equal(t, "Aram", s.RecentMembers[0].Name)
}
