package catalog

import "time"

// RecentLimit caps the recent-items lists on the dashboard.
const RecentLimit = 5

// Stats is the dashboard summary of the catalog.
type Stats struct {
	TotalBooks    int      `json:"total_books"`
	TotalMembers  int      `json:"total_members"`
	CheckedOut    int      `json:"checked_out"`
	Overdue       int      `json:"overdue"`
	RecentBooks   []Book   `json:"recent_books"`
	RecentMembers []Member `json:"recent_members"`
}

// Summarize computes dashboard statistics. Recent lists are the last
// RecentLimit entries in insertion order, newest first.
func Summarize(books []Book, members []Member, txns []Transaction, now time.Time) Stats {
	s := Stats{
		TotalBooks:   len(books),
		TotalMembers: len(members),
	}
	for _, b := range books {
		if b.Status == StatusCheckedOut {
			s.CheckedOut++
		}
	}
	s.Overdue = len(OverdueLoans(txns, now))
	s.RecentBooks = recentBooks(books)
	s.RecentMembers = recentMembers(members)
	return s
}

func recentBooks(books []Book) []Book {
	n := len(books)
	limit := min(n, RecentLimit)
	out := make([]Book, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, books[i])
	}
	return out
}

func recentMembers(members []Member) []Member {
	n := len(members)
	limit := min(n, RecentLimit)
	out := make([]Member, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, members[i])
	}
	return out
}
