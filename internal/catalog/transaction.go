package catalog

import "time"

// TransactionStatus is the lifecycle state of a loan.
type TransactionStatus string

const (
	// TxnCheckedOut is an open loan.
	TxnCheckedOut TransactionStatus = "Checked Out"
	// TxnReturned is a closed loan.
	TxnReturned TransactionStatus = "Returned"
)

// LoanDays is the loan period: due date is checkout date plus 14 days.
const LoanDays = 14

// Transaction records one loan of a book to a member. Transactions reference
// books by title and members by name; deleting a book orphans its
// transactions, which is accepted and not cleaned up.
type Transaction struct {
	ID           int64             `json:"id"`
	BookTitle    string            `json:"book_title"`
	MemberName   string            `json:"member_name"`
	CheckoutDate time.Time         `json:"checkout_date"`
	DueDate      time.Time         `json:"due_date"`
	Status       TransactionStatus `json:"status"`
}

// NewLoan creates an open transaction checked out at now and due LoanDays
// later.
func NewLoan(bookTitle, memberName string, now time.Time) Transaction {
	return Transaction{
		BookTitle:    bookTitle,
		MemberName:   memberName,
		CheckoutDate: now,
		DueDate:      now.AddDate(0, 0, LoanDays),
		Status:       TxnCheckedOut,
	}
}
