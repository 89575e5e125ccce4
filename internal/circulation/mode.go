package circulation

// Mode is the engine's current workflow.
type Mode int

const (
	// ModeNone means no operation is in progress; scans are ignored.
	ModeNone Mode = iota
	// ModeCheckout lends a book, optionally to a pre-scanned member.
	ModeCheckout
	// ModeCheckin returns a book.
	ModeCheckin
)

func (m Mode) String() string {
	switch m {
	case ModeCheckout:
		return "checkout"
	case ModeCheckin:
		return "checkin"
	default:
		return "none"
	}
}
