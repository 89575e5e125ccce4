package circulation

import (
	"errors"
	"fmt"
)

// OpErrorCode categorizes circulation failures.
type OpErrorCode string

const (
	// ErrCodeResolutionFailed means no book or member matched a scan.
	// Recoverable: the operation mode is left unchanged for a retry.
	ErrCodeResolutionFailed OpErrorCode = "RESOLUTION_FAILED"

	// ErrCodeAlreadyCheckedOut means a checkout scanned a book that is
	// already out. Recoverable: the operation stays open.
	ErrCodeAlreadyCheckedOut OpErrorCode = "ALREADY_CHECKED_OUT"

	// ErrCodeAlreadyAvailable means a checkin scanned a book that is
	// already on the shelf. Recoverable: the operation stays open.
	ErrCodeAlreadyAvailable OpErrorCode = "ALREADY_AVAILABLE"

	// ErrCodeMemberNameRequired means a checkout had no pending member and
	// no name was supplied. The checkout attempt aborts back to idle.
	ErrCodeMemberNameRequired OpErrorCode = "MEMBER_NAME_REQUIRED"

	// ErrCodeScannerUnavailable means the scan source could not start.
	// The operation remains startable again.
	ErrCodeScannerUnavailable OpErrorCode = "SCANNER_UNAVAILABLE"
)

// OpError is a structured circulation failure with a machine-readable code.
type OpError struct {
	Code        OpErrorCode
	Message     string
	ScannedCode string
	BookTitle   string
}

func (e *OpError) Error() string {
	switch {
	case e.BookTitle != "":
		return fmt.Sprintf("%s: %s (book=%q)", e.Code, e.Message, e.BookTitle)
	case e.ScannedCode != "":
		return fmt.Sprintf("%s: %s (scan=%q)", e.Code, e.Message, e.ScannedCode)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func hasCode(err error, code OpErrorCode) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

// IsResolutionFailure reports whether a scan matched nothing.
func IsResolutionFailure(err error) bool { return hasCode(err, ErrCodeResolutionFailed) }

// IsAlreadyCheckedOut reports a checkout precondition violation.
func IsAlreadyCheckedOut(err error) bool { return hasCode(err, ErrCodeAlreadyCheckedOut) }

// IsAlreadyAvailable reports a checkin precondition violation.
func IsAlreadyAvailable(err error) bool { return hasCode(err, ErrCodeAlreadyAvailable) }

// IsMemberNameRequired reports a checkout aborted for lack of a member name.
func IsMemberNameRequired(err error) bool { return hasCode(err, ErrCodeMemberNameRequired) }

// IsScannerUnavailable reports a scan source start failure.
func IsScannerUnavailable(err error) bool { return hasCode(err, ErrCodeScannerUnavailable) }
