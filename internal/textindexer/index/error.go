package index

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrNotFound is returned by the indexer when there is no document for the requested link ID.
	ErrNotFound = xerrors.New("not found")
	// ErrMissingLinkID is returned when a document without a link ID is sent to the indexer.
	ErrMissingLinkID = xerrors.New("document does not provide a valid link ID")
)

// Failure is returned by Indexer implementations when an indexing
// operation cannot complete. It carries an optional message and an
// optional underlying cause; at least one of the two is set.
//
// A Failure is never modified once created so it can be shared between
// goroutines freely.
type Failure struct {
	msg   string
	cause error
	frame xerrors.Frame
}

// NewFailure returns a failure with both a message and an underlying cause.
func NewFailure(msg string, cause error) *Failure {
	return &Failure{msg: msg, cause: cause, frame: xerrors.Caller(1)}
}

// NewFailureMessage returns a failure described only by msg.
func NewFailureMessage(msg string) *Failure {
	return &Failure{msg: msg, frame: xerrors.Caller(1)}
}

// NewFailureCause returns a failure wrapping cause. Its message is the
// cause's own description.
func NewFailureCause(cause error) *Failure {
	f := &Failure{cause: cause, frame: xerrors.Caller(1)}
	if cause != nil {
		f.msg = cause.Error()
	}
	return f
}

// Message returns the human readable description of the failure.
func (f *Failure) Message() string { return f.msg }

// Cause returns the error that triggered the failure or nil.
func (f *Failure) Cause() error { return f.cause }

// Unwrap exposes the cause to xerrors.Is and xerrors.As.
func (f *Failure) Unwrap() error { return f.cause }

// Error implements error.
func (f *Failure) Error() string {
	switch {
	case f.cause == nil && f.msg == "":
		return "index failure"
	case f.cause == nil:
		return f.msg
	case f.msg == "" || f.msg == f.cause.Error():
		return f.cause.Error()
	default:
		return f.msg + ": " + f.cause.Error()
	}
}

// FormatError prints the message and call site, then hands the cause to
// the printer so %+v shows the whole chain.
func (f *Failure) FormatError(p xerrors.Printer) error {
	switch {
	case f.cause == nil && f.msg == "":
		p.Print("index failure")
	case f.msg == "":
		p.Print(f.cause.Error())
	default:
		p.Print(f.msg)
	}
	f.frame.Format(p)
	// the printed text already holds the cause
	if f.cause != nil && (f.msg == "" || f.msg == f.cause.Error()) && !p.Detail() {
		return nil
	}
	return f.cause
}

// Format implements fmt.Formatter.
func (f *Failure) Format(s fmt.State, v rune) { xerrors.FormatError(f, s, v) }

// AsFailure returns the first Failure found in err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if xerrors.As(err, &f) {
		return f, true
	}
	return nil, false
}
