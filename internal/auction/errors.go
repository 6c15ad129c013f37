// Package auction implements the auction lifecycle engine: status
// transitions, bid validation and acceptance, winner determination and
// post-auction ownership transfer.  Handlers stay thin and translate
// the error kinds defined here into HTTP responses.
package auction

import "fmt"

// Kind classifies an engine error.  Every business-rule rejection maps
// to exactly one kind; persistence failures are never wrapped into an
// *Error and surface as plain errors.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindUnauthenticated
	KindInvalidState
	KindInvalidArgument
	KindPaymentRequired
)

// Error is a business-rule rejection with a stable kind and a
// human-readable message.  These are terminal for the request; none of
// them are retried.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf returns the kind of err, or 0 when err is not an engine error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}

func notFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func invalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func paymentRequired(msg string) *Error {
	return &Error{Kind: KindPaymentRequired, Message: msg}
}
