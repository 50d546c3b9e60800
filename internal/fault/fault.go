// Package fault is the closed error taxonomy of the poll loop.
//
// Every error that reaches the loop carries a Kind, and the Kind decides at
// construction time whether the error is relayed to the chat (escalate) or
// only logged (silent).
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	RequestFailed
	BadStatus
	ParseFailed
	MissingKey
	DeliveryFailed
	TypeMismatch
	KeyError
)

func (k Kind) String() string {
	switch k {
	case RequestFailed:
		return "request_failed"
	case BadStatus:
		return "bad_status"
	case ParseFailed:
		return "parse_failed"
	case MissingKey:
		return "missing_key"
	case DeliveryFailed:
		return "delivery_failed"
	case TypeMismatch:
		return "type_mismatch"
	case KeyError:
		return "key_error"
	default:
		return "unknown"
	}
}

// Error is a classified loop error.
type Error struct {
	Kind   Kind
	Msg    string
	Status int    // BadStatus only
	Body   string // ParseFailed only
	Err    error

	silent bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Silent reports whether the error must stay out of the chat.
func (e *Error) Silent() bool { return e.silent }

func newError(k Kind, silent bool, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err, silent: silent}
}

// ---- silent class ----

func NewRequestFailed(err error) *Error {
	return newError(RequestFailed, true, "could not fetch a response from API", err)
}

func NewBadStatus(code int) *Error {
	e := newError(BadStatus, true, fmt.Sprintf("API error, response code: %d", code), nil)
	e.Status = code
	return e
}

func NewParseFailed(body string, err error) *Error {
	e := newError(ParseFailed, true, fmt.Sprintf("could not parse response as json (body: %s)", truncate(body, 512)), err)
	e.Body = body
	return e
}

func NewMissingKey(key string) *Error {
	return newError(MissingKey, true, fmt.Sprintf("required key %q not found in server response", key), nil)
}

func NewDeliveryFailed(err error) *Error {
	return newError(DeliveryFailed, true, "telegram service error", err)
}

// ---- escalate class ----

func NewTypeMismatch(format string, args ...any) *Error {
	return newError(TypeMismatch, false, fmt.Sprintf(format, args...), nil)
}

func NewKeyError(format string, args ...any) *Error {
	return newError(KeyError, false, fmt.Sprintf(format, args...), nil)
}

func NewUnknown(err error) *Error {
	return newError(Unknown, false, "unexpected error", err)
}

// As returns err as a classified *Error. Unclassified errors become Unknown.
// It returns nil for a nil err.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return NewUnknown(err)
}

// Is reports whether err is a classified error of kind k.
func Is(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	return s[:maxN-3] + "..."
}
