package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business failure so the transport layer can map it to a
// status code without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindCredentialExpired
	KindNotAllowed
	KindNotFound
	KindIllegalArgument
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindCredentialExpired:
		return "credential_expired"
	case KindNotAllowed:
		return "not_allowed"
	case KindNotFound:
		return "not_found"
	case KindIllegalArgument:
		return "illegal_argument"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-visible message of err. Internal errors keep their
// context in logs only and surface a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal error"
		}
		return e.Msg
	}
	return "internal error"
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
