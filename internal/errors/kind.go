package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure by its cause
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrValidation = stderrors.New("invalid input")
	ErrNotFound   = stderrors.New("not found")
	ErrNetwork    = stderrors.New("network failure")
	ErrAuth       = stderrors.New("not authenticated")
	ErrInternal   = stderrors.New("internal error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindNetwork:
		return ErrNetwork
	case KindAuth:
		return ErrAuth
	default:
		return ErrInternal
	}
}

// Error carries the operation, the classified kind and, for remote calls,
// the HTTP status and server message.
type Error struct {
	Op      string // Operation that failed, e.g. "categories.delete"
	Kind    Kind
	Status  int    // HTTP status (0 when no response was received)
	Message string // Server or validation message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	parts := []string{e.Op}

	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	} else if e.Message == "" {
		parts = append(parts, e.Kind.sentinel().Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind, then the wrapped error.
func (e *Error) Is(target error) bool {
	if target == e.Kind.sentinel() {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
	}
	return false
}

// New creates a classified error with a message and no underlying cause.
func New(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// Wrap classifies err under op. A nil err yields nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Validation is shorthand for a validation error built from a format string.
func Validation(op, format string, args ...interface{}) *Error {
	return New(op, KindValidation, fmt.Sprintf(format, args...))
}

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
