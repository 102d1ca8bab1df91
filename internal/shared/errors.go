package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("not authorized to access this route")
	// ErrForbidden indicates the principal may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidToken indicates an unknown, expired or tampered token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmailDelivery indicates an outbound email could not be sent.
	ErrEmailDelivery = errors.New("email could not be sent")
)

// Error pairs an error kind with a caller-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Errorf builds an error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind error, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var kinds = []error{ErrValidation, ErrInvalidToken, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrEmailDelivery}

// KindOf returns the kind of the outermost *Error in err's chain. Bare
// sentinels classify as themselves; anything else yields nil. Causes wrapped
// below the outermost kind never change the classification.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message returns the caller-facing message of err, falling back to the kind text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
