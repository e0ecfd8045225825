package entity

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, client-visible classification of a failure.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindAuthorization     ErrorKind = "authorization"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_state_transition"
	KindInfrastructure    ErrorKind = "infrastructure"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Infrastructure wraps a storage or transport failure.
func Infrastructure(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindInfrastructure, Message: fmt.Sprintf(format, args...), Err: err}
}

// InvalidTransitionError reports an appointment state machine violation.
// Stale is set when the appointment changed after the caller read it; the
// caller has to look at the new state before trying again.
type InvalidTransitionError struct {
	From  AppointmentStatus
	To    AppointmentStatus
	Stale bool
}

func (e *InvalidTransitionError) Error() string {
	if e.Stale {
		return fmt.Sprintf("appointment changed while moving from %q to %q, reload it and retry", e.From, e.To)
	}
	return fmt.Sprintf("appointment cannot move from %q to %q", e.From, e.To)
}

// KindOf classifies err. Unclassified errors are infrastructure failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var transition *InvalidTransitionError
	if errors.As(err, &transition) {
		return KindInvalidTransition
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
