// Package apperr defines the error kinds surfaced by the skillswap services.
//
// Services return errors that wrap one of the Err* kinds. The API boundary maps
// the kind to a status code and decides how much of the message may be shown.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("you do not have permission to access this resource")
	ErrNotFound             = errors.New("resource not found")
	ErrInvalid              = errors.New("invalid request")
	ErrConflict             = errors.New("conflict")
	ErrProvisioningConflict = errors.New("provisioning conflict")
)

// ErrInvalidSkill is returned when a skill name is blank after normalization.
var ErrInvalidSkill = Invalid("Skill name must not be blank.")

// Error carries a caller-facing message on top of an error kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// New returns an error of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity together with the key it was looked up by.
func NotFound(entity, field string, value any) error {
	return New(ErrNotFound, "%s not found with %s : '%v'", entity, field, value)
}

// Invalid reports a violated validation rule.
func Invalid(msg string) error {
	return &Error{kind: ErrInvalid, msg: msg}
}

// Conflict reports a uniqueness or reference violation.
func Conflict(msg string) error {
	return &Error{kind: ErrConflict, msg: msg}
}

// Message returns the caller-facing message of err. Errors that are not of
// this package's type yield an empty string.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return ""
}
