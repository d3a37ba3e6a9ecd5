package tracker

import (
	"errors"
	"fmt"
)

// Sentinel errors carried by *ValidationError.
var (
	// ErrNilTarget is returned when the target is nil.
	ErrNilTarget = errors.New("tracker: target is nil")

	// ErrTargetNotComparable is returned when the target's dynamic type
	// cannot be compared with ==.
	ErrTargetNotComparable = errors.New("tracker: target is not comparable")

	// ErrEmptyEventType is returned when the event type is empty.
	ErrEmptyEventType = errors.New("tracker: event type is empty")

	// ErrNilCallback is returned when the callback handle or its function is nil.
	ErrNilCallback = errors.New("tracker: callback is nil")

	// ErrEmptyName is returned when a listener name is required but empty.
	ErrEmptyName = errors.New("tracker: name is empty")
)

// Op identifies a tracker operation in errors, logs and metrics.
type Op string

const (
	OpAdd          Op = "add"
	OpRemove       Op = "remove"
	OpRemoveNamed  Op = "remove_named"
	OpRemoveTarget Op = "remove_target"
	OpRemoveAll    Op = "remove_all"
	OpNamed        Op = "named"
)

// ValidationError reports a caller-supplied argument that was rejected
// before any platform call was made.
type ValidationError struct {
	Op    Op
	Param string
	Err   error
}

// Error returns the error message with the operation and parameter.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("tracker: %s: invalid %s: %v", e.Op, e.Param, e.Err)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RegistrationError wraps a failure returned by a target's AddListener or
// RemoveListener.
type RegistrationError struct {
	Op        Op
	EventType string // empty for multi-record operations
	Name      string
	Err       error
}

// Error returns the error message with the operation context.
func (e *RegistrationError) Error() string {
	switch {
	case e.Name != "" && e.EventType != "":
		return fmt.Sprintf("tracker: %s %q (%s): %v", e.Op, e.EventType, e.Name, e.Err)
	case e.EventType != "":
		return fmt.Sprintf("tracker: %s %q: %v", e.Op, e.EventType, e.Err)
	case e.Name != "":
		return fmt.Sprintf("tracker: %s (%s): %v", e.Op, e.Name, e.Err)
	default:
		return fmt.Sprintf("tracker: %s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the platform error for errors.Is/As.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

func invalid(op Op, param string, err error) *ValidationError {
	return &ValidationError{Op: op, Param: param, Err: err}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRegistration reports whether err is or wraps a *RegistrationError.
func IsRegistration(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re)
}
