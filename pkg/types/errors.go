package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition reports that the target status is not reachable
	// from the current status.
	ErrInvalidTransition = errors.New("go-moderation: status transition not allowed")
	// ErrUnauthorized reports that the actor role or ownership does not permit
	// the requested action.
	ErrUnauthorized = errors.New("go-moderation: actor not authorized")
	// ErrEntityNotFound indicates the referenced entity does not exist.
	ErrEntityNotFound = errors.New("go-moderation: entity not found")
	// ErrInvalidArgument indicates a malformed request argument.
	ErrInvalidArgument = errors.New("go-moderation: invalid argument")
	// ErrStoreUnavailable indicates the backing store could not be read or written.
	ErrStoreUnavailable = errors.New("go-moderation: store unavailable")
	// ErrActorRequired indicates an actor was not supplied.
	ErrActorRequired = errors.New("go-moderation: actor required")
	// ErrTransitionsDisabled indicates transitions are frozen via feature gate.
	ErrTransitionsDisabled = errors.New("go-moderation: transitions disabled")
	// ErrMissingEntityStore occurs when no entity store was supplied.
	ErrMissingEntityStore = errors.New("go-moderation: missing entity store")
	// ErrMissingActivitySink occurs when no activity sink was supplied.
	ErrMissingActivitySink = errors.New("go-moderation: missing activity sink")
	// ErrMissingActivityRepository occurs when no activity repository was supplied.
	ErrMissingActivityRepository = errors.New("go-moderation: missing activity repository")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-moderation: service not ready")
)

// InvalidArgumentError names the offending field of a rejected request.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

// NewInvalidArgument builds an InvalidArgumentError.
func NewInvalidArgument(field, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

func (e *InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidArgument.Error(), e.Field)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument.Error(), e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidArgument) match.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// StoreError wraps a backend failure so callers can match ErrStoreUnavailable
// while keeping the original cause.
type StoreError struct {
	Op  string
	Err error
}

// WrapStoreError returns nil for nil errors and leaves domain errors untouched.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEntityNotFound) || errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable.Error(), e.Op, e.Err)
}

// Unwrap exposes the original cause.
func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStoreUnavailable) match.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
