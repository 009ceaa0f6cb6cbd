package forms

import (
	"context"
	"errors"
	"sync"
)

// State is the submission state of a form instance
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	ErrSubmissionInFlight = errors.New("form is already being submitted")
	ErrAlreadySubmitted   = errors.New("form was already submitted successfully")
	ErrDetached           = errors.New("form instance is detached")
)

// Instance tracks one form being filled and submitted.
//
// Transitions: idle -> submitting -> success | error, and error -> submitting
// on resubmit. Success is terminal. Validation failures leave the state
// unchanged. Values are cleared on success and kept on error.
type Instance[T any] struct {
	mu          sync.Mutex
	state       State
	values      T
	err         error
	fieldErrors FieldErrors
	detached    bool
}

func NewInstance[T any](values T) *Instance[T] {
	return &Instance[T]{values: values}
}

// Set replaces the field values. It is ignored while a submission is in flight
// or after success.
func (f *Instance[T]) Set(values T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting || f.state == StateSuccess || f.detached {
		return false
	}
	f.values = values
	return true
}

// Submit validates the current values and, if they pass, hands them to send.
// A second Submit while send is running returns ErrSubmissionInFlight.
// If the instance is detached before send returns, the result is dropped and
// ErrDetached is returned.
func (f *Instance[T]) Submit(ctx context.Context, send func(ctx context.Context, values T) error) error {
	f.mu.Lock()
	switch {
	case f.detached:
		f.mu.Unlock()
		return ErrDetached
	case f.state == StateSubmitting:
		f.mu.Unlock()
		return ErrSubmissionInFlight
	case f.state == StateSuccess:
		f.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if err := Validate(f.values); err != nil {
		if ve, ok := AsValidationError(err); ok {
			f.fieldErrors = ve.Fields
		}
		f.mu.Unlock()
		return err
	}
	f.fieldErrors = nil
	f.err = nil
	f.state = StateSubmitting
	values := f.values
	f.mu.Unlock()

	err := send(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detached {
		return ErrDetached
	}
	if err != nil {
		f.state = StateError
		f.err = err
		return err
	}
	f.state = StateSuccess
	var zero T
	f.values = zero
	return nil
}

// Detach marks the instance as abandoned; late submission results are ignored.
func (f *Instance[T]) Detach() {
	f.mu.Lock()
	f.detached = true
	f.mu.Unlock()
}

func (f *Instance[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Instance[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Err is the error of the last failed submission
func (f *Instance[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// FieldErrors are the messages from the last failed validation
func (f *Instance[T]) FieldErrors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrors
}
