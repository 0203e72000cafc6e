package invoice

import (
	"errors"
	"fmt"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNoLineItems     = errors.New("invoice requires at least one line item")
	ErrUnknownStatus   = errors.New("unknown invoice status")
)

// InvalidTransitionError reports a lifecycle move the transition table does
// not allow, naming both ends so callers can surface a precise message.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid invoice transition from %s to %s", e.From, e.To)
}

// NewInvalidTransitionError creates an InvalidTransitionError.
func NewInvalidTransitionError(from, to Status) error {
	return &InvalidTransitionError{From: from, To: to}
}

// IsInvalidTransitionError reports whether err is a rejected lifecycle move.
func IsInvalidTransitionError(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}
