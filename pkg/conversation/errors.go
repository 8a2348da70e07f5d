package conversation

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for an empty submission.
var ErrInvalidInput = errors.New("input cannot be empty")

var (
	errNoResponse      = errors.New("responder produced no response")
	errEmptyResponse   = errors.New("responder returned no messages")
	errUnexpectedRoles = errors.New("responder returned a non-assistant message")
)

// ResponderError is returned when a turn fails. The transcript has already
// been rolled back when it is returned.
type ResponderError struct {
	Err error
}

func (e *ResponderError) Error() string {
	return fmt.Sprintf("responder failed: %v", e.Err)
}

func (e *ResponderError) Unwrap() error {
	return e.Err
}
