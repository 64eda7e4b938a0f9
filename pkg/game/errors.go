package game

import (
	"errors"
	"fmt"
)

// RejectedError means an action was well formed but could not be applied
// to the current state, e.g. the card has left the hand. The state is
// left untouched.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

func reject(format string, args ...interface{}) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}
