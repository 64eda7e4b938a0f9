package commands

import (
	"errors"
	"fmt"

	"github.com/cbodonnell/cardbridge/pkg/queue"
)

// ErrorKind classifies errors reported to callers.
type ErrorKind string

const (
	ErrorKindNone               ErrorKind = ""
	ErrorKindValidation         ErrorKind = "validation_error"
	ErrorKindUnknownCommand     ErrorKind = "unknown_command"
	ErrorKindSimulationNotReady ErrorKind = "simulation_not_ready"
	ErrorKindExecutionFailed    ErrorKind = "execution_failed"
	ErrorKindQueueFull          ErrorKind = "queue_full"
	ErrorKindInternal           ErrorKind = "internal_error"
)

var (
	// ErrSimulationNotReady means there is no active player or session.
	// It is transient; callers should retry.
	ErrSimulationNotReady = errors.New("simulation not ready: no active player")
	// ErrMalformedPayload is returned for bodies that are not a JSON object.
	// The transport rejects these before dispatch.
	ErrMalformedPayload = errors.New("malformed payload")
)

// ValidationError reports a missing or malformed command field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid field %s", e.Field)
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// UnknownCommandError reports a command name the dispatcher does not route.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown cmd: %s", e.Name)
}

func IsUnknownCommand(err error) bool {
	var u *UnknownCommandError
	return errors.As(err, &u)
}

// ExecutionError is recorded when the simulation fails while running an
// action it had already accepted from the queue.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed: %s", e.Message)
}

// KindOf maps an error onto the reported taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	var execErr *ExecutionError
	switch {
	case IsValidationError(err), IsMalformedPayload(err):
		return ErrorKindValidation
	case IsUnknownCommand(err):
		return ErrorKindUnknownCommand
	case errors.Is(err, ErrSimulationNotReady):
		return ErrorKindSimulationNotReady
	case queue.IsQueueFull(err):
		return ErrorKindQueueFull
	case errors.As(err, &execErr):
		return ErrorKindExecutionFailed
	default:
		return ErrorKindInternal
	}
}
