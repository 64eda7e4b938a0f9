package commands

import (
	"encoding/json"
	"errors"
)

// StatusQueued acknowledges that an action was accepted into the queue.
// It is not a completion signal.
const StatusQueued = "queued"

// Response is the result of dispatching one command. Exactly one of Payload
// and Err is meaningful; errors are rendered into the body, never as
// transport failures.
type Response struct {
	Payload interface{}
	Err     error
}

// QueuedAck is the payload of every successful write command.
type QueuedAck struct {
	Status       string `json:"status"`
	SubmissionID uint64 `json:"submissionId"`
	// Cancellable is always false: queued actions cannot be withdrawn.
	Cancellable bool `json:"cancellable"`
}

// ErrorBody is the JSON shape of a failed command.
type ErrorBody struct {
	Error     string    `json:"error"`
	ErrorKind ErrorKind `json:"errorKind"`
	Field     string    `json:"field,omitempty"`
	Name      string    `json:"name,omitempty"`
}

// StatusBody is returned by ping.
type StatusBody struct {
	Status string `json:"status"`
}

func OK(payload interface{}) Response {
	return Response{Payload: payload}
}

func Queued(submissionID uint64) Response {
	return Response{Payload: QueuedAck{
		Status:       StatusQueued,
		SubmissionID: submissionID,
	}}
}

func Failed(err error) Response {
	return Response{Err: err}
}

// IsError reports whether the response carries an error.
func (r Response) IsError() bool {
	return r.Err != nil
}

// Body returns the value that should be encoded on the wire.
func (r Response) Body() interface{} {
	if r.Err != nil {
		return NewErrorBody(r.Err)
	}
	return r.Payload
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Body())
}

// NewErrorBody renders err with its classification.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{
		Error:     err.Error(),
		ErrorKind: KindOf(err),
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		body.Field = validationErr.Field
	}
	var unknownErr *UnknownCommandError
	if errors.As(err, &unknownErr) {
		body.Name = unknownErr.Name
	}
	return body
}
