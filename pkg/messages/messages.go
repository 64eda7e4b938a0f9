package messages

import (
	"encoding/json"
	"fmt"
)

// Message types used on the websocket stream
const (
	// MessageTypeCommand is sent by clients; the payload is a command object
	MessageTypeCommand = "command"
	// MessageTypeResponse answers a command and echoes its ID
	MessageTypeResponse = "response"
	// MessageTypeOutcome is pushed by the server after each executed action
	MessageTypeOutcome = "outcome"
	// MessageTypeError reports a frame the server could not understand
	MessageTypeError = "error"
)

// Message is the envelope for every websocket frame.
type Message struct {
	Type string `json:"type"`
	// ID correlates a response with the command that caused it. It is
	// chosen by the client.
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a message envelope.
func NewMessage(messageType string, id string, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", messageType, err)
	}
	return &Message{
		Type:    messageType,
		ID:      id,
		Payload: b,
	}, nil
}
