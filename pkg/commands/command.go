package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Command names understood by the dispatcher.
const (
	CommandGetState       = "get_state"
	CommandGetMonsters    = "get_monsters"
	CommandGetPlayer      = "get_player"
	CommandGetHand        = "get_hand"
	CommandGetDrawPile    = "get_draw_pile"
	CommandGetDiscardPile = "get_discard_pile"
	CommandGetDeck        = "get_deck"
	CommandGetRelics      = "get_relics"
	CommandGetPotions     = "get_potions"
	CommandGetOutcome     = "get_outcome"
	CommandPing           = "ping"

	CommandPlayCard      = "play_card"
	CommandUsePotion     = "use_potion"
	CommandEndTurn       = "end_turn"
	CommandExecuteAction = "execute_action"
)

// Parameter names used on the wire.
const (
	FieldCmd          = "cmd"
	FieldUUID         = "uuid"
	FieldTargetID     = "targetId"
	FieldPotionID     = "potionId"
	FieldSlotIndex    = "slotIndex"
	FieldAction       = "action"
	FieldSubmissionID = "submissionId"
	FieldWaitMs       = "waitMs"
)

// Command is a structured request: a name plus loosely typed parameters.
// It lives for a single dispatch.
type Command struct {
	Name       string
	Parameters map[string]interface{}
}

// NewCommand builds a command from a name and parameters.
func NewCommand(name string, parameters map[string]interface{}) Command {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	return Command{Name: name, Parameters: parameters}
}

// DecodeCommand decodes a JSON object of the form {"cmd": "...", ...}.
// Every other top-level field becomes a parameter.
func DecodeCommand(r io.Reader) (Command, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	// An empty body reads as an empty object.
	raw := map[string]interface{}{}
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return FromMap(raw)
}

// FromMap builds a command from an already decoded JSON object.
func FromMap(raw map[string]interface{}) (Command, error) {
	value, ok := raw[FieldCmd]
	if !ok {
		return Command{}, &ValidationError{Field: FieldCmd, Reason: "missing cmd field"}
	}
	name, ok := value.(string)
	if !ok || name == "" {
		return Command{}, &ValidationError{Field: FieldCmd, Reason: "cmd must be a non-empty string"}
	}

	parameters := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k == FieldCmd {
			continue
		}
		parameters[k] = v
	}
	return NewCommand(name, parameters), nil
}

// Has reports whether the parameter is present and not null.
func (c Command) Has(field string) bool {
	v, ok := c.Parameters[field]
	return ok && v != nil
}

// String returns a required string parameter.
func (c Command) String(field string) (string, error) {
	if !c.Has(field) {
		return "", &ValidationError{Field: field, Reason: "missing " + field}
	}
	s, ok := c.Parameters[field].(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: field + " must be a string"}
	}
	if s == "" {
		return "", &ValidationError{Field: field, Reason: field + " must not be empty"}
	}
	return s, nil
}

// OptionalString returns a string parameter, or "" when absent.
func (c Command) OptionalString(field string) (string, error) {
	if !c.Has(field) {
		return "", nil
	}
	s, ok := c.Parameters[field].(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: field + " must be a string"}
	}
	return s, nil
}

// Int returns a required integer parameter.
func (c Command) Int(field string) (int, error) {
	if !c.Has(field) {
		return 0, &ValidationError{Field: field, Reason: "missing " + field}
	}
	n, ok := toInt(c.Parameters[field])
	if !ok {
		return 0, &ValidationError{Field: field, Reason: field + " must be an integer"}
	}
	return n, nil
}

// OptionalInt returns an integer parameter and whether it was present.
func (c Command) OptionalInt(field string) (int, bool, error) {
	if !c.Has(field) {
		return 0, false, nil
	}
	n, err := c.Int(field)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// IsMalformedPayload reports whether err came from an undecodable body.
func IsMalformedPayload(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}
