package commands

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cbodonnell/cardbridge/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantName  string
		wantField string
		wantKind  ErrorKind
	}{
		{
			name:     "play card",
			body:     `{"cmd":"play_card","uuid":"abc","slotIndex":2}`,
			wantName: "play_card",
		},
		{
			name:      "missing cmd",
			body:      `{"uuid":"abc"}`,
			wantField: FieldCmd,
			wantKind:  ErrorKindValidation,
		},
		{
			name:      "non-string cmd",
			body:      `{"cmd":7}`,
			wantField: FieldCmd,
			wantKind:  ErrorKindValidation,
		},
		{
			name:      "empty body",
			body:      "",
			wantField: FieldCmd,
			wantKind:  ErrorKindValidation,
		},
		{
			name:     "malformed json",
			body:     `{"cmd":`,
			wantKind: ErrorKindValidation,
		},
		{
			name:     "not an object",
			body:     `[1,2]`,
			wantKind: ErrorKindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand(strings.NewReader(tt.body))
			if tt.wantKind != ErrorKindNone {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				if tt.wantField != "" {
					assert.Equal(t, tt.wantField, NewErrorBody(err).Field)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, cmd.Name)
			_, hasCmd := cmd.Parameters[FieldCmd]
			assert.False(t, hasCmd)
		})
	}
}

func TestCommand_accessors(t *testing.T) {
	cmd, err := DecodeCommand(strings.NewReader(`{"cmd":"x","s":"v","n":3,"f":1.5,"neg":-2,"empty":"","nil":null}`))
	require.NoError(t, err)

	s, err := cmd.String("s")
	require.NoError(t, err)
	assert.Equal(t, "v", s)

	_, err = cmd.String("missing")
	assert.True(t, IsValidationError(err))

	_, err = cmd.String("n")
	assert.True(t, IsValidationError(err))

	_, err = cmd.String("empty")
	assert.True(t, IsValidationError(err))

	opt, err := cmd.OptionalString("missing")
	require.NoError(t, err)
	assert.Empty(t, opt)

	opt, err = cmd.OptionalString("nil")
	require.NoError(t, err)
	assert.Empty(t, opt)

	n, err := cmd.Int("n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = cmd.Int("neg")
	require.NoError(t, err)
	assert.Equal(t, -2, n)

	_, err = cmd.Int("f")
	assert.True(t, IsValidationError(err))

	_, present, err := cmd.OptionalInt("missing")
	require.NoError(t, err)
	assert.False(t, present)

	_, present, err = cmd.OptionalInt("s")
	assert.True(t, present)
	assert.True(t, IsValidationError(err))
}

func TestCommand_IntFromGoValues(t *testing.T) {
	cmd := NewCommand("x", map[string]interface{}{"a": 4, "b": float64(5), "c": 5.5})

	a, err := cmd.Int("a")
	require.NoError(t, err)
	assert.Equal(t, 4, a)

	b, err := cmd.Int("b")
	require.NoError(t, err)
	assert.Equal(t, 5, b)

	_, err = cmd.Int("c")
	assert.Error(t, err)
}

func TestCommand_IntOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "json number", value: json.Number("10000000000000")},
		{name: "json number beyond int64", value: json.Number("99999999999999999999")},
		{name: "negative json number", value: json.Number("-10000000000000")},
		{name: "int64", value: int64(1) << 40},
		{name: "uint64", value: uint64(1) << 40},
		{name: "float64", value: float64(1e13)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand("x", map[string]interface{}{FieldWaitMs: tt.value})
			_, err := cmd.Int(FieldWaitMs)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}

	cmd := NewCommand("x", map[string]interface{}{FieldWaitMs: json.Number("2147483647")})
	n, err := cmd.Int(FieldWaitMs)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, n)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ErrorKindNone},
		{name: "validation", err: &ValidationError{Field: "uuid"}, want: ErrorKindValidation},
		{name: "wrapped validation", err: fmt.Errorf("translate: %w", &ValidationError{Field: "uuid"}), want: ErrorKindValidation},
		{name: "unknown", err: &UnknownCommandError{Name: "fly"}, want: ErrorKindUnknownCommand},
		{name: "not ready", err: ErrSimulationNotReady, want: ErrorKindSimulationNotReady},
		{name: "queue full", err: fmt.Errorf("submit: %w", queue.ErrQueueFull), want: ErrorKindQueueFull},
		{name: "execution", err: &ExecutionError{Message: "boom"}, want: ErrorKindExecutionFailed},
		{name: "other", err: fmt.Errorf("disk on fire"), want: ErrorKindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Queued(7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"queued","submissionId":7,"cancellable":false}`, string(b))

	b, err = json.Marshal(Failed(&ValidationError{Field: "uuid", Reason: "missing uuid"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"missing uuid","errorKind":"validation_error","field":"uuid"}`, string(b))

	b, err = json.Marshal(Failed(&UnknownCommandError{Name: "fly"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"unknown cmd: fly","errorKind":"unknown_command","name":"fly"}`, string(b))
}
