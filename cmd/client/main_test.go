package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBody(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "raw", raw: `{"cmd":"ping"}`, args: []string{"ignored"}, want: `{"cmd":"ping"}`},
		{name: "name only", args: []string{"get_hand"}, want: `{"cmd":"get_hand"}`},
		{
			name: "parameters",
			args: []string{"use_potion", "slotIndex=1", "targetId=m-1"},
			want: `{"cmd":"use_potion","slotIndex":1,"targetId":"m-1"}`,
		},
		{name: "no command", wantErr: true},
		{name: "bad parameter", args: []string{"play_card", "uuid"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := commandBody(tt.raw, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
