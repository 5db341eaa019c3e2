package dto

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    FlexInt
		wantErr bool
	}{
		{name: "number", raw: `4`, want: 4},
		{name: "string", raw: `"6"`, want: 6},
		{name: "padded string", raw: `" 8 "`, want: 8},
		{name: "whole float", raw: `4.0`, want: 4},
		{name: "large party", raw: `120`, want: 120},
		{name: "null", raw: `null`, want: 0},
		{name: "empty string", raw: `""`, want: 0},
		{name: "fraction", raw: `2.9`, wantErr: true},
		{name: "fraction string", raw: `"2.5"`, wantErr: true},
		{name: "overflow", raw: `1e12`, wantErr: true},
		{name: "word", raw: `"four"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexInt
			err := got.UnmarshalJSON([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReservationCreateRequest_RejectsFractionalBlock(t *testing.T) {
	var req ReservationCreateRequest
	err := json.Unmarshal([]byte(`{"party_size":2,"block_minutes":90.5}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrNotInteger.Error())
}
