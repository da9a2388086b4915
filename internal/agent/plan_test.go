package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PendingAction
	}{
		{
			name:  "clean JSON",
			input: `{"action": "send", "target_channel": "123", "message": "hey", "reason": "bored", "confidence": 0.8}`,
			want:  PendingAction{Action: "send", TargetChannel: "123", Message: "hey", Reason: "bored", Confidence: 0.8},
		},
		{
			name: "fenced with prose prefix",
			input: "Sure, here is the plan:\n```json\n" +
				`{"action": "wait", "reason": "nothing new", "confidence": 0.9}` + "\n```",
			want: PendingAction{Action: "wait", Reason: "nothing new", Confidence: 0.9},
		},
		{
			name:  "truncated mid string",
			input: `{"action": "wait", "reason": "bore`,
			want:  PendingAction{Action: "wait", Reason: "bore"},
		},
		{
			name:  "truncated after value",
			input: `{"action": "roam", "target_server": "42", "confidence": 0.7`,
			want:  PendingAction{Action: "roam", TargetServer: "42", Confidence: 0.7},
		},
		{
			name:  "numeric IDs tolerated",
			input: `{"action": "chat", "target_channel": 555, "target_user": 777, "message": "yo", "confidence": 0.75}`,
			want:  PendingAction{Action: "chat", TargetChannel: "555", TargetUser: "777", Message: "yo", Confidence: 0.75},
		},
		{
			name:  "trailing garbage after object",
			input: `{"action": "wait", "confidence": 0.9} and that is my reasoning`,
			want:  PendingAction{Action: "wait", Confidence: 0.9},
		},
		{
			name:  "uppercase action normalized",
			input: `{"action": "WAIT", "confidence": 1}`,
			want:  PendingAction{Action: "wait", Confidence: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePlan(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePlanRejectsGarbage(t *testing.T) {
	_, err := decodePlan("I have no idea what to do")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFallbackPlan(t *testing.T) {
	p := fallbackPlan("error in planning: timeout")
	assert.Equal(t, ActionWait, p.Action)
	assert.Equal(t, 0.0, p.Confidence)
	assert.Contains(t, p.Reason, "timeout")
}

func TestRepairTruncatedJSON(t *testing.T) {
	assert.Equal(t, `{"a": "b"}`, repairTruncatedJSON(`{"a": "b"}`))
	assert.Equal(t, `{"a": "b"}`, repairTruncatedJSON(`{"a": "b`))
	assert.Equal(t, `{"a": {"b": 1}}`, repairTruncatedJSON(`{"a": {"b": 1`))
}
