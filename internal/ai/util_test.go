package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  hey there  ", want: "hey there"},
		{name: "think block", in: "<think>internal monologue</think>sure, sounds good", want: "sure, sounds good"},
		{name: "wrapping quotes", in: `"lol that was fast"`, want: "lol that was fast"},
		{name: "curly quotes", in: "“ciao a tutti”", want: "ciao a tutti"},
		{name: "inner quote kept", in: `he said "no" though`, want: `he said "no" though`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanReply(tt.in))
		})
	}
}

func TestIsGarbageResponse(t *testing.T) {
	assert.True(t, IsGarbageResponse("<HTML><body>gateway error</body>"))
	assert.True(t, IsGarbageResponse("request not allowed"))
	assert.True(t, IsGarbageResponse("   "))
	assert.False(t, IsGarbageResponse("ok"))
}
