package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLanguageMismatch(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		language string
		want     bool
	}{
		{"english channel, english text", "sounds good, when do we start", "english", false},
		{"english channel, accented text", "perché no", "english", true},
		{"english channel, che marker", "ma che dici amico", "english", true},
		{"italian channel, italian text", "va bene, domani allora", "italian", false},
		{"italian channel, english stopwords", "sure, you and me tomorrow", "italian", true},
		{"unknown language never mismatches", "whatever", "spanish", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, languageMismatch(tt.content, tt.language))
		})
	}
}

func TestTypingTime(t *testing.T) {
	mid := func() float64 { return 0.5 } // 7 chars per second

	assert.Equal(t, time.Duration(0), typingTime(3, mid), "short messages are instant")

	d := typingTime(70, mid)
	assert.InDelta(t, 10.0, d.Seconds(), 0.01)
}
