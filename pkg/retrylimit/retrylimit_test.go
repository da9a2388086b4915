package retrylimit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e *statusErr) StatusCode() int { return e.code }

func TestAdaptiveLimiterAdjustments(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 10, 1, 0.5)
	assert.Equal(t, 8.0, lim.CurrentLimit())

	lim.RateLimited()
	assert.Equal(t, 4.0, lim.CurrentLimit())

	// Success right after an error must not raise the rate.
	lim.Success()
	assert.Equal(t, 4.0, lim.CurrentLimit())

	// The floor holds no matter how many cuts.
	for i := 0; i < 10; i++ {
		lim.RateLimited()
	}
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestIsOverload(t *testing.T) {
	assert.True(t, IsOverload(&statusErr{429}))
	assert.True(t, IsOverload(&statusErr{503}))
	assert.False(t, IsOverload(&statusErr{401}))
	assert.False(t, IsOverload(errors.New("plain")))
	assert.False(t, IsOverload(nil))
}
