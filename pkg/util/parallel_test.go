package util

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelVisitsAllInputs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)

	err := Parallel([]int{1, 2, 3, 4, 5}, 3, func(_ context.Context, n int) error {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 5)
}

func TestParallelSurfacesFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Parallel([]int{1, 2, 3}, 1, func(_ context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestParallelEmptyInput(t *testing.T) {
	called := false
	err := Parallel(nil, 4, func(_ context.Context, _ int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
