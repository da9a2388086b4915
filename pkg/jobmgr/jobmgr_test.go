package jobmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAsyncRejectsDuplicateNames(t *testing.T) {
	m := NewManager(nil)
	block := make(chan struct{})

	require.NoError(t, m.StartAsync("loop", func(ctx context.Context) error {
		<-block
		return nil
	}))
	assert.Error(t, m.StartAsync("loop", func(ctx context.Context) error { return nil }))

	close(block)
}

func TestStopCancelsJob(t *testing.T) {
	m := NewManager(nil)
	done := make(chan struct{})

	require.NoError(t, m.StartAsync("loop", func(ctx context.Context) error {
		<-ctx.Done()
		close(done)
		return nil
	}))
	require.NoError(t, m.Stop("loop"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation")
	}

	assert.Error(t, m.Stop("loop"), "stopping twice must fail")
}

func TestReporterSeesLifecycle(t *testing.T) {
	events := make(chan string, 4)
	m := NewManager(func(s string) { events <- s })

	require.NoError(t, m.StartAsync("boom", func(ctx context.Context) error {
		return errors.New("exploded")
	}))

	assert.Equal(t, "running:boom", <-events)
	assert.Equal(t, "error:boom:exploded", <-events)
}
