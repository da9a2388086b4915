// Package jobmgr runs named background loops with cancellation and
// lifecycle reporting. It is deliberately small: one goroutine per job, no
// retry, no persistence; a finished job removes itself.
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//	_ = jm.StartAsync("planner", func(ctx context.Context) error {
//	    // run until ctx is cancelled
//	    return nil
//	})
//	// later...
//	_ = jm.Stop("planner")
package jobmgr

import (
	"context"
	"fmt"
	"sync"
)

// StatusReporter receives lifecycle events, one string per event:
//
//	running:planner
//	error:planner:connection lost
//	done:planner
type StatusReporter func(string)

// Manager tracks running jobs by name. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	cancels  map[string]context.CancelFunc
	Reporter StatusReporter
}

// NewManager creates a Manager. The reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		cancels:  make(map[string]context.CancelFunc),
		Reporter: reporter,
	}
}

// StartAsync launches runner in its own goroutine under a fresh cancellable
// context. A name already in use is an error. The job unregisters itself
// when runner returns.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if _, exists := m.cancels[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job '%s' is already running", name)
	}
	m.cancels[name] = cancel
	m.mu.Unlock()

	go func() {
		m.report("running:" + name)
		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.cancels, name)
		m.mu.Unlock()
		cancel()
	}()

	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, ok := m.cancels[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	cancel()
	delete(m.cancels, name)
	return nil
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
