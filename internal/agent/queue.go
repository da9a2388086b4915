package agent

import "context"

// ActionQueue carries pending actions from producers (ingestion fast path,
// planner) to the single dispatcher. FIFO; the channel gives safe concurrent
// enqueue without extra locking.
type ActionQueue struct {
	ch chan PendingAction
}

func NewActionQueue(size int) *ActionQueue {
	if size <= 0 {
		size = 128
	}
	return &ActionQueue{ch: make(chan PendingAction, size)}
}

// Enqueue adds an action. Blocks only if the dispatcher has fallen a full
// buffer behind, which at seconds-scale cadence does not happen.
func (q *ActionQueue) Enqueue(a PendingAction) {
	q.ch <- a
}

// Dequeue blocks until an action is available or ctx is done.
func (q *ActionQueue) Dequeue(ctx context.Context) (PendingAction, bool) {
	select {
	case <-ctx.Done():
		return PendingAction{}, false
	case a := <-q.ch:
		return a, true
	}
}

// Len reports the number of queued actions (for logging).
func (q *ActionQueue) Len() int {
	return len(q.ch)
}
