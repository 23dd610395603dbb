package queue

import (
	"context"
	"sync"
)

// Memory is an in-process Queue with no durability. It backs tests and
// embedded setups where losing pending jobs on exit is acceptable.
type Memory struct {
	mu   sync.Mutex
	jobs []Job
}

// Verify *Memory satisfies Queue at compile time.
var _ Queue = (*Memory)(nil)

// NewMemory returns an empty in-process queue.
func NewMemory() *Memory {
	return &Memory{}
}

// Push appends jobs in order.
func (q *Memory) Push(_ context.Context, jobs ...Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, jobs...)
	return nil
}

// Pull removes and returns up to max pending jobs, oldest first.
func (q *Memory) Pull(_ context.Context, max int) ([]Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if max <= 0 || len(q.jobs) == 0 {
		return nil, nil
	}
	if max > len(q.jobs) {
		max = len(q.jobs)
	}
	out := make([]Job, max)
	copy(out, q.jobs[:max])
	q.jobs = q.jobs[max:]
	return out, nil
}

// Close is a no-op.
func (q *Memory) Close() error { return nil }

// Len returns the number of pending jobs.
func (q *Memory) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
