// Package delay runs functions after a fixed delay and lets callers cancel
// them before they fire.
package delay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status of a scheduled task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFired     Status = "fired"
	StatusCancelled Status = "cancelled"
)

// ErrCancelled is returned by Handle.Wait when the task was cancelled.
var ErrCancelled = errors.New("delay: task cancelled")

// Handle refers to one scheduled task.
type Handle struct {
	ID string

	mu     sync.Mutex
	status Status
	timer  *time.Timer
	done   chan struct{}
}

// Status returns the current task status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Done is closed once the task has fired (after its function returned) or
// was cancelled.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel stops a pending task. It reports false when the task already fired
// or was cancelled before.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	if h.status != StatusPending {
		h.mu.Unlock()
		return false
	}
	h.status = StatusCancelled
	h.timer.Stop()
	h.mu.Unlock()
	close(h.done)
	return true
}

// Wait blocks until the task fires or is cancelled. When ctx ends first the
// task is cancelled and ctx.Err() returned.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
	case <-ctx.Done():
		if h.Cancel() {
			return ctx.Err()
		}
		<-h.done
	}
	if h.Status() == StatusCancelled {
		return ErrCancelled
	}
	return nil
}

// Scheduler tracks pending tasks so they can be listed or cancelled together.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*Handle
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]*Handle)}
}

// Schedule runs fn once after d unless the returned handle is cancelled
// first. fn runs on its own goroutine.
func (s *Scheduler) Schedule(d time.Duration, fn func()) *Handle {
	h := &Handle{
		ID:     uuid.New().String(),
		status: StatusPending,
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	s.tasks[h.ID] = h
	s.mu.Unlock()

	h.mu.Lock()
	h.timer = time.AfterFunc(d, func() {
		h.mu.Lock()
		if h.status != StatusPending {
			h.mu.Unlock()
			return
		}
		h.status = StatusFired
		h.mu.Unlock()
		if fn != nil {
			fn()
		}
		close(h.done)
	})
	h.mu.Unlock()

	go func() {
		<-h.done
		s.mu.Lock()
		delete(s.tasks, h.ID)
		s.mu.Unlock()
	}()
	return h
}

// Pending returns the number of tasks that have neither fired nor been
// cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.tasks {
		if h.Status() == StatusPending {
			n++
		}
	}
	return n
}

// CancelAll cancels every pending task, e.g. on shutdown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.tasks))
	for _, h := range s.tasks {
		handles = append(handles, h)
	}
	s.mu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
}
