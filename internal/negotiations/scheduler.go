package negotiations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler runs delayed auto-reply tasks, one session at a time. Tasks for
// the same session execute in submission order; tasks for different sessions
// are independent. Cancel drops whatever has not fired yet for a session.
type Scheduler struct {
	delay time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionQueue

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

type sessionQueue struct {
	pending []func(context.Context)
	running bool
}

// NewScheduler builds a scheduler that waits delay before firing each task.
func NewScheduler(delay time.Duration) *Scheduler {
	base, stop := context.WithCancel(context.Background())
	return &Scheduler{
		delay:    delay,
		sessions: make(map[uuid.UUID]*sessionQueue),
		base:     base,
		stop:     stop,
	}
}

// Schedule queues fn behind any tasks already pending for the session.
func (s *Scheduler) Schedule(sessionID uuid.UUID, fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.base.Err() != nil {
		return
	}

	queue := s.sessions[sessionID]
	if queue == nil {
		queue = &sessionQueue{}
		s.sessions[sessionID] = queue
	}
	queue.pending = append(queue.pending, fn)
	if !queue.running {
		queue.running = true
		s.wg.Add(1)
		go s.drain(sessionID)
	}
}

// Cancel drops every task still pending for the session. A task already past
// its delay may still run to completion.
func (s *Scheduler) Cancel(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if queue := s.sessions[sessionID]; queue != nil {
		queue.pending = nil
	}
}

// Stop cancels all pending tasks and waits for in-flight ones to finish.
func (s *Scheduler) Stop() {
	s.stop()
	s.wg.Wait()
}

func (s *Scheduler) drain(sessionID uuid.UUID) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		queue := s.sessions[sessionID]
		if queue == nil || len(queue.pending) == 0 {
			if queue != nil {
				delete(s.sessions, sessionID)
			}
			s.mu.Unlock()
			return
		}
		fn := queue.pending[0]
		queue.pending = queue.pending[1:]
		s.mu.Unlock()

		select {
		case <-s.base.Done():
			s.mu.Lock()
			delete(s.sessions, sessionID)
			s.mu.Unlock()
			return
		case <-time.After(s.delay):
		}

		fn(s.base)
	}
}
