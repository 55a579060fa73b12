// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"sync"
	"time"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// frameSlot is the single-slot mailbox between the stream monitor and
// the one caller thread. It holds at most the latest decoded frame plus
// a generation counter that only increases, so a waiter can tell a new
// arrival from the frame it has already seen.
//
// Publishing overwrites: a full slot never backpressures ingestion, and
// frames nobody was waiting for are intentionally dropped. This is a
// request/reply driver, not a message queue.
type frameSlot struct {
	mu      sync.Mutex
	frame   *telegram.Frame
	gen     uint64
	arrived chan struct{} // closed and replaced on every publish
}

func newFrameSlot() *frameSlot {
	return &frameSlot{arrived: make(chan struct{})}
}

// publish overwrites the slot with f, bumps the generation and wakes
// all waiters.
func (s *frameSlot) publish(f *telegram.Frame) {
	s.mu.Lock()
	s.frame = f
	s.gen++
	close(s.arrived)
	s.arrived = make(chan struct{})
	s.mu.Unlock()
}

// generation returns the current generation counter. Zero means no
// frame has ever been published.
func (s *frameSlot) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// latest returns the slot's current frame and generation without
// waiting. The frame is nil while the generation is zero.
func (s *frameSlot) latest() (*telegram.Frame, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.gen
}

// wait blocks until the generation advances past after, or until the
// deadline. It returns the slot's frame and generation at wake-up; ok
// is false on timeout.
func (s *frameSlot) wait(after uint64, deadline time.Time) (f *telegram.Frame, gen uint64, ok bool) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	for {
		s.mu.Lock()
		if s.gen > after {
			f, gen = s.frame, s.gen
			s.mu.Unlock()
			return f, gen, true
		}
		arrived := s.arrived
		s.mu.Unlock()

		select {
		case <-arrived:
		case <-timer.C:
			return nil, 0, false
		}
	}
}
