// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// Monitor continuously drains the transport, extracts well-formed
// telegrams and publishes the most recent one to the latest-frame slot.
//
// It owns the read side of the transport and its byte accumulator
// outright; neither is ever exposed. It makes progress whether or not
// anyone is waiting, so an unread frame never blocks ingestion of the
// next one.
type Monitor struct {
	transport Transport
	slot      *frameSlot
	log       zerolog.Logger

	mu      sync.Mutex
	scanner *telegram.Scanner

	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewMonitor creates a monitor over t. It does not start reading until
// Start is called.
func NewMonitor(t Transport, logger zerolog.Logger) *Monitor {
	return &Monitor{
		transport: t,
		slot:      newFrameSlot(),
		log:       logger,
		scanner:   telegram.NewScanner(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the ingestion goroutine. Starting twice is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()
	go m.run()
}

// Stop shuts the ingestion goroutine down and waits for it to exit.
// Safe to call whether or not Start ran. The transport is left open;
// closing it is the owner's job.
func (m *Monitor) Stop() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if started {
		<-m.done
	}
}

// Generation returns the slot's current generation counter. Callers
// snapshot it immediately before sending a request so that replies
// predating the send are never misattributed.
func (m *Monitor) Generation() uint64 {
	return m.slot.generation()
}

// Latest returns the most recently published frame and its generation
// without waiting. The frame is nil while the generation is zero.
func (m *Monitor) Latest() (*telegram.Frame, uint64) {
	return m.slot.latest()
}

// Wait blocks until a frame with a generation greater than after is
// published, or until the deadline. ok is false on timeout.
func (m *Monitor) Wait(after uint64, deadline time.Time) (f *telegram.Frame, gen uint64, ok bool) {
	return m.slot.wait(after, deadline)
}

// Stats returns the extraction counters accumulated so far.
func (m *Monitor) Stats() telegram.ScanStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanner.Stats()
}

// FlushPending discards bytes buffered in the accumulator. Called after
// baud switches, when leftover bytes were sampled at the old rate.
func (m *Monitor) FlushPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanner.Reset()
}

func (m *Monitor) run() {
	defer close(m.done)

	buf := make([]byte, 4*telegram.MaxTelegramLen)
	for {
		select {
		case <-m.stop:
			return
		default:
		}

		n, err := m.transport.Read(buf)
		if err != nil {
			select {
			case <-m.stop:
				// Expected: Close unblocked the read during shutdown.
				return
			default:
			}
			m.log.Warn().Err(err).Msg("transport read failed")
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n == 0 {
			// Short read window elapsed with no data.
			continue
		}

		m.ingest(buf[:n])
	}
}

func (m *Monitor) ingest(data []byte) {
	m.mu.Lock()
	m.scanner.Push(data)
	var frames []*telegram.Frame
	for f := m.scanner.Next(); f != nil; f = m.scanner.Next() {
		frames = append(frames, f)
	}
	m.mu.Unlock()

	for _, f := range frames {
		m.log.Trace().
			Hex("code", []byte{f.CommandCode()}).
			Int("payload_len", len(f.Payload())).
			Msg("telegram received")
		m.slot.publish(f)
	}
}
