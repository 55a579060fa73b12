// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

func TestMonitor_IngestsThroughNoise(t *testing.T) {
	ft := newFakeTransport()
	m := NewMonitor(ft, zerolog.Nop())
	m.Start()
	t.Cleanup(func() {
		m.Stop()
		ft.Close()
	})

	ft.inject([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	ft.injectReply([]byte{telegram.ReplyStatus, 0x01})
	ft.injectReply([]byte{telegram.ReplyValues, 0x02})

	deadline := time.Now().Add(time.Second)
	for m.Generation() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("generation stuck at %d, want 2", m.Generation())
		}
		time.Sleep(time.Millisecond)
	}

	frame, gen := m.Latest()
	if gen != 2 || frame.CommandCode() != telegram.ReplyValues {
		t.Errorf("Latest() = code 0x%02X gen %d, want code 0x%02X gen 2",
			frame.CommandCode(), gen, telegram.ReplyValues)
	}

	stats := m.Stats()
	if stats.Frames != 2 {
		t.Errorf("stats.Frames = %d, want 2", stats.Frames)
	}
	if stats.BytesDiscarded < 4 {
		t.Errorf("stats.BytesDiscarded = %d, want at least the 4 noise bytes", stats.BytesDiscarded)
	}
}

func TestMonitor_WaitTimesOut(t *testing.T) {
	ft := newFakeTransport()
	m := NewMonitor(ft, zerolog.Nop())
	m.Start()
	t.Cleanup(func() {
		m.Stop()
		ft.Close()
	})

	start := time.Now()
	_, _, ok := m.Wait(0, time.Now().Add(30*time.Millisecond))
	if ok {
		t.Fatal("Wait reported a frame on an idle link")
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Wait returned after %v, before the deadline", elapsed)
	}
}

func TestMonitor_WaitSeesOnlyNewGenerations(t *testing.T) {
	ft := newFakeTransport()
	m := NewMonitor(ft, zerolog.Nop())
	m.Start()
	t.Cleanup(func() {
		m.Stop()
		ft.Close()
	})

	ft.injectReply([]byte{telegram.ReplyStatus, 0x00})
	deadline := time.Now().Add(time.Second)
	for m.Generation() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("frame never published")
		}
		time.Sleep(time.Millisecond)
	}

	// Waiting past the already seen generation must time out, not
	// return the old frame again.
	if _, _, ok := m.Wait(m.Generation(), time.Now().Add(30*time.Millisecond)); ok {
		t.Fatal("Wait returned a frame whose generation predates the snapshot")
	}
}
