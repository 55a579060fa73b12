// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"io"
	"sync"
	"time"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// fakeTransport is a scripted in-memory link standing in for the
// scanner. Tests install an onCommand hook that plays the device side:
// it sees each decoded command frame and injects whatever reply bytes
// the scenario calls for.
type fakeTransport struct {
	mu       sync.Mutex
	incoming []byte
	writes   [][]byte
	baud     int
	closed   bool

	// onCommand runs synchronously inside Write with the decoded
	// outgoing frame. May call inject.
	onCommand func(f *telegram.Frame)

	// baudErr, when set, is returned by SetBaud.
	baudErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{baud: int(DefaultBaud)}
}

func (t *fakeTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	if len(t.incoming) == 0 {
		t.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(p, t.incoming)
	t.incoming = t.incoming[n:]
	t.mu.Unlock()
	return n, nil
}

func (t *fakeTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	t.writes = append(t.writes, buf)
	hook := t.onCommand
	t.mu.Unlock()

	if hook != nil {
		if f, _, err := telegram.Decode(p); err == nil {
			hook(f)
		}
	}
	return len(p), nil
}

func (t *fakeTransport) SetBaud(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.baudErr != nil {
		return t.baudErr
	}
	t.baud = baud
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) inject(data []byte) {
	t.mu.Lock()
	t.incoming = append(t.incoming, data...)
	t.mu.Unlock()
}

// injectReply frames and injects a device reply with the given payload.
func (t *fakeTransport) injectReply(payload []byte) {
	t.injectFrom(telegram.ReplyAddressFlag, payload)
}

// injectFrom frames and injects a telegram from an arbitrary source
// address.
func (t *fakeTransport) injectFrom(address byte, payload []byte) {
	buf, err := telegram.Encode(address, payload)
	if err != nil {
		panic(err)
	}
	t.inject(buf)
}

// silence detaches the device hook; subsequent commands go unanswered.
func (t *fakeTransport) silence() {
	t.mu.Lock()
	t.onCommand = nil
	t.mu.Unlock()
}

func (t *fakeTransport) writeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.writes)
}

func (t *fakeTransport) currentBaud() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baud
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
