// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"time"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// sendAndAwaitReply is the generic request primitive every device
// operation is built on: encode and write the command, then wait for a
// frame whose command code equals replyCode, for at most timeout per
// try and tries attempts in total.
//
// The slot generation is snapshotted immediately before each write, so
// a reply already sitting in the slot — possibly the answer to an
// earlier, abandoned request — is never accepted as this request's
// answer. Frames with a non-matching code are skipped without resetting
// the timeout window.
//
// The request mutex serializes callers for the whole send-and-wait: the
// latest-frame slot has no notion of request identity, so two in-flight
// requests could each observe the other's reply.
func (d *Device) sendAndAwaitReply(payload []byte, replyCode byte, timeout time.Duration, tries int) (*telegram.Frame, error) {
	d.reqMu.Lock()
	defer d.reqMu.Unlock()

	wire, err := telegram.Encode(d.cfg.DeviceAddress, payload)
	if err != nil {
		return nil, err
	}

	for try := 1; try <= tries; try++ {
		after := d.monitor.Generation()
		if _, err := d.transport.Write(wire); err != nil {
			return nil, &TransportError{Op: "write", Err: err}
		}
		d.log.Debug().
			Hex("cmd", []byte{payload[0]}).
			Hex("expect", []byte{replyCode}).
			Int("try", try).
			Msg("command sent")

		// Replies carry the device address with the high bit set.
		replyAddr := telegram.ReplyAddressFlag | d.cfg.DeviceAddress

		deadline := time.Now().Add(timeout)
		for {
			frame, gen, ok := d.monitor.Wait(after, deadline)
			if !ok {
				break // this try timed out
			}
			if frame.CommandCode() == replyCode && frame.Address() == replyAddr {
				return frame, nil
			}
			// Not the reply we're waiting for; keep waiting within the
			// same deadline.
			after = gen
		}
	}

	return nil, &TimeoutError{Code: replyCode, Tries: tries}
}
