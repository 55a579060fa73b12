// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"errors"
	"fmt"
)

// TimeoutError reports that no matching reply arrived within the try
// budget. Each try issued one transport write and waited one full
// timeout window.
type TimeoutError struct {
	Code  byte // expected reply code
	Tries int  // attempts made before giving up
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pls: no reply 0x%02X after %d tries", e.Code, e.Tries)
}

// DeviceRejectedError reports that the device replied but signaled
// failure, such as a refused mode transition or a bad installation
// password.
type DeviceRejectedError struct {
	Code   byte // reply code carrying the rejection
	Status byte // device status byte
	Reason string
}

func (e *DeviceRejectedError) Error() string {
	return fmt.Sprintf("pls: device rejected request (reply 0x%02X, status 0x%02X): %s", e.Code, e.Status, e.Reason)
}

// ConfigError reports an engine-level sequencing failure: an
// unreachable baud rate, an unverifiable baud switch, or a device reply
// whose shape does not match the protocol.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pls: configuration: %s: %v", e.Reason, e.Err)
	}
	return "pls: configuration: " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError reports an underlying I/O failure. The engine
// propagates these without retrying; the retry budget applies only to
// protocol-level timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pls: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrBaudFixed is returned by SetBaud on transports with no adjustable
// line rate, such as a network bridge to a remote serial port.
var ErrBaudFixed = errors.New("pls: transport line rate is fixed")

// ErrNotStreaming is returned by LatestScan when the device has not
// been put in monitor stream mode.
var ErrNotStreaming = errors.New("pls: device is not in monitor stream mode")
