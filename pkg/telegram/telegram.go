// SPDX-License-Identifier: Apache-2.0

package telegram

import "time"

// Frame is one decoded telegram.
//
// A Frame only ever exists in well-formed state: it is produced either
// by NewFrame from validated inputs, or by Decode after the header,
// length field and checksum have all been verified. It is immutable
// once constructed.
type Frame struct {
	address   byte
	payload   []byte
	checksum  uint16
	timestamp time.Time
}

// NewFrame constructs an outgoing frame for the given destination
// address and payload. The payload's first byte is the command code.
// Fails with EncodingError if the payload is empty or exceeds
// MaxPayloadLen.
func NewFrame(address byte, payload []byte) (*Frame, error) {
	if len(payload) == 0 {
		return nil, &EncodingError{Reason: "empty payload"}
	}
	if len(payload) > MaxPayloadLen {
		return nil, &EncodingError{Reason: "payload exceeds maximum length"}
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	return &Frame{
		address:   address,
		payload:   p,
		checksum:  frameChecksum(address, p),
		timestamp: time.Now(),
	}, nil
}

// Address returns the frame's device address byte.
func (f *Frame) Address() byte {
	return f.address
}

// CommandCode returns the command or reply code, the first payload byte.
func (f *Frame) CommandCode() byte {
	return f.payload[0]
}

// Payload returns the frame's payload, command code included. The
// returned slice must not be modified.
func (f *Frame) Payload() []byte {
	return f.payload
}

// StatusByte returns the last payload byte. Device replies carry their
// status there; the value is meaningless on outgoing frames.
func (f *Frame) StatusByte() byte {
	return f.payload[len(f.payload)-1]
}

// Checksum returns the frame's CRC16.
func (f *Frame) Checksum() uint16 {
	return f.checksum
}

// Timestamp returns the frame's construction or decode time.
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// frameChecksum computes the CRC16 a wire frame with this address and
// payload would carry.
func frameChecksum(address byte, payload []byte) uint16 {
	buf := make([]byte, 0, HeaderLength+len(payload))
	buf = append(buf, StartByte, address, byte(len(payload)), byte(len(payload)>>8))
	buf = append(buf, payload...)
	return Checksum(buf)
}
