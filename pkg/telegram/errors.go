// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"errors"
	"fmt"
)

// ErrIncomplete reports that the supplied bytes end before the frame
// does. It is a need-more-data signal, not a protocol failure: the
// caller should read more bytes and retry.
var ErrIncomplete = errors.New("telegram: incomplete frame")

// ChecksumError reports a frame whose CRC16 trailer does not match the
// checksum recomputed over its header and payload.
type ChecksumError struct {
	Want uint16 // checksum carried in the trailer
	Got  uint16 // checksum recomputed over the frame
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("telegram: checksum mismatch: frame carries 0x%04X, computed 0x%04X", e.Want, e.Got)
}

// MalformedError reports a structurally invalid frame, such as a length
// field exceeding the protocol maximum.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "telegram: malformed frame: " + e.Reason
}

// EncodingError reports invalid inputs to Encode.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "telegram: encoding: " + e.Reason
}
