// SPDX-License-Identifier: Apache-2.0

package telegram

import "encoding/binary"

// Encode builds the wire form of a telegram for the given destination
// address and payload: header, payload bytes verbatim, then the CRC16
// trailer little-endian. Fails with EncodingError on an empty or
// oversized payload.
func Encode(address byte, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, &EncodingError{Reason: "empty payload"}
	}
	if len(payload) > MaxPayloadLen {
		return nil, &EncodingError{Reason: "payload exceeds maximum length"}
	}

	buf := make([]byte, 0, HeaderLength+len(payload)+TrailerLength)
	buf = append(buf, StartByte, address)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint16(buf, Checksum(buf))
	return buf, nil
}

// EncodeFrame returns the wire form of an already constructed frame.
func EncodeFrame(f *Frame) []byte {
	buf, err := Encode(f.Address(), f.Payload())
	if err != nil {
		// NewFrame enforces the same bounds, so this cannot happen for
		// a Frame obtained through the package API.
		panic("telegram: encode of invalid frame: " + err.Error())
	}
	return buf
}
