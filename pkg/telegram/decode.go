// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Decode parses one telegram from the beginning of buf.
//
// On success it returns the frame and the number of bytes it consumed.
// It fails with ErrIncomplete when buf ends before the frame does (read
// more and retry), with MalformedError when the header is structurally
// invalid, and with ChecksumError when the CRC16 trailer does not match.
// buf is never modified and the returned frame shares no memory with it.
func Decode(buf []byte) (*Frame, int, error) {
	if len(buf) < HeaderLength {
		return nil, 0, ErrIncomplete
	}
	if buf[0] != StartByte {
		return nil, 0, &MalformedError{Reason: fmt.Sprintf("expected start byte 0x%02X, found 0x%02X", StartByte, buf[0])}
	}

	payloadLen := int(binary.LittleEndian.Uint16(buf[2:4]))
	if payloadLen == 0 {
		return nil, 0, &MalformedError{Reason: "zero payload length"}
	}
	if payloadLen > MaxPayloadLen {
		return nil, 0, &MalformedError{Reason: fmt.Sprintf("payload length %d exceeds maximum %d", payloadLen, MaxPayloadLen)}
	}

	total := HeaderLength + payloadLen + TrailerLength
	if len(buf) < total {
		return nil, 0, ErrIncomplete
	}

	want := binary.LittleEndian.Uint16(buf[total-TrailerLength : total])
	got := Checksum(buf[:total-TrailerLength])
	if want != got {
		return nil, 0, &ChecksumError{Want: want, Got: got}
	}

	payload := make([]byte, payloadLen)
	copy(payload, buf[HeaderLength:HeaderLength+payloadLen])
	f := &Frame{
		address:   buf[1],
		payload:   payload,
		checksum:  want,
		timestamp: time.Now(),
	}
	return f, total, nil
}

// Scanner extracts telegrams from an arbitrary byte stream.
//
// Bytes are fed in with Push in whatever chunks the transport delivers
// them; Next returns well-formed frames one at a time, resynchronizing
// on the start byte across noise, partial frames and corrupted data.
// A Scanner is not safe for concurrent use.
type Scanner struct {
	buf   []byte
	stats ScanStats
}

// NewScanner creates a scanner with an empty accumulator.
func NewScanner() *Scanner {
	return &Scanner{buf: make([]byte, 0, MaxTelegramLen*2)}
}

// Push appends newly received bytes to the accumulator.
func (s *Scanner) Push(data []byte) {
	s.buf = append(s.buf, data...)
}

// Next returns the next well-formed frame buffered in the accumulator,
// or nil if the remaining bytes do not yet contain one.
//
// Leading bytes before a start byte are discarded. A frame that fails
// structurally or on checksum causes a single-byte advance past its
// bogus start byte rather than a skip of the claimed frame length: a
// corrupted length field must not be trusted to hide the real next
// frame.
func (s *Scanner) Next() *Frame {
	for {
		i := bytes.IndexByte(s.buf, StartByte)
		if i < 0 {
			s.stats.BytesDiscarded += uint64(len(s.buf))
			s.buf = s.buf[:0]
			return nil
		}
		if i > 0 {
			s.stats.BytesDiscarded += uint64(i)
			s.discard(i)
		}

		f, n, err := Decode(s.buf)
		switch {
		case err == nil:
			s.discard(n)
			s.stats.Frames++
			return f
		case errors.Is(err, ErrIncomplete):
			return nil
		default:
			var cerr *ChecksumError
			if errors.As(err, &cerr) {
				s.stats.ChecksumErrors++
			} else {
				s.stats.MalformedFrames++
			}
			s.stats.BytesDiscarded++
			s.discard(1)
		}
	}
}

// Stats returns the scanner's counters since construction.
func (s *Scanner) Stats() ScanStats {
	return s.stats
}

// Pending returns the number of bytes currently buffered.
func (s *Scanner) Pending() int {
	return len(s.buf)
}

// Reset drops all buffered bytes. Counters are preserved.
func (s *Scanner) Reset() {
	s.stats.BytesDiscarded += uint64(len(s.buf))
	s.buf = s.buf[:0]
}

func (s *Scanner) discard(n int) {
	s.buf = append(s.buf[:0], s.buf[n:]...)
}
