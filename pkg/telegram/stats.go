// SPDX-License-Identifier: Apache-2.0

package telegram

import "fmt"

// ScanStats tracks stream extraction counters and error rates. Decode
// failures are handled internally by resynchronization; these counters
// are the only place they remain visible.
type ScanStats struct {
	Frames          uint64 // well-formed frames extracted
	ChecksumErrors  uint64 // frames dropped on CRC16 mismatch
	MalformedFrames uint64 // frames dropped on structural errors
	BytesDiscarded  uint64 // noise and resync bytes skipped
}

// String formats the counters on a single line.
func (s ScanStats) String() string {
	return fmt.Sprintf("frames=%d crc_errors=%d malformed=%d discarded_bytes=%d",
		s.Frames, s.ChecksumErrors, s.MalformedFrames, s.BytesDiscarded)
}

// Add returns the elementwise sum of two counter sets.
func (s ScanStats) Add(o ScanStats) ScanStats {
	return ScanStats{
		Frames:          s.Frames + o.Frames,
		ChecksumErrors:  s.ChecksumErrors + o.ChecksumErrors,
		MalformedFrames: s.MalformedFrames + o.MalformedFrames,
		BytesDiscarded:  s.BytesDiscarded + o.BytesDiscarded,
	}
}
