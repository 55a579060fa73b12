// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"encoding/binary"
	"fmt"
)

// MaxMeasurements is the most range values a single scan profile can
// carry (180 degrees at 0.25 degree interlaced resolution).
const MaxMeasurements = 721

// measurementMask strips the flag bits from a raw 16-bit measurement
// word, leaving the range value.
const measurementMask = 0x1FFF

// scanCountMask extracts the measurement count from the first word of a
// scan profile payload; the upper bits are partial-scan flags.
const scanCountMask = 0x03FF

// ScanProfile is one complete sweep: the measured range (or
// reflectivity, depending on mode) values in angular order, plus the
// index counters used to detect dropped or out-of-order scans.
type ScanProfile struct {
	// Measurements holds exactly the values the device reported;
	// index corresponds to angular position.
	Measurements []uint16
	// TelegramIndex counts reply telegrams modulo 256.
	TelegramIndex byte
	// ScanIndex counts device sweeps modulo 256.
	ScanIndex byte
	// PartialScanIndex indicates the start angle of a partial scan.
	PartialScanIndex byte
}

// Count returns the number of measurements in the profile.
func (p *ScanProfile) Count() int {
	return len(p.Measurements)
}

// ParseScanProfile populates a ScanProfile from a scan reply payload:
// code byte, 2-byte count word, count 16-bit measurement words, three
// index bytes, status byte — all little-endian.
//
// A reply whose declared count does not fit its actual length, or
// exceeds MaxMeasurements, fails with ConfigError; a profile with a
// fabricated count is never returned.
func ParseScanProfile(payload []byte) (*ScanProfile, error) {
	if len(payload) < 3 {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("scan reply payload too short: %d bytes", len(payload)),
		}
	}

	count := int(binary.LittleEndian.Uint16(payload[1:3]) & scanCountMask)
	if count > MaxMeasurements {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("scan reply declares %d measurements, maximum is %d", count, MaxMeasurements),
		}
	}

	// code + count word + measurements + telegram/scan/partial indices + status
	need := 3 + 2*count + 3 + 1
	if len(payload) < need {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("scan reply declares %d measurements but carries %d bytes, need %d", count, len(payload), need),
		}
	}

	p := &ScanProfile{Measurements: make([]uint16, count)}
	for i := 0; i < count; i++ {
		raw := binary.LittleEndian.Uint16(payload[3+2*i:])
		p.Measurements[i] = raw & measurementMask
	}
	idx := 3 + 2*count
	p.TelegramIndex = payload[idx]
	p.ScanIndex = payload[idx+1]
	p.PartialScanIndex = payload[idx+2]
	return p, nil
}
