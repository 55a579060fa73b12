// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

func TestParseScanProfile(t *testing.T) {
	values := []uint16{0, 1, 100, 4095, 8191}
	payload := scanReplyPayload(values, 9, 5)

	p, err := ParseScanProfile(payload)
	if err != nil {
		t.Fatalf("ParseScanProfile error: %v", err)
	}
	if p.Count() != len(values) {
		t.Fatalf("Count() = %d, want %d", p.Count(), len(values))
	}
	for i, v := range values {
		if p.Measurements[i] != v {
			t.Errorf("measurement[%d] = %d, want %d", i, p.Measurements[i], v)
		}
	}
	if p.TelegramIndex != 9 || p.ScanIndex != 5 {
		t.Errorf("indices = (%d, %d), want (9, 5)", p.TelegramIndex, p.ScanIndex)
	}
}

func TestParseScanProfile_MasksFlagBits(t *testing.T) {
	// Measurement words carry field flags in the upper bits; only the
	// range value may survive parsing.
	payload := []byte{telegram.ReplyValues, 0x01, 0x00}
	payload = binary.LittleEndian.AppendUint16(payload, 0xE000|123)
	payload = append(payload, 0, 0, 0, 0)

	p, err := ParseScanProfile(payload)
	if err != nil {
		t.Fatalf("ParseScanProfile error: %v", err)
	}
	if p.Measurements[0] != 123 {
		t.Errorf("measurement = %d, want 123 (flag bits masked)", p.Measurements[0])
	}
}

func TestParseScanProfile_181Measurements(t *testing.T) {
	// 180 degrees at 1 degree steps plus the closing ray.
	values := make([]uint16, 181)
	for i := range values {
		values[i] = uint16(i * 3)
	}
	p, err := ParseScanProfile(scanReplyPayload(values, 0, 0))
	if err != nil {
		t.Fatalf("ParseScanProfile error: %v", err)
	}
	if p.Count() != 181 {
		t.Fatalf("Count() = %d, want exactly 181", p.Count())
	}
	for i, v := range values {
		if p.Measurements[i] != v {
			t.Fatalf("measurement[%d] = %d, want %d", i, p.Measurements[i], v)
		}
	}
}

func TestParseScanProfile_Invalid(t *testing.T) {
	overMax := []byte{telegram.ReplyValues}
	overMax = binary.LittleEndian.AppendUint16(overMax, MaxMeasurements+1)

	truncated := []byte{telegram.ReplyValues}
	truncated = binary.LittleEndian.AppendUint16(truncated, 50)
	truncated = append(truncated, 0x01, 0x02)

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "too short", payload: []byte{telegram.ReplyValues}},
		{name: "count over maximum", payload: overMax},
		{name: "count exceeds carried bytes", payload: truncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScanProfile(tt.payload)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}
