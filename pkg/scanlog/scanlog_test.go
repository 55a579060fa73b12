// SPDX-License-Identifier: Apache-2.0

package scanlog

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/lidarkit/sickpls/pkg/pls"
)

func TestWriterReader_RoundTrip(t *testing.T) {
	profiles := []*pls.ScanProfile{
		{
			Measurements:     []uint16{100, 200, 300},
			TelegramIndex:    1,
			ScanIndex:        2,
			PartialScanIndex: 0,
		},
		{
			Measurements:     []uint16{4000, 0, 8191},
			TelegramIndex:    2,
			ScanIndex:        3,
			PartialScanIndex: 1,
		},
	}
	// Sub-second precision must survive the round trip.
	base := time.Date(2026, 8, 29, 10, 0, 0, 123456789, time.UTC)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i, p := range profiles {
		if err := w.Append(p, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	r := NewReader(&buf)
	for i, want := range profiles {
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("Next(%d) failed: %v", i, err)
		}
		wantAt := base.Add(time.Duration(i) * time.Second)
		if !rec.CapturedAt.Equal(wantAt) {
			t.Errorf("record %d: CapturedAt = %v, want %v", i, rec.CapturedAt, wantAt)
		}
		got := rec.Profile()
		if len(got.Measurements) != len(want.Measurements) {
			t.Fatalf("record %d: got %d measurements, want %d",
				i, len(got.Measurements), len(want.Measurements))
		}
		for j := range want.Measurements {
			if got.Measurements[j] != want.Measurements[j] {
				t.Errorf("record %d: measurement %d = %d, want %d",
					i, j, got.Measurements[j], want.Measurements[j])
			}
		}
		if got.TelegramIndex != want.TelegramIndex ||
			got.ScanIndex != want.ScanIndex ||
			got.PartialScanIndex != want.PartialScanIndex {
			t.Errorf("record %d: indices = (%d, %d, %d), want (%d, %d, %d)",
				i, got.TelegramIndex, got.ScanIndex, got.PartialScanIndex,
				want.TelegramIndex, want.ScanIndex, want.PartialScanIndex)
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() past end = %v, want io.EOF", err)
	}
}

func TestReader_TruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	p := &pls.ScanProfile{Measurements: []uint16{1, 2, 3}, TelegramIndex: 1}
	if err := w.Append(p, time.Now()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	cut := buf.Bytes()[:buf.Len()-2]
	r := NewReader(bytes.NewReader(cut))
	if _, err := r.Next(); err == nil || err == io.EOF {
		t.Errorf("Next() on truncated stream = %v, want decode error", err)
	}
}

func TestReader_EmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() on empty stream = %v, want io.EOF", err)
	}
}
