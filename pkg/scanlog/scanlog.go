// SPDX-License-Identifier: Apache-2.0

// Package scanlog reads and writes scan recordings.
//
// A recording is a stream of CBOR-encoded records, one per scan
// profile, with integer keys to keep the files compact. Recordings are
// append-only; replaying is a plain sequential read.
package scanlog

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/lidarkit/sickpls/pkg/pls"
)

// Record is one captured scan profile plus its capture time.
type Record struct {
	CapturedAt       time.Time `cbor:"1,keyasint"`
	Measurements     []uint16  `cbor:"2,keyasint"`
	TelegramIndex    byte      `cbor:"3,keyasint"`
	ScanIndex        byte      `cbor:"4,keyasint"`
	PartialScanIndex byte      `cbor:"5,keyasint"`
}

// Profile converts the record back into a scan profile.
func (r *Record) Profile() *pls.ScanProfile {
	return &pls.ScanProfile{
		Measurements:     r.Measurements,
		TelegramIndex:    r.TelegramIndex,
		ScanIndex:        r.ScanIndex,
		PartialScanIndex: r.PartialScanIndex,
	}
}

// encMode keeps sub-second capture timestamps; the default time mode
// truncates to whole seconds.
var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Writer appends scan records to a recording stream.
type Writer struct {
	enc *cbor.Encoder
}

// NewWriter creates a writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encMode.NewEncoder(w)}
}

// Append writes one scan profile captured at the given time.
func (w *Writer) Append(p *pls.ScanProfile, capturedAt time.Time) error {
	rec := Record{
		CapturedAt:       capturedAt,
		Measurements:     p.Measurements,
		TelegramIndex:    p.TelegramIndex,
		ScanIndex:        p.ScanIndex,
		PartialScanIndex: p.PartialScanIndex,
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to append scan record: %w", err)
	}
	return nil
}

// Reader replays scan records from a recording stream.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF when the recording ends.
func (r *Reader) Next() (*Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode scan record: %w", err)
	}
	return &rec, nil
}
