// SPDX-License-Identifier: Apache-2.0

package pls

// Transport is the byte-level link the driver runs on. The core never
// assumes a particular device path or OS facility; anything that can
// move bytes and (optionally) change its line rate qualifies.
//
// Read must be non-blocking or short-blocking: returning (0, nil) when
// no bytes are available is expected and keeps the stream monitor
// responsive to shutdown.
type Transport interface {
	// Read fills p with any available bytes. A return of (0, nil)
	// means no data was available within the transport's short read
	// window.
	Read(p []byte) (int, error)

	// Write sends p in full.
	Write(p []byte) (int, error)

	// SetBaud changes the line rate in bits per second. Transports
	// without an adjustable line rate return ErrBaudFixed.
	SetBaud(baud int) error

	// Close tears the link down. Reads unblocked by Close report an
	// error.
	Close() error
}
