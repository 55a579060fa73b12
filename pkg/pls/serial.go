// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// serialReadTimeout bounds each Read so the stream monitor can notice
// shutdown between bursts. The PLS paces bytes at wire speed, so 50 ms
// is generous.
const serialReadTimeout = 50 * time.Millisecond

// SerialTransport drives the scanner over a local serial port.
type SerialTransport struct {
	port serial.Port
}

// OpenSerial opens portName at the given baud rate with the scanner's
// fixed line settings (8 data bits, no parity, one stop bit).
func OpenSerial(portName string, baud int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	return &SerialTransport{port: port}, nil
}

func (s *SerialTransport) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialTransport) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// SetBaud reconfigures the port's line rate, keeping 8N1 framing.
func (s *SerialTransport) SetBaud(baud int) error {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if err := s.port.SetMode(mode); err != nil {
		return fmt.Errorf("failed to set line rate %d: %w", baud, err)
	}
	return nil
}

// Drain discards any bytes already queued by the OS. Used after baud
// switches, when buffered bytes were sampled at the wrong rate.
func (s *SerialTransport) Drain() error {
	return s.port.ResetInputBuffer()
}

func (s *SerialTransport) Close() error {
	return s.port.Close()
}
