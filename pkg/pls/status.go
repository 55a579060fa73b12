// SPDX-License-Identifier: Apache-2.0

package pls

import (
	"encoding/binary"
	"fmt"

	"github.com/lidarkit/sickpls/pkg/telegram"
)

// Status is the device's coarse health state as reported by the status
// byte of its replies.
type Status int

const (
	StatusOK      Status = 0x00
	StatusError   Status = 0x01
	StatusUnknown Status = 0xFF
)

// OperatingMode is the device-side functional state. The values mirror
// the mode bytes carried by mode-switch telegrams.
type OperatingMode byte

const (
	ModeInstallation   OperatingMode = telegram.OpModeInstallation
	ModeDiagnostic     OperatingMode = telegram.OpModeDiagnostic
	ModeMonitorStream  OperatingMode = telegram.OpModeMonitorStream
	ModeMonitorRequest OperatingMode = telegram.OpModeMonitorRequest
	ModeUnknown        OperatingMode = 0xFF
)

// MeasuringUnits is the unit of the range values in a scan profile.
// The PLS measures in centimeters only.
type MeasuringUnits byte

const (
	UnitsCM      MeasuringUnits = 0x00
	UnitsUnknown MeasuringUnits = 0xFF
)

// DeviceOperatingStatus is one snapshot of the device configuration,
// parsed from a status reply. It is replaced wholesale on each refresh,
// never partially mutated.
type DeviceOperatingStatus struct {
	ScanAngle      uint16 // degrees
	ScanResolution uint16 // hundredths of a degree
	NumMotorRevs   uint16
	OperatingMode  OperatingMode
	LaserOn        bool
	Units          MeasuringUnits
	Address        byte
	Status         Status
}

// Fixed offsets of the fields within a status reply payload (command
// code at offset 0, device status byte last).
const (
	statusOffScanAngle  = 1
	statusOffResolution = 3
	statusOffMotorRevs  = 5
	statusOffOpMode     = 7
	statusOffLaser      = 8
	statusOffUnits      = 9
	statusOffAddress    = 10
	statusPayloadMinLen = 12
)

// ParseOperatingStatus populates a DeviceOperatingStatus from a status
// reply payload. Fails with ConfigError if the payload is too short to
// carry the fixed layout.
func ParseOperatingStatus(payload []byte) (DeviceOperatingStatus, error) {
	if len(payload) < statusPayloadMinLen {
		return DeviceOperatingStatus{}, &ConfigError{
			Reason: fmt.Sprintf("status reply payload too short: %d bytes, need %d", len(payload), statusPayloadMinLen),
		}
	}

	s := DeviceOperatingStatus{
		ScanAngle:      binary.LittleEndian.Uint16(payload[statusOffScanAngle:]),
		ScanResolution: binary.LittleEndian.Uint16(payload[statusOffResolution:]),
		NumMotorRevs:   binary.LittleEndian.Uint16(payload[statusOffMotorRevs:]),
		OperatingMode:  OperatingMode(payload[statusOffOpMode]),
		LaserOn:        payload[statusOffLaser] != 0,
		Units:          MeasuringUnits(payload[statusOffUnits]),
		Address:        payload[statusOffAddress],
	}
	switch payload[len(payload)-1] {
	case 0x00:
		s.Status = StatusOK
	case 0x01:
		s.Status = StatusError
	default:
		s.Status = StatusUnknown
	}
	return s, nil
}

// BaudStatus is the device's reported line-rate configuration.
type BaudStatus struct {
	Rate Baud
	// Permanent reports whether the configured rate survives power
	// cycles. When false the device reverts to 9600 on power-up.
	Permanent bool
}

// ParseBaudStatus populates a BaudStatus from a baud status reply
// payload: code byte, 2-byte little-endian baud code, permanence flag,
// status byte.
func ParseBaudStatus(payload []byte) (BaudStatus, error) {
	if len(payload) < 5 {
		return BaudStatus{}, &ConfigError{
			Reason: fmt.Sprintf("baud status reply payload too short: %d bytes, need 5", len(payload)),
		}
	}

	code := binary.LittleEndian.Uint16(payload[1:3])
	rate, ok := BaudFromCode(byte(code))
	if !ok {
		return BaudStatus{}, &ConfigError{
			Reason: fmt.Sprintf("device reported unknown baud code 0x%04X", code),
		}
	}
	return BaudStatus{
		Rate:      rate,
		Permanent: payload[3] != 0,
	}, nil
}

// DeviceError is one entry of the device's error list.
type DeviceError struct {
	Type   byte
	Number byte
}

// ParseErrorList extracts (type, number) pairs from an error reply
// payload: code byte, pairs, status byte.
func ParseErrorList(payload []byte) ([]DeviceError, error) {
	if len(payload) < 2 {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("error reply payload too short: %d bytes", len(payload)),
		}
	}
	pairs := payload[1 : len(payload)-1]
	if len(pairs)%2 != 0 {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("error reply carries %d bytes of entries, not an even count", len(pairs)),
		}
	}

	errs := make([]DeviceError, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		errs = append(errs, DeviceError{Type: pairs[i], Number: pairs[i+1]})
	}
	return errs, nil
}
