// SPDX-License-Identifier: Apache-2.0

package pls

import "fmt"

// String formats the device status for display.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// String names the operating mode as the telegram manual does.
func (m OperatingMode) String() string {
	switch m {
	case ModeInstallation:
		return "INSTALLATION"
	case ModeDiagnostic:
		return "DIAGNOSTIC"
	case ModeMonitorStream:
		return "MONITOR_STREAM"
	case ModeMonitorRequest:
		return "MONITOR_REQUEST"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(m))
	}
}

// String names the measuring units.
func (u MeasuringUnits) String() string {
	switch u {
	case UnitsCM:
		return "cm"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(u))
	}
}

// String formats one device error list entry.
func (e DeviceError) String() string {
	return fmt.Sprintf("type=0x%02X number=0x%02X", e.Type, e.Number)
}

// FormatOperatingStatus renders a status snapshot as a multi-line,
// human-readable block for the CLI.
func FormatOperatingStatus(s DeviceOperatingStatus) string {
	laser := "off"
	if s.LaserOn {
		laser = "on"
	}
	return fmt.Sprintf(
		"Status:           %s\n"+
			"Operating mode:   %s\n"+
			"Scan angle:       %d deg\n"+
			"Scan resolution:  %.2f deg\n"+
			"Motor revs:       %d\n"+
			"Laser:            %s\n"+
			"Measuring units:  %s\n"+
			"Device address:   0x%02X\n",
		s.Status, s.OperatingMode, s.ScanAngle,
		float64(s.ScanResolution)/100.0, s.NumMotorRevs,
		laser, s.Units, s.Address)
}

// FormatBaudStatus renders a baud status snapshot for the CLI.
func FormatBaudStatus(s BaudStatus) string {
	persistence := "power-on default (reverts to 9600)"
	if s.Permanent {
		persistence = "permanent"
	}
	return fmt.Sprintf("Baud rate:   %s\nPersistence: %s\n", s.Rate, persistence)
}
