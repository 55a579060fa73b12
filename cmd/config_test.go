// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lidarkit/sickpls/pkg/pls"
)

// resetFlags clears the package-level flag state around a test.
func resetFlags(t *testing.T) {
	t.Helper()
	savedPort, savedBaud, savedURL := portName, baudFlag, wsURL
	savedUser, savedAddr, savedConfig := wsUsername, deviceAddress, configPath
	t.Cleanup(func() {
		portName, baudFlag, wsURL = savedPort, savedBaud, savedURL
		wsUsername, deviceAddress, configPath = savedUser, savedAddr, savedConfig
	})
	portName, baudFlag, wsURL = "", "", ""
	wsUsername, deviceAddress, configPath = "", 0, ""
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sickpls.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	resetFlags(t)
	portName = "/dev/ttyUSB0"

	s, err := loadSettings(zerolog.Nop())
	if err != nil {
		t.Fatalf("loadSettings error: %v", err)
	}
	if s.port != "/dev/ttyUSB0" {
		t.Errorf("port = %q, want /dev/ttyUSB0", s.port)
	}
	if s.baud != pls.DefaultBaud {
		t.Errorf("baud = %v, want default %v", s.baud, pls.DefaultBaud)
	}
}

func TestLoadSettings_FileMerge(t *testing.T) {
	resetFlags(t)
	configPath = writeConfig(t, `
port = "/dev/ttyS1"
baud = "38400"
address = 1
tries = 5
message_timeout = "500ms"
mode_switch_timeout = "30s"
`)

	s, err := loadSettings(zerolog.Nop())
	if err != nil {
		t.Fatalf("loadSettings error: %v", err)
	}
	if s.port != "/dev/ttyS1" {
		t.Errorf("port = %q, want /dev/ttyS1", s.port)
	}
	if s.baud != pls.Baud38400 {
		t.Errorf("baud = %v, want 38400", s.baud)
	}
	if s.engine.DeviceAddress != 1 {
		t.Errorf("device address = %d, want 1", s.engine.DeviceAddress)
	}
	if s.engine.Tries != 5 {
		t.Errorf("tries = %d, want 5", s.engine.Tries)
	}
	if s.engine.MessageTimeout != 500*time.Millisecond {
		t.Errorf("message timeout = %v, want 500ms", s.engine.MessageTimeout)
	}
	if s.engine.ModeSwitchTimeout != 30*time.Second {
		t.Errorf("mode switch timeout = %v, want 30s", s.engine.ModeSwitchTimeout)
	}
}

func TestLoadSettings_FlagsWinOverFile(t *testing.T) {
	resetFlags(t)
	configPath = writeConfig(t, `
port = "/dev/ttyS1"
baud = "38400"
`)
	portName = "/dev/ttyUSB7"
	baudFlag = "500K"

	s, err := loadSettings(zerolog.Nop())
	if err != nil {
		t.Fatalf("loadSettings error: %v", err)
	}
	if s.port != "/dev/ttyUSB7" {
		t.Errorf("port = %q, want flag value /dev/ttyUSB7", s.port)
	}
	if s.baud != pls.Baud500K {
		t.Errorf("baud = %v, want 500K", s.baud)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		baud string
	}{
		{name: "bad baud flag", baud: "12345"},
		{name: "bad baud in file", toml: `baud = "7"`},
		{name: "bad duration", toml: `probe_timeout = "fast"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			if tt.toml != "" {
				configPath = writeConfig(t, tt.toml)
			}
			baudFlag = tt.baud

			if _, err := loadSettings(zerolog.Nop()); err == nil {
				t.Error("loadSettings accepted invalid input")
			}
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	resetFlags(t)
	configPath = filepath.Join(t.TempDir(), "absent.toml")

	if _, err := loadSettings(zerolog.Nop()); err == nil {
		t.Error("loadSettings succeeded with a missing config file")
	}
}
