// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/lidarkit/sickpls/pkg/pls"
)

// fileConfig mirrors the persistent flags in TOML form. Flags given on
// the command line win over file values.
type fileConfig struct {
	Port     string `toml:"port"`
	Baud     string `toml:"baud"`
	URL      string `toml:"url"`
	Username string `toml:"username"`

	Address  uint8  `toml:"address"`
	Password string `toml:"password"`

	MessageTimeout    string `toml:"message_timeout"`
	ModeSwitchTimeout string `toml:"mode_switch_timeout"`
	ProbeTimeout      string `toml:"probe_timeout"`
	Tries             int    `toml:"tries"`
}

// settings is the merged flag + file view consumed by the commands.
type settings struct {
	port     string
	baud     pls.Baud
	url      string
	username string

	engine pls.Config
}

func parseTimeout(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", name, value, err)
	}
	return d, nil
}

// loadSettings merges the config file (if any) under the persistent
// flags and resolves the session baud rate.
func loadSettings(logger zerolog.Logger) (*settings, error) {
	var fc fileConfig
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, &fc); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %v", configPath, err)
		}
	}

	s := &settings{
		port:     portName,
		url:      wsURL,
		username: wsUsername,
	}
	if s.port == "" {
		s.port = fc.Port
	}
	if s.url == "" {
		s.url = fc.URL
	}
	if s.username == "" {
		s.username = fc.Username
	}

	baudStr := baudFlag
	if baudStr == "" {
		baudStr = fc.Baud
	}
	if baudStr == "" {
		s.baud = pls.DefaultBaud
	} else {
		b, err := pls.ParseBaud(baudStr)
		if err != nil {
			return nil, err
		}
		s.baud = b
	}

	addr := deviceAddress
	if addr == 0 {
		addr = fc.Address
	}

	msgTimeout, err := parseTimeout("message_timeout", fc.MessageTimeout)
	if err != nil {
		return nil, err
	}
	modeTimeout, err := parseTimeout("mode_switch_timeout", fc.ModeSwitchTimeout)
	if err != nil {
		return nil, err
	}
	probeTimeout, err := parseTimeout("probe_timeout", fc.ProbeTimeout)
	if err != nil {
		return nil, err
	}

	s.engine = pls.Config{
		DeviceAddress:     addr,
		Password:          fc.Password,
		MessageTimeout:    msgTimeout,
		ModeSwitchTimeout: modeTimeout,
		ProbeTimeout:      probeTimeout,
		Tries:             fc.Tries,
		Logger:            logger,
	}
	return s, nil
}
