// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudFlag string

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Device flags
	deviceAddress uint8

	configPath string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "sickpls",
	Short: "SICK PLS laser range-finder driver",
	Long: `sickpls - a driver and diagnostic tool for SICK PLS laser range-finders.

Talks the proprietary CRC16-framed telegram protocol over a serial line,
auto-detecting the scanner's baud rate and switching it to the requested
session rate before running the command.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 38400]
  WebSocket: --url ws://host/path [--username user]
             (serial-to-WebSocket bridge; the bridge owns the line rate,
             so baud switching is unavailable in this mode)

For WebSocket authentication, the password is read from the PLS_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().StringVarP(&baudFlag, "baud", "b", "", "Session baud rate: 9600, 19200, 38400 or 500K (default 9600)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().Uint8VarP(&deviceAddress, "address", "a", 0, "Scanner device address")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
}

// newLogger builds the CLI logger. Protocol-level chatter only shows up
// at -v and beyond; the library itself stays quiet at the default level.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.TraceLevel
	case verbosity == 1:
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
