// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lidarkit/sickpls/pkg/pls"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Probe the scanner's current baud rate",
	Long: `Walk the candidate baud rates (9600, 19200, 38400, 500K) until the
scanner answers a status request, then report the detected rate and the
scanner's operating configuration.

The session runs at the detected rate; on exit the scanner is restored
to its power-on defaults like every other command.`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	s, err := loadSettings(logger)
	if err != nil {
		return err
	}

	transport, connInfo, err := openTransport(s)
	if err != nil {
		return err
	}

	dev := pls.NewDevice(transport, s.engine)
	// Probe only, no session baud switch
	if err := dev.Initialize(0); err != nil {
		dev.Uninitialize()
		return fmt.Errorf("no scanner detected: %w", err)
	}
	defer dev.Uninitialize()

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Detected baud rate: %s\n\n", dev.SessionBaud())

	status, err := dev.GetOperatingStatus()
	if err != nil {
		return err
	}
	fmt.Print(pls.FormatOperatingStatus(status))

	baudStatus, err := dev.GetBaudStatus()
	if err != nil {
		return err
	}
	fmt.Print(pls.FormatBaudStatus(baudStatus))

	return nil
}
