// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lidarkit/sickpls/pkg/pls"
)

var showErrors bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scanner's operating status",
	Long: `Request and display the scanner's operating status: scan angle,
angular resolution, motor speed, operating mode, laser state, measuring
units and the permanent baud rate configuration.

With --errors, the scanner's stored error list is fetched as well.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&showErrors, "errors", false, "Also fetch the scanner's error list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	dev, connInfo, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Uninitialize()

	fmt.Printf("Connection: %s\n\n", connInfo)

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

	overall, err := dev.GetStatus()
	if err != nil {
		return err
	}
	fmt.Printf("Device status: %s\n", overall)

	if showErrors {
		deviceErrors, err := dev.GetErrors()
		if err != nil {
			return err
		}
		if len(deviceErrors) == 0 {
			fmt.Println("Error list: empty")
		} else {
			fmt.Printf("Error list (%d entries):\n", len(deviceErrors))
			for _, e := range deviceErrors {
				fmt.Printf("  %s\n", e)
			}
		}
	}

	return nil
}
