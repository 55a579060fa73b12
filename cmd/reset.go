// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the scanner",
	Long: `Send a software reset to the scanner and wait for its power-on
acknowledgement. The scanner reboots into its power-on defaults
(monitor-request mode, 9600 baud); allow a few seconds before issuing
further commands.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	dev, connInfo, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Uninitialize()

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Println("Resetting scanner...")

	if err := dev.ResetDevice(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	fmt.Println("Scanner acknowledged the reset and is rebooting")
	return nil
}
