// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCount int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Request scan profiles and print the measurements",
	Long: `Poll the scanner for measured values in monitor-request mode.

Each scan profile carries up to 721 range measurements across the
scanner's field of view, printed one scan per block with the telegram
and scan counters.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVarP(&scanCount, "count", "n", 1, "Number of scans to acquire")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	dev, connInfo, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Uninitialize()

	fmt.Printf("Connection: %s\n\n", connInfo)

	angle, _ := dev.ScanAngle()
	resolution, _ := dev.ScanResolution()
	units, _ := dev.MeasuringUnits()

	for i := 0; i < scanCount; i++ {
		profile, err := dev.GetScan()
		if err != nil {
			return fmt.Errorf("scan %d failed: %w", i+1, err)
		}

		fmt.Printf("Scan %d: %d measurements (%.1f° field, %.2f° resolution, %s)\n",
			i+1, profile.Count(), angle, resolution, units)
		fmt.Printf("  telegram %d, scan %d.%d\n",
			profile.TelegramIndex, profile.ScanIndex, profile.PartialScanIndex)
		for j, r := range profile.Measurements {
			if j%10 == 0 {
				fmt.Printf("  [%3d]", j)
			}
			fmt.Printf(" %5d", r)
			if j%10 == 9 || j == len(profile.Measurements)-1 {
				fmt.Println()
			}
		}
		fmt.Println()
	}

	return nil
}
