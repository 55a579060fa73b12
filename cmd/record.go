// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lidarkit/sickpls/pkg/pls"
	"github.com/lidarkit/sickpls/pkg/scanlog"
	"github.com/lidarkit/sickpls/pkg/telegram"
)

var (
	recordOutput string
	recordCount  int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record streamed scans to a file",
	Long: `Switch the scanner to monitor stream mode and append every received
scan profile to a CBOR recording file, for later inspection with the
replay command.

Recording runs until --count scans have been captured, or until Ctrl+C
when --count is 0.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "Recording file to write (required)")
	recordCmd.Flags().IntVarP(&recordCount, "count", "n", 0, "Stop after this many scans (0 = until Ctrl+C)")
	recordCmd.MarkFlagRequired("output")
}

func runRecord(cmd *cobra.Command, args []string) error {
	out, err := os.Create(recordOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", recordOutput, err)
	}
	defer out.Close()

	dev, connInfo, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Uninitialize()

	if err := dev.SetMonitorStreamMode(); err != nil {
		return fmt.Errorf("failed to enter stream mode: %w", err)
	}

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Recording to %s, press Ctrl+C to stop\n\n", recordOutput)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	w := scanlog.NewWriter(out)
	mon := dev.Monitor()
	_, gen := mon.Latest()
	captured := 0
	for recordCount == 0 || captured < recordCount {
		select {
		case <-interrupt:
			fmt.Printf("\nRecorded %d scans\n", captured)
			return nil
		default:
		}

		frame, next, ok := mon.Wait(gen, time.Now().Add(time.Second))
		if !ok {
			continue
		}
		gen = next
		if frame.CommandCode() != telegram.ReplyValues {
			continue
		}

		profile, err := pls.ParseScanProfile(frame.Payload())
		if err != nil {
			continue
		}
		if err := w.Append(profile, frame.Timestamp()); err != nil {
			return err
		}
		captured++
		if captured%25 == 0 {
			fmt.Printf("%d scans...\n", captured)
		}
	}

	fmt.Printf("Recorded %d scans\n", captured)
	return nil
}
