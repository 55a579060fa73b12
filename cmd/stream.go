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
	"github.com/lidarkit/sickpls/pkg/telegram"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Put the scanner in stream mode and log incoming scans",
	Long: `Switch the scanner to monitor stream mode, where it emits scan
profiles continuously without being polled, and print one line per scan
as they arrive.

Press Ctrl+C to stop; the scanner is switched back to request mode on
exit.`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	dev, connInfo, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Uninitialize()

	if err := dev.SetMonitorStreamMode(); err != nil {
		return fmt.Errorf("failed to enter stream mode: %w", err)
	}

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Streaming, press Ctrl+C to stop\n\n")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	mon := dev.Monitor()
	_, gen := mon.Latest()
	count := 0
	started := time.Now()
	for {
		select {
		case <-interrupt:
			stats := mon.Stats()
			fmt.Printf("\n%d scans in %s (%s)\n",
				count, time.Since(started).Round(time.Second), stats.String())
			return nil
		default:
		}

		frame, next, ok := mon.Wait(gen, time.Now().Add(time.Second))
		if !ok {
			// Quiet seconds happen at low motor speeds; keep waiting
			continue
		}
		gen = next
		if frame.CommandCode() != telegram.ReplyValues {
			continue
		}

		profile, err := pls.ParseScanProfile(frame.Payload())
		if err != nil {
			fmt.Printf("[%s] bad scan profile: %v\n",
				time.Now().Format("15:04:05.000"), err)
			continue
		}

		count++
		line := fmt.Sprintf("[%s] scan %d.%d telegram %d: %d measurements",
			time.Now().Format("15:04:05.000"),
			profile.ScanIndex, profile.PartialScanIndex, profile.TelegramIndex,
			profile.Count())
		if profile.Count() > 0 {
			min, max := profile.Measurements[0], profile.Measurements[0]
			for _, r := range profile.Measurements[1:] {
				if r < min {
					min = r
				}
				if r > max {
					max = r
				}
			}
			line += fmt.Sprintf(", range %d..%d", min, max)
		}
		fmt.Println(line)
	}
}
