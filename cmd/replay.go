// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lidarkit/sickpls/pkg/scanlog"
)

var replayFull bool

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Print a scan recording",
	Long: `Read a CBOR scan recording produced by the record command and print
one line per scan. With --full, every range measurement is printed.

Replay works entirely offline; no scanner connection is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayFull, "full", false, "Print every measurement, not just a summary")
}

func runReplay(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", args[0], err)
	}
	defer in.Close()

	r := scanlog.NewReader(in)
	count := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", count+1, err)
		}
		count++

		profile := rec.Profile()
		fmt.Printf("[%s] scan %d.%d telegram %d: %d measurements\n",
			rec.CapturedAt.Format("2006-01-02 15:04:05.000"),
			profile.ScanIndex, profile.PartialScanIndex,
			profile.TelegramIndex, profile.Count())

		if replayFull {
			for j, v := range profile.Measurements {
				if j%10 == 0 {
					fmt.Printf("  [%3d]", j)
				}
				fmt.Printf(" %5d", v)
				if j%10 == 9 || j == len(profile.Measurements)-1 {
					fmt.Println()
				}
			}
		}
	}

	fmt.Printf("%d scans\n", count)
	return nil
}
