// SPDX-License-Identifier: Apache-2.0
//
// sickpls - SICK PLS laser range-finder driver
//
// A library and CLI for talking to SICK PLS scanners over their
// proprietary CRC16-framed serial telegram protocol.

package main

import (
	"os"

	"github.com/lidarkit/sickpls/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
