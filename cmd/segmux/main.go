// Command segmux drives the muxer engine from the command line, for
// local testing and debugging against a pre-demuxed track manifest.
package main

import (
	"os"

	"github.com/jmylchreest/segmux/cmd/segmux/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
