package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmylchreest/segmux/internal/muxer"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var simSizeManifestPath string

var simSizeCmd = &cobra.Command{
	Use:   "simulate-size",
	Short: "Report the exact byte length a real mux of this manifest would produce",
	RunE:  runSimSize,
}

func init() {
	rootCmd.AddCommand(simSizeCmd)
	simSizeCmd.Flags().StringVar(&simSizeManifestPath, "manifest", "", "path to the segment manifest JSON (required)")
	simSizeCmd.MarkFlagRequired("manifest")
}

func runSimSize(_ *cobra.Command, _ []string) error {
	runID := uuid.NewString()
	log := slog.Default().With("run_id", runID, "command", "simulate-size")

	manifest, err := loadManifest(simSizeManifestPath)
	if err != nil {
		return err
	}
	tracks, err := manifest.trackInputs()
	if err != nil {
		return err
	}

	cfg := muxer.DefaultConfig()
	cfg.Logger = log

	m, err := muxer.New(cfg, manifest.SegmentIndex, tracks, nil, func([]byte) error { return nil },
		manifest.WindowStartMS, manifest.WindowEndMS)
	if err != nil {
		return fmt.Errorf("initializing muxer: %w", err)
	}

	size, err := m.SimulateGetSegmentSize()
	if err != nil {
		return fmt.Errorf("simulating segment size: %w", err)
	}

	fmt.Fprintln(os.Stdout, size)
	return nil
}
