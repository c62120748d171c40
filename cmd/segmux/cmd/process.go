package cmd

import (
	"fmt"
	"log/slog"
	"os"

	segcache "github.com/jmylchreest/segmux/internal/cache"
	"github.com/jmylchreest/segmux/internal/muxer"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	processManifestPath string
	processOutputPath   string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Mux one segment from a track manifest and source file",
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&processManifestPath, "manifest", "", "path to the segment manifest JSON (required)")
	processCmd.Flags().StringVar(&processOutputPath, "output", "", "path to write the MPEG-TS segment (default: stdout)")
	processCmd.MarkFlagRequired("manifest")
}

func runProcess(_ *cobra.Command, _ []string) error {
	runID := uuid.NewString()
	log := slog.Default().With("run_id", runID, "command", "process")

	manifest, err := loadManifest(processManifestPath)
	if err != nil {
		return err
	}
	tracks, err := manifest.trackInputs()
	if err != nil {
		return err
	}

	src, err := os.Open(manifest.SourceFile)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	out := os.Stdout
	if processOutputPath != "" {
		f, err := os.Create(processOutputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	cacheCfg := segcache.DefaultConfig()
	cacheCfg.Logger = log
	byteCache := segcache.New(cacheCfg, src)

	cfg := muxer.DefaultConfig()
	cfg.Logger = log

	m, err := muxer.New(cfg, manifest.SegmentIndex, tracks, byteCache, func(p []byte) error {
		_, err := out.Write(p)
		return err
	}, manifest.WindowStartMS, manifest.WindowEndMS)
	if err != nil {
		return fmt.Errorf("initializing muxer: %w", err)
	}

	for {
		err := m.Process()
		if err == nil {
			log.Info("segment complete")
			return nil
		}

		offset, needMore := muxer.IsNeedMoreData(err)
		if !needMore {
			return fmt.Errorf("processing segment: %w", err)
		}

		// NeedMoreData doesn't carry which stream stalled, only the
		// offset; fill every stream's slot at that offset so the
		// retry's Get hits regardless of which one actually needed it.
		for _, pid := range m.StreamPIDs() {
			if fillErr := byteCache.Fill(pid, offset); fillErr != nil {
				return fmt.Errorf("filling cache at offset %d: %w", offset, fillErr)
			}
		}
	}
}
