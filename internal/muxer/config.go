package muxer

import (
	"log/slog"
	"os"

	"github.com/jmylchreest/segmux/pkg/diskslice"
)

// Config configures a Muxer, following the teacher's Config-struct
// convention (e.g. TSMuxerConfig, HLSMuxerConfig in the corpus): a
// plain struct with a Logger field and defaults applied by
// DefaultConfig, rather than functional options.
type Config struct {
	// CacheChunkSize bounds how many bytes Process forwards to a
	// filter's Write in one cache hit (spec.md §4.2).
	CacheChunkSize int64

	// DiskSliceOptions configures the DiskSlice backing each track's
	// frame list; zero value uses diskslice.DefaultOptions().
	DiskSliceOptions diskslice.Options

	// Logger receives structured diagnostics. Defaults to slog.Default()
	// if nil.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with a generous cache chunk size and
// the default disk-spill threshold.
func DefaultConfig() Config {
	return Config{
		CacheChunkSize:   64 * 1024,
		DiskSliceOptions: diskslice.DefaultOptions(),
		Logger:           slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
