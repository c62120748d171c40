// Package cache provides a read-ahead byte cache over an io.ReaderAt,
// partitioned by slot, implementing the muxer's Cache contract
// (spec.md §6).
//
// Grounded on the teacher's Config+mutex-guarded-struct convention
// (MPEGTSProcessor, MPEGTSProcessorConfig in processor_mpegts.go): a
// Config struct with a Logger field, a struct with an RWMutex guarding
// per-slot state, and a constructor that applies defaults.
package cache

import (
	"io"
	"log/slog"
	"sync"
)

// Config configures a Cache.
type Config struct {
	// WindowSize is how many bytes each Fill call reads ahead past the
	// requested offset.
	WindowSize int64

	// Logger receives structured diagnostics. Defaults to slog.Default()
	// if nil.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with a 256KB read-ahead window.
func DefaultConfig() Config {
	return Config{WindowSize: 256 * 1024}
}

type window struct {
	offset int64
	data   []byte
}

// Cache is a read-ahead byte cache over an io.ReaderAt, with one
// independent prefetch window per slot ID (the muxer uses PID as
// slot). It implements muxer.Cache.
type Cache struct {
	cfg    Config
	log    *slog.Logger
	source io.ReaderAt

	mu      sync.RWMutex
	windows map[uint16]*window
}

// New constructs a Cache reading from source.
func New(cfg Config, source io.ReaderAt) *Cache {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Cache{
		cfg:     cfg,
		log:     log,
		source:  source,
		windows: make(map[uint16]*window),
	}
}

// Get implements muxer.Cache: it returns a contiguous byte window
// starting at fileOffset if the slot's current read-ahead window
// already covers it, otherwise reports a miss.
func (c *Cache) Get(slotID uint16, fileOffset int64, maxLen int) ([]byte, bool) {
	c.mu.RLock()
	w, ok := c.windows[slotID]
	c.mu.RUnlock()

	if !ok || fileOffset < w.offset || fileOffset >= w.offset+int64(len(w.data)) {
		return nil, false
	}

	start := fileOffset - w.offset
	end := int64(len(w.data))
	if maxLen > 0 && start+int64(maxLen) < end {
		end = start + int64(maxLen)
	}
	return w.data[start:end], true
}

// Fill reads WindowSize bytes starting at fileOffset into the given
// slot's window, making them available to subsequent Get calls. The
// caller invokes this after a NeedMoreData offset, then retries
// Process.
func (c *Cache) Fill(slotID uint16, fileOffset int64) error {
	buf := make([]byte, c.cfg.WindowSize)
	n, err := c.source.ReadAt(buf, fileOffset)
	if n == 0 && err != nil && err != io.EOF {
		return err
	}

	c.mu.Lock()
	c.windows[slotID] = &window{offset: fileOffset, data: buf[:n]}
	c.mu.Unlock()

	c.log.Debug("cache window filled", "slot_id", slotID, "offset", fileOffset, "bytes", n)
	return nil
}

// Invalidate drops the read-ahead window for a slot, for reuse across
// unrelated segments.
func (c *Cache) Invalidate(slotID uint16) {
	c.mu.Lock()
	delete(c.windows, slotID)
	c.mu.Unlock()
}
