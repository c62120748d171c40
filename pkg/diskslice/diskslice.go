// Package diskslice provides an ordered sequence that behaves like a
// normal Go slice for small track frame lists but transparently spills
// to a temp file once a memory budget is exceeded.
//
// segmux uses it for two things that are usually small but occasionally
// are not: a track's frame descriptor list (one entry per decoded
// access unit) and its parallel byte-offset list. A short clip stays
// entirely in memory; a multi-hour VOD recording spills without the
// caller having to decide up front.
package diskslice

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Options configures a DiskSlice.
type Options struct {
	// MemoryThreshold is the byte budget before spilling to disk.
	MemoryThreshold int64

	// TempDir is the directory for temporary files.
	// Default: os.TempDir()
	TempDir string

	// EstimatedItemSize is the estimated size in bytes per item, used to
	// predict when to spill without measuring actual encoded size.
	EstimatedItemSize int

	// Name is used in the temp file name, for easier debugging when
	// several disk slices are spilled at once (one per track).
	Name string
}

// DefaultOptions returns sensible defaults for a track's frame list: a
// frame descriptor is a handful of int64/bool fields, so 64 bytes is a
// generous per-item estimate, and 64MB in memory covers several hours
// of 30fps video before spilling.
func DefaultOptions() Options {
	return Options{
		MemoryThreshold:   64 * 1024 * 1024,
		TempDir:           os.TempDir(),
		EstimatedItemSize: 64,
		Name:              "diskslice",
	}
}

// DiskSlice is a generic ordered sequence that transparently overflows
// to disk. It stores items in memory until MemoryThreshold is exceeded,
// then spills all items to a disk-backed JSON-lines file.
//
// Type T must be JSON-serializable for disk storage.
type DiskSlice[T any] struct {
	opts Options

	mu sync.RWMutex

	// In-memory storage (used when under threshold)
	memItems []T

	// Disk storage state
	spilled   bool
	diskFile  *os.File
	diskPath  string
	offsets   []int64 // byte offsets for each record in file
	diskCount int     // number of items on disk

	// Memory tracking
	estimatedBytes int64
}

// New creates a new DiskSlice with the given options.
func New[T any](opts Options) (*DiskSlice[T], error) {
	if opts.MemoryThreshold <= 0 {
		opts.MemoryThreshold = DefaultOptions().MemoryThreshold
	}
	if opts.TempDir == "" {
		opts.TempDir = DefaultOptions().TempDir
	}
	if opts.EstimatedItemSize <= 0 {
		opts.EstimatedItemSize = DefaultOptions().EstimatedItemSize
	}
	if opts.Name == "" {
		opts.Name = DefaultOptions().Name
	}

	return &DiskSlice[T]{
		opts:     opts,
		memItems: make([]T, 0, 64),
	}, nil
}

// NewWithDefaults creates a DiskSlice with default options.
func NewWithDefaults[T any]() (*DiskSlice[T], error) {
	return New[T](DefaultOptions())
}

// Append adds an item to the slice.
// If the memory threshold is exceeded, all items are spilled to disk.
func (ds *DiskSlice[T]) Append(item T) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.spilled {
		return ds.appendToDisk(item)
	}

	ds.memItems = append(ds.memItems, item)
	ds.estimatedBytes += int64(ds.opts.EstimatedItemSize)

	if ds.estimatedBytes >= ds.opts.MemoryThreshold {
		if err := ds.spillToDisk(); err != nil {
			return fmt.Errorf("spilling to disk: %w", err)
		}
	}

	return nil
}

// AppendSlice appends all items from a slice, in order.
func (ds *DiskSlice[T]) AppendSlice(items []T) error {
	for i := range items {
		if err := ds.Append(items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of items in the slice.
func (ds *DiskSlice[T]) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.spilled {
		return ds.diskCount
	}
	return len(ds.memItems)
}

// Get retrieves an item by index.
func (ds *DiskSlice[T]) Get(index int) (*T, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.spilled {
		return ds.getFromDisk(index)
	}

	if index < 0 || index >= len(ds.memItems) {
		return nil, fmt.Errorf("index %d out of bounds (len=%d)", index, len(ds.memItems))
	}

	return &ds.memItems[index], nil
}

// For iterates over all items, calling fn for each.
// If fn returns false, iteration stops.
func (ds *DiskSlice[T]) For(fn func(index int, item *T) bool) error {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.spilled {
		return ds.forDisk(fn)
	}

	for i := range ds.memItems {
		if !fn(i, &ds.memItems[i]) {
			break
		}
	}
	return nil
}

// IsSpilled returns true if the slice has been spilled to disk.
func (ds *DiskSlice[T]) IsSpilled() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.spilled
}

// Close releases resources associated with the disk slice. Safe to call
// even if the slice never spilled.
func (ds *DiskSlice[T]) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.diskFile != nil {
		ds.diskFile.Close()
		ds.diskFile = nil
	}

	if ds.diskPath != "" {
		os.Remove(ds.diskPath)
		ds.diskPath = ""
	}

	ds.memItems = nil
	ds.offsets = nil

	return nil
}

// spillToDisk writes all in-memory items to a temporary file.
func (ds *DiskSlice[T]) spillToDisk() error {
	f, err := os.CreateTemp(ds.opts.TempDir, ds.opts.Name+"-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	ds.diskFile = f
	ds.diskPath = f.Name()
	ds.offsets = make([]int64, 0, len(ds.memItems))

	encoder := json.NewEncoder(f)
	for i := range ds.memItems {
		offset, _ := f.Seek(0, io.SeekCurrent)
		ds.offsets = append(ds.offsets, offset)

		if err := encoder.Encode(&ds.memItems[i]); err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}
	}

	ds.diskCount = len(ds.memItems)
	ds.spilled = true

	ds.memItems = nil
	ds.estimatedBytes = 0

	return nil
}

// appendToDisk appends a single item to the disk file.
func (ds *DiskSlice[T]) appendToDisk(item T) error {
	offset, _ := ds.diskFile.Seek(0, io.SeekEnd)
	ds.offsets = append(ds.offsets, offset)

	encoder := json.NewEncoder(ds.diskFile)
	if err := encoder.Encode(&item); err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}

	ds.diskCount++
	return nil
}

// getFromDisk retrieves a single item from the disk file.
func (ds *DiskSlice[T]) getFromDisk(index int) (*T, error) {
	if index < 0 || index >= ds.diskCount {
		return nil, fmt.Errorf("index %d out of bounds (len=%d)", index, ds.diskCount)
	}

	offset := ds.offsets[index]
	if _, err := ds.diskFile.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to offset %d: %w", offset, err)
	}

	decoder := json.NewDecoder(ds.diskFile)
	var item T
	if err := decoder.Decode(&item); err != nil {
		return nil, fmt.Errorf("decoding item at offset %d: %w", offset, err)
	}

	return &item, nil
}

// forDisk iterates over all disk items in order.
func (ds *DiskSlice[T]) forDisk(fn func(index int, item *T) bool) error {
	if _, err := ds.diskFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to start: %w", err)
	}

	decoder := json.NewDecoder(ds.diskFile)
	for i := 0; i < ds.diskCount; i++ {
		var item T
		if err := decoder.Decode(&item); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("decoding item %d: %w", i, err)
		}

		if !fn(i, &item) {
			break
		}
	}

	return nil
}
