package muxer

import (
	"errors"
	"fmt"
)

// Sentinel errors for the muxer's named failure modes (spec.md §7).
var (
	// ErrAllocFailed is returned when stream-state or filter-chain
	// allocation fails during Init. No partial muxer state is returned
	// alongside it.
	ErrAllocFailed = errors.New("muxer: allocation failed")

	// ErrBadData covers truncated input and malformed filter input.
	ErrBadData = errors.New("muxer: bad data")

	// ErrNoTracks is returned by Init when the write callback is nil,
	// whatever the track list holds; an empty track list by itself is a
	// valid, if degenerate, configuration (spec.md §8: "Empty track list
	// → init succeeds"). A nil cache handle is not checked by Init.
	ErrNoTracks = errors.New("muxer: no write callback configured")

	// ErrNotInitialized is returned by Packetizer.Write when no frame has
	// been started with StartFrame.
	ErrNotInitialized = errors.New("muxer: not initialized")
)

// ErrTruncated wraps ErrBadData with the file offset at which the
// truncation was detected, so callers can log it without a second
// lookup.
type ErrTruncated struct {
	Offset int64
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("muxer: truncated file at offset %d", e.Offset)
}

func (e *ErrTruncated) Unwrap() error { return ErrBadData }

// NeedMoreData is not an error in the usual sense — it is the control
// signal spec.md §7 calls out as distinct from the four failure kinds.
// It implements the error interface so it composes with normal Go
// error handling (a caller can still `if err != nil`), but call sites
// that care about the distinction use errors.As to pull out the
// required Offset rather than treating it as a failure to surface to
// the user.
type NeedMoreData struct {
	// Offset is the absolute file offset the caller must make available
	// in the read cache before calling Process again.
	Offset int64
}

func (e *NeedMoreData) Error() string {
	return fmt.Sprintf("muxer: need more data at offset %d", e.Offset)
}

// IsNeedMoreData reports whether err is (or wraps) a NeedMoreData
// control signal, and returns the offset it carries.
func IsNeedMoreData(err error) (int64, bool) {
	var nmd *NeedMoreData
	if errors.As(err, &nmd) {
		return nmd.Offset, true
	}
	return 0, false
}
