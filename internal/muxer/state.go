package muxer

import "github.com/jmylchreest/segmux/pkg/diskslice"

// StreamState is the per-track cursor and timing record the Muxer Core
// advances one frame at a time (spec.md §3). Frames and FrameOffsets
// are held in a DiskSlice so large track manifests spill to disk
// instead of being held entirely in memory.
type StreamState struct {
	MediaType       MediaType
	TrackIndex      int
	PID             uint16
	SID             uint16
	SourceTimescale int64

	Frames       *diskslice.DiskSlice[FrameDescriptor]
	FrameOffsets *diskslice.DiskSlice[int64]

	// Cursor is the index of the next frame to emit, in [0, Frames.Len()].
	Cursor int

	firstFrameTimeOffset int64
	nextFrameTimeOffset  int64
	nextFrameDTS         int64

	CC ContinuityCounter

	// TopFilter is the entry point of this track's filter chain.
	TopFilter Filter

	// AudioBuffer is the intermediate Buffer filter within the audio
	// chain, or nil for video streams (spec.md §4.4 delayed flush).
	AudioBuffer BufferFilter

	out OutputFrame
}

// NewStreamState builds a StreamState from a TrackInput, copying frame
// metadata into a DiskSlice and initializing the timing cursors to the
// track's first frame.
func NewStreamState(in TrackInput, pid, sid uint16, opts diskslice.Options) (*StreamState, error) {
	frames, err := diskslice.New[FrameDescriptor](opts)
	if err != nil {
		return nil, err
	}
	offsets, err := diskslice.New[int64](opts)
	if err != nil {
		return nil, err
	}
	if err := frames.AppendSlice(in.Frames); err != nil {
		return nil, err
	}
	if err := offsets.AppendSlice(in.FrameOffsets); err != nil {
		return nil, err
	}

	s := &StreamState{
		MediaType:            in.MediaType,
		TrackIndex:           in.TrackIndex,
		PID:                  pid,
		SID:                  sid,
		SourceTimescale:      in.SourceTimescale,
		Frames:               frames,
		FrameOffsets:         offsets,
		firstFrameTimeOffset: in.FirstFrameTimeOffset,
		nextFrameTimeOffset:  in.FirstFrameTimeOffset,
	}
	s.nextFrameDTS = Rescale(s.firstFrameTimeOffset, s.SourceTimescale, OutputTimescale)

	return s, nil
}

// Done reports whether every frame in this track has been emitted.
func (s *StreamState) Done() bool {
	return s.Cursor >= s.Frames.Len()
}

// NextDTS returns the output-timescale DTS of the next frame this
// stream would emit, used by stream selection (spec.md §4.3).
func (s *StreamState) NextDTS() int64 {
	return s.nextFrameDTS
}

// CurrentFrame returns the frame descriptor and its absolute source
// offset at the cursor.
func (s *StreamState) CurrentFrame() (FrameDescriptor, int64, error) {
	fd, err := s.Frames.Get(s.Cursor)
	if err != nil {
		return FrameDescriptor{}, 0, err
	}
	off, err := s.FrameOffsets.Get(s.Cursor)
	if err != nil {
		return FrameDescriptor{}, 0, err
	}
	return *fd, *off, nil
}

// CurrentTimeOffset returns next_frame_time_offset before this frame's
// duration has been added (spec.md §4.4 step 1, "cur_frame_time_offset").
func (s *StreamState) CurrentTimeOffset() int64 {
	return s.nextFrameTimeOffset
}

// Advance moves the cursor past the current frame and recomputes the
// next frame's output-timescale DTS (spec.md §4.4 step 1).
func (s *StreamState) Advance(fd FrameDescriptor) {
	s.Cursor++
	s.nextFrameTimeOffset += fd.Duration
	s.nextFrameDTS = Rescale(s.nextFrameTimeOffset, s.SourceTimescale, OutputTimescale)
}

// PrepareOutputFrame fills the stream's scratch OutputFrame for frame
// fd, whose source-tick time offset (captured before Advance) is
// curFrameTimeOffset, and whose DTS (captured before Advance) is
// curFrameDTS. PTS is rescaled from the *sum* of time offset and PTS
// delay in source ticks, matching spec.md §4.4 step 3 exactly rather
// than summing two independently-rounded rescales.
func (s *StreamState) PrepareOutputFrame(fd FrameDescriptor, curFrameTimeOffset, curFrameDTS int64) *OutputFrame {
	pts := Rescale(curFrameTimeOffset+fd.PTSDelay, s.SourceTimescale, OutputTimescale)

	s.out = OutputFrame{
		PID:             s.PID,
		SID:             s.SID,
		PTS:             pts,
		DTS:             curFrameDTS,
		Key:             fd.KeyFrame,
		OriginalSize:    fd.Size,
		LastStreamFrame: s.Cursor == s.Frames.Len(),
		CC:              &s.CC,
	}
	return &s.out
}

// Reset rewinds the cursor and timing state back to the track's first
// frame while preserving PID/SID and filter-chain configuration
// (spec.md §4.8 SimulationReset).
func (s *StreamState) Reset() {
	s.Cursor = 0
	s.nextFrameTimeOffset = s.firstFrameTimeOffset
	s.nextFrameDTS = Rescale(s.firstFrameTimeOffset, s.SourceTimescale, OutputTimescale)
	s.CC.Reset()
}
