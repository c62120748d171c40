package muxer

// FrameDescriptor is an immutable per-frame record supplied by the
// upstream MP4 parse (spec.md §3). Durations and PTS delays are in the
// track's own source timescale.
type FrameDescriptor struct {
	// Duration is the frame's duration, in source ticks.
	Duration int64 `json:"duration"`

	// PTSDelay is added to the frame's DTS to obtain its PTS. Stored so
	// that PTS >= DTS always holds, even though the conceptual B-frame
	// delay it encodes can be thought of as negative.
	PTSDelay int64 `json:"pts_delay"`

	// KeyFrame is true for IDR/sync frames.
	KeyFrame bool `json:"key_frame"`

	// Size is the frame's payload size in the source file, in bytes.
	Size int64 `json:"size"`
}

// TrackInput is the per-track metadata Init consumes to build one
// StreamState (spec.md §4.1).
type TrackInput struct {
	// MediaType selects the video or audio filter chain.
	MediaType MediaType

	// TrackIndex is the stable tie-breaker used when two streams
	// present the same next-DTS (spec.md §4.3).
	TrackIndex int

	// SourceTimescale is this track's own timescale, in ticks/second.
	SourceTimescale int64

	// Frames is the ordered list of frame descriptors for this track.
	Frames []FrameDescriptor

	// FrameOffsets is the parallel list of absolute byte offsets, one
	// per entry in Frames, giving that frame's payload location in the
	// source file.
	FrameOffsets []int64

	// FirstFrameTimeOffset is the source-tick time offset of Frames[0].
	FirstFrameTimeOffset int64

	// ExtraData is the codec extradata blob (SPS/PPS for video,
	// AudioSpecificConfig for audio) passed to the track's filter chain.
	ExtraData []byte

	// NALLengthSize is the AVCC NAL length-prefix size, in bytes, for
	// video tracks (ignored for audio).
	NALLengthSize int
}
