package muxer

// Filter is the capability set both filter chains implement (spec.md
// §6, §9): a plain interface is enough, no inheritance between the
// video and audio chains is required.
//
// StartFrame prepares the filter to receive a new frame's bytes.
// Write forwards up to len(p) bytes of the current frame's payload.
// FlushFrame finalizes the current frame, padding as the underlying
// packetizer requires. SimulatedWrite performs the equivalent of a
// full start+write+flush cycle against the simulated byte counter only,
// without touching real output.
type Filter interface {
	StartFrame(of *OutputFrame) error
	Write(p []byte) error
	FlushFrame() error
	SimulatedWrite(of *OutputFrame)
	// SimulationSupported reports whether this filter's simulated path
	// is implemented. If any track's top filter answers false, the
	// whole muxer reports SimulationSupported() == false (spec.md §4.1).
	SimulationSupported() bool
}

// BufferFilter is the additional contract the audio chain's Buffer
// filter exposes beyond Filter (spec.md §4.5): the Muxer Core needs it
// to decide when to force a stalled audio PES out ahead of schedule.
type BufferFilter interface {
	Filter

	// BufferDTS returns the DTS of the oldest buffered frame, if any.
	BufferDTS() (dts int64, ok bool)

	// ForceFlush emits any pending PES payload regardless of target
	// size, padding as the PES rules require.
	ForceFlush() error

	// SimulatedForceFlush performs the same effect on the simulated
	// byte counter only.
	SimulatedForceFlush()
}
