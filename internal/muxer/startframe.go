package muxer

// beginFrame executes spec.md §4.4 for the chosen stream/frame pair:
// advances cursors, performs the delayed-buffer flush against every
// other stream's audio Buffer, prepares the OutputFrame, and invokes
// StartFrame on the active filter chain.
func (m *Muxer) beginFrame(st *StreamState) error {
	fd, offset, err := st.CurrentFrame()
	if err != nil {
		return err
	}

	curFrameTimeOffset := st.CurrentTimeOffset()
	curFrameDTS := st.NextDTS()
	st.Advance(fd)

	for _, other := range m.streams {
		if other == st || other.AudioBuffer == nil {
			continue
		}
		if dts, ok := other.AudioBuffer.BufferDTS(); ok {
			if curFrameDTS > dts+HLSDelay/2 {
				if err := other.AudioBuffer.ForceFlush(); err != nil {
					return err
				}
			}
		}
	}

	of := st.PrepareOutputFrame(fd, curFrameTimeOffset, curFrameDTS)

	m.active = st
	m.activeFilter = st.TopFilter
	m.frame = fd
	m.frameOffset = offset
	m.framePos = 0

	return m.activeFilter.StartFrame(of)
}

// beginSimulatedFrame mirrors beginFrame against the simulated byte
// counters only, without touching the active in-progress frame state
// (spec.md §4.6, §4.7).
func (m *Muxer) beginSimulatedFrame(st *StreamState) {
	fd, _, err := st.CurrentFrame()
	if err != nil {
		return
	}

	curFrameTimeOffset := st.CurrentTimeOffset()
	curFrameDTS := st.NextDTS()
	st.Advance(fd)

	for _, other := range m.streams {
		if other == st || other.AudioBuffer == nil {
			continue
		}
		if dts, ok := other.AudioBuffer.BufferDTS(); ok {
			if curFrameDTS > dts+HLSDelay/2 {
				other.AudioBuffer.SimulatedForceFlush()
			}
		}
	}

	of := st.PrepareOutputFrame(fd, curFrameTimeOffset, curFrameDTS)
	st.TopFilter.SimulatedWrite(of)
}
