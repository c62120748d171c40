package muxer

// selectStream picks the stream with the smallest next_frame_dts among
// those with remaining frames, breaking ties by the streams' post-sort
// array order (spec.md §4.3). Returns nil if every stream is drained.
func (m *Muxer) selectStream() *StreamState {
	var best *StreamState
	for _, st := range m.streams {
		if st.Done() {
			continue
		}
		if best == nil || st.NextDTS() < best.NextDTS() {
			best = st
		}
	}
	return best
}
