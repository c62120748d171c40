package muxer

// SimulationReset rewinds the muxer's in-progress frame and every
// stream's cursor and DTS trackers back to their initial values, while
// preserving filter-chain configuration (extradata, PID, SID). This
// permits running size-simulation, then I-frame simulation, then the
// real mux against the same state (spec.md §4.8).
func (m *Muxer) SimulationReset() {
	m.active = nil
	m.activeFilter = nil
	m.frame = FrameDescriptor{}
	m.frameOffset = 0
	m.framePos = 0
	m.everStarted = false

	for _, st := range m.streams {
		st.Reset()
	}

	m.packetizer.ResetSimulation()
}
