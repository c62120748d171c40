package muxer

// mockFilter is a terminal Filter recording every call it receives, used
// to test upstream filters (Buffer, ADTSFilter, AnnexBFilter) in
// isolation from the real TS packetizer.
type mockFilter struct {
	started    []*OutputFrame
	writes     [][]byte
	flushCount int

	simWrites        []*OutputFrame
	simulationOK     bool
	startFrameErr    error
	writeErr         error
	flushFrameErr    error
}

func newMockFilter() *mockFilter {
	return &mockFilter{simulationOK: true}
}

func (m *mockFilter) StartFrame(of *OutputFrame) error {
	if m.startFrameErr != nil {
		return m.startFrameErr
	}
	cp := *of
	m.started = append(m.started, &cp)
	return nil
}

func (m *mockFilter) Write(p []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	cp := append([]byte(nil), p...)
	m.writes = append(m.writes, cp)
	return nil
}

func (m *mockFilter) FlushFrame() error {
	if m.flushFrameErr != nil {
		return m.flushFrameErr
	}
	m.flushCount++
	return nil
}

func (m *mockFilter) SimulatedWrite(of *OutputFrame) {
	cp := *of
	m.simWrites = append(m.simWrites, &cp)
}

func (m *mockFilter) SimulationSupported() bool {
	return m.simulationOK
}

func (m *mockFilter) totalWritten() int {
	n := 0
	for _, w := range m.writes {
		n += len(w)
	}
	return n
}

var _ Filter = (*mockFilter)(nil)
