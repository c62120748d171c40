package muxer

// Process runs the muxer until either every stream is drained and the
// output has been flushed, or the next needed byte is missing from the
// cache, in which case it returns a *NeedMoreData error carrying the
// file offset the caller must make available before calling Process
// again (spec.md §4.2).
func (m *Muxer) Process() error {
	// firstTime is true exactly when no frame was still in progress as
	// this call began — true for the very first call ever, and never
	// again afterwards, since a frame only goes back to nil once every
	// stream has fully drained (spec.md §9 open question).
	//
	// wroteData is scoped to the whole call, not to whichever frame is
	// currently being read: it is declared once, here, and only ever set
	// true, so a miss on frame B's very first read still sees wroteData
	// == true if frame A already wrote bytes earlier in this same call.
	firstTime := m.active == nil && !m.everStarted
	wroteData := false

	for {
		if m.active == nil {
			st := m.selectStream()
			if st == nil {
				return m.drain()
			}
			if err := m.beginFrame(st); err != nil {
				return err
			}
			m.everStarted = true
		}

		for m.framePos < m.frame.Size {
			data, ok := m.cache.Get(m.active.PID, m.frameOffset+m.framePos, int(m.cfg.CacheChunkSize))
			if !ok {
				if !wroteData && !firstTime {
					return &ErrTruncated{Offset: m.frameOffset + m.framePos}
				}
				return &NeedMoreData{Offset: m.frameOffset + m.framePos}
			}

			n := int64(len(data))
			if remaining := m.frame.Size - m.framePos; n > remaining {
				n = remaining
				data = data[:n]
			}

			if err := m.activeFilter.Write(data); err != nil {
				return err
			}
			m.framePos += n
			wroteData = true
		}

		if err := m.activeFilter.FlushFrame(); err != nil {
			return err
		}
		m.active = nil
		m.activeFilter = nil
	}
}

func (m *Muxer) drain() error {
	for _, st := range m.streams {
		if st.AudioBuffer != nil {
			if err := st.AudioBuffer.ForceFlush(); err != nil {
				return err
			}
		}
	}
	return m.packetizer.Flush()
}
