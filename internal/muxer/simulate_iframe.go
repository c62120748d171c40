package muxer

// KeyframeCallback reports one discovered keyframe's segment placement
// (spec.md §4.7): segmentIndex is 1-based, durationMS is how long this
// keyframe's GOP spans, byteOffset/byteSize locate it within that
// segment's byte stream.
type KeyframeCallback func(segmentIndex int, durationMS int64, byteOffset int64, byteSize int64)

// SimulateGetIFrames walks every stream's frames in the same
// minimum-DTS order as Process, without performing I/O, and reports
// each video keyframe's segment index and byte extent via cb
// (spec.md §4.7). segmentDurationMS is the target duration of each
// discovered segment boundary.
func (m *Muxer) SimulateGetIFrames(segmentDurationMS int64, cb KeyframeCallback) error {
	if !m.simulationOK {
		return ErrBadData
	}

	m.packetizer.StartSimulatedSegment()

	segmentIndex := 1
	segmentEndDTS := segmentDurationMS * 90

	var pending struct {
		have         bool
		start, size  int64
		timeMS       int64
		segmentIndex int
	}
	var firstFrameTimeMS int64
	haveFirstFrameTime := false

	for {
		st := m.selectStream()
		if st == nil {
			break
		}

		curFrameDTS := st.NextDTS()
		fd, _, err := st.CurrentFrame()
		if err != nil {
			return err
		}
		curFrameTimeOffset := st.CurrentTimeOffset()
		st.Advance(fd)

		if curFrameDTS >= segmentEndDTS {
			for _, s := range m.streams {
				if s.AudioBuffer != nil {
					s.AudioBuffer.SimulatedForceFlush()
				}
			}
			m.packetizer.StartSimulatedSegment()
			segmentIndex++
			segmentEndDTS += segmentDurationMS * 90
		}

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

		curFrameStart := m.packetizer.SimulatedOffset()

		of := st.PrepareOutputFrame(fd, curFrameTimeOffset, curFrameDTS)
		if st.Done() || st.NextDTS() >= segmentEndDTS {
			of.LastStreamFrame = true
		}
		st.TopFilter.SimulatedWrite(of)

		postWriteOffset := m.packetizer.SimulatedOffset()

		if st.MediaType == MediaTypeVideo && fd.KeyFrame {
			frameTimeMS := Rescale(curFrameTimeOffset+fd.PTSDelay, st.SourceTimescale, 1000)

			if pending.have {
				cb(pending.segmentIndex, frameTimeMS-pending.timeMS, pending.start, pending.size)
			}

			pending.have = true
			pending.start = curFrameStart
			pending.size = postWriteOffset - curFrameStart
			pending.timeMS = frameTimeMS
			pending.segmentIndex = segmentIndex

			if !haveFirstFrameTime {
				firstFrameTimeMS = frameTimeMS
				haveFirstFrameTime = true
			}
		}
	}

	endTimeMS := firstFrameTimeMS + m.videoDurationMS
	if pending.have && endTimeMS > pending.timeMS {
		cb(pending.segmentIndex, endTimeMS-pending.timeMS, pending.start, pending.size)
	}

	return nil
}
