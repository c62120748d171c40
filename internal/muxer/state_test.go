package muxer

import (
	"testing"

	"github.com/jmylchreest/segmux/pkg/diskslice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStreamState(t *testing.T, in TrackInput) *StreamState {
	t.Helper()
	st, err := NewStreamState(in, 0x0100, streamIDVideo, diskslice.DefaultOptions())
	require.NoError(t, err)
	return st
}

func TestStreamState_Init(t *testing.T) {
	t.Run("seeds next_frame_dts from first_frame_time_offset rescaled to the output timescale", func(t *testing.T) {
		in := TrackInput{
			SourceTimescale:      48000,
			FirstFrameTimeOffset: 48000, // 1 second
			Frames:               []FrameDescriptor{{Duration: 1024}},
			FrameOffsets:         []int64{0},
		}
		st := newTestStreamState(t, in)
		assert.Equal(t, int64(OutputTimescale), st.NextDTS())
	})

	t.Run("Done is false with unconsumed frames and true once exhausted", func(t *testing.T) {
		in := TrackInput{
			SourceTimescale: 90000,
			Frames:          []FrameDescriptor{{Duration: 3000}},
			FrameOffsets:    []int64{0},
		}
		st := newTestStreamState(t, in)
		assert.False(t, st.Done())

		fd, _, err := st.CurrentFrame()
		require.NoError(t, err)
		st.Advance(fd)
		assert.True(t, st.Done())
	})
}

func TestStreamState_AdvanceAndPrepare(t *testing.T) {
	t.Run("Advance recomputes next_frame_dts from the accumulated time offset", func(t *testing.T) {
		in := TrackInput{
			SourceTimescale: 90000,
			Frames: []FrameDescriptor{
				{Duration: 3000},
				{Duration: 3000},
			},
			FrameOffsets: []int64{0, 100},
		}
		st := newTestStreamState(t, in)

		fd, _, err := st.CurrentFrame()
		require.NoError(t, err)
		st.Advance(fd)
		assert.Equal(t, int64(3000), st.NextDTS())
	})

	t.Run("PrepareOutputFrame rescales the sum of time offset and pts_delay directly", func(t *testing.T) {
		in := TrackInput{
			SourceTimescale: 48000,
			Frames:          []FrameDescriptor{{Duration: 1024, PTSDelay: 2048}},
			FrameOffsets:    []int64{0},
		}
		st := newTestStreamState(t, in)

		curOffset := st.CurrentTimeOffset()
		curDTS := st.NextDTS()
		fd, _, err := st.CurrentFrame()
		require.NoError(t, err)
		st.Advance(fd)

		of := st.PrepareOutputFrame(fd, curOffset, curDTS)
		assert.Equal(t, curDTS, of.DTS)
		assert.Equal(t, Rescale(curOffset+fd.PTSDelay, 48000, OutputTimescale), of.PTS)
	})

	t.Run("LastStreamFrame is set once the cursor reaches the frame count", func(t *testing.T) {
		in := TrackInput{
			SourceTimescale: 90000,
			Frames:          []FrameDescriptor{{Duration: 3000}},
			FrameOffsets:    []int64{0},
		}
		st := newTestStreamState(t, in)

		curOffset := st.CurrentTimeOffset()
		curDTS := st.NextDTS()
		fd, _, err := st.CurrentFrame()
		require.NoError(t, err)
		st.Advance(fd)

		of := st.PrepareOutputFrame(fd, curOffset, curDTS)
		assert.True(t, of.LastStreamFrame)
	})
}

func TestStreamState_Reset(t *testing.T) {
	t.Run("rewinds cursor, timing, and continuity counter while keeping PID/SID", func(t *testing.T) {
		in := TrackInput{
			SourceTimescale: 90000,
			Frames: []FrameDescriptor{
				{Duration: 3000},
				{Duration: 3000},
			},
			FrameOffsets: []int64{0, 100},
		}
		st := newTestStreamState(t, in)
		originalPID := st.PID

		fd, _, err := st.CurrentFrame()
		require.NoError(t, err)
		st.Advance(fd)
		st.CC.Next()
		st.CC.Next()

		st.Reset()

		assert.Equal(t, 0, st.Cursor)
		assert.Equal(t, int64(0), st.NextDTS())
		assert.Equal(t, originalPID, st.PID)
		assert.Equal(t, byte(0), st.CC.Next())
	})
}
