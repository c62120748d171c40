package muxer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory muxer.Cache whose available window can be
// capped, to exercise Process's NeedMoreData/truncation control flow
// without any real file I/O.
type fakeCache struct {
	data      []byte
	available int64
}

func (c *fakeCache) Get(_ uint16, fileOffset int64, maxLen int) ([]byte, bool) {
	if fileOffset < 0 || fileOffset >= c.available || fileOffset >= int64(len(c.data)) {
		return nil, false
	}
	end := fileOffset + int64(maxLen)
	if end > c.available {
		end = c.available
	}
	if end > int64(len(c.data)) {
		end = int64(len(c.data))
	}
	return c.data[fileOffset:end], true
}

func singleVideoTrack(frame1, frame2 []byte) []TrackInput {
	return []TrackInput{
		{
			MediaType:       MediaTypeVideo,
			TrackIndex:      0,
			SourceTimescale: 90000,
			Frames: []FrameDescriptor{
				{Duration: 3000, KeyFrame: true, Size: int64(len(frame1))},
				{Duration: 3000, KeyFrame: false, Size: int64(len(frame2))},
			},
			FrameOffsets:  []int64{0, int64(len(frame1))},
			NALLengthSize: 4,
		},
	}
}

func threeFrameVideoTrack(frame1, frame2, frame3 []byte) []TrackInput {
	return []TrackInput{
		{
			MediaType:       MediaTypeVideo,
			TrackIndex:      0,
			SourceTimescale: 90000,
			Frames: []FrameDescriptor{
				{Duration: 3000, KeyFrame: true, Size: int64(len(frame1))},
				{Duration: 3000, KeyFrame: false, Size: int64(len(frame2))},
				{Duration: 3000, KeyFrame: false, Size: int64(len(frame3))},
			},
			FrameOffsets: []int64{
				0,
				int64(len(frame1)),
				int64(len(frame1) + len(frame2)),
			},
			NALLengthSize: 4,
		},
	}
}

func TestMuxer_ProcessHappyPath(t *testing.T) {
	t.Run("a fully-available source produces a whole number of TS packets", func(t *testing.T) {
		frame1 := avccFrame([]byte{0x65, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		frame2 := avccFrame([]byte{0x61, 9, 9, 9})
		source := append(append([]byte(nil), frame1...), frame2...)

		var packets [][]byte
		write := func(p []byte) error {
			cp := append([]byte(nil), p...)
			packets = append(packets, cp)
			return nil
		}

		cache := &fakeCache{data: source, available: int64(len(source))}
		m, err := New(DefaultConfig(), 1, singleVideoTrack(frame1, frame2), cache, write, 0, 6000)
		require.NoError(t, err)

		require.NoError(t, m.Process())
		require.GreaterOrEqual(t, len(packets), 3) // PAT + PMT + at least one frame packet

		for _, pkt := range packets {
			assert.Len(t, pkt, TSPacketSize)
			assert.Equal(t, byte(0x47), pkt[0])
		}
	})

	t.Run("the real path's byte count matches SimulateGetSegmentSize for the same tracks", func(t *testing.T) {
		frame1 := avccFrame([]byte{0x65, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		frame2 := avccFrame([]byte{0x61, 9, 9, 9})
		source := append(append([]byte(nil), frame1...), frame2...)

		var packets [][]byte
		write := func(p []byte) error {
			packets = append(packets, append([]byte(nil), p...))
			return nil
		}

		cache := &fakeCache{data: source, available: int64(len(source))}
		real, err := New(DefaultConfig(), 1, singleVideoTrack(frame1, frame2), cache, write, 0, 6000)
		require.NoError(t, err)
		require.NoError(t, real.Process())

		frameBytes := 0
		for _, pkt := range packets[2:] { // skip PAT/PMT
			frameBytes += len(pkt)
		}

		sim, err := New(DefaultConfig(), 1, singleVideoTrack(frame1, frame2), nil, func([]byte) error { return nil }, 0, 6000)
		require.NoError(t, err)
		simSize, err := sim.SimulateGetSegmentSize()
		require.NoError(t, err)

		assert.Equal(t, int64(frameBytes), simSize)
	})
}

func TestMuxer_ProcessSuspendAndTruncation(t *testing.T) {
	t.Run("a cache miss beyond the available window returns NeedMoreData with the stalled offset", func(t *testing.T) {
		frame1 := avccFrame([]byte{0x65, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		frame2 := avccFrame([]byte{0x61, 9, 9, 9})
		source := append(append([]byte(nil), frame1...), frame2...)

		cache := &fakeCache{data: source, available: int64(len(frame1))} // frame2 entirely missing
		m, err := New(DefaultConfig(), 1, singleVideoTrack(frame1, frame2), cache, func([]byte) error { return nil }, 0, 6000)
		require.NoError(t, err)

		err = m.Process()
		offset, ok := IsNeedMoreData(err)
		require.True(t, ok, "expected NeedMoreData, got %v", err)
		assert.Equal(t, int64(len(frame1)), offset)
	})

	t.Run("a second call against the same still-unavailable offset reports truncation", func(t *testing.T) {
		frame1 := avccFrame([]byte{0x65, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		frame2 := avccFrame([]byte{0x61, 9, 9, 9})
		source := append(append([]byte(nil), frame1...), frame2...)

		cache := &fakeCache{data: source, available: int64(len(frame1))}
		m, err := New(DefaultConfig(), 1, singleVideoTrack(frame1, frame2), cache, func([]byte) error { return nil }, 0, 6000)
		require.NoError(t, err)

		_, ok := IsNeedMoreData(m.Process())
		require.True(t, ok)

		err = m.Process() // data at the stalled offset is still not there
		var trunc *ErrTruncated
		require.ErrorAs(t, err, &trunc)
		assert.Equal(t, int64(len(frame1)), trunc.Offset)
	})

	t.Run("a miss on the frame after one already written this call is NeedMoreData, not truncation", func(t *testing.T) {
		frame1 := avccFrame([]byte{0x65, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		frame2 := avccFrame([]byte{0x61, 9, 9, 9})
		frame3 := avccFrame([]byte{0x61, 8, 8, 8})
		source := append(append(append([]byte(nil), frame1...), frame2...), frame3...)

		cache := &fakeCache{data: source, available: int64(len(frame1))} // only frame1 present
		m, err := New(DefaultConfig(), 1, threeFrameVideoTrack(frame1, frame2, frame3), cache, func([]byte) error { return nil }, 0, 9000)
		require.NoError(t, err)

		// Call 1: frame1 completes, frame2 stalls immediately -> NeedMoreData.
		offset, ok := IsNeedMoreData(m.Process())
		require.True(t, ok)
		assert.Equal(t, int64(len(frame1)), offset)

		// The caller fills the cache up to (but not past) frame2, so call 2
		// can finish frame2 and then immediately miss on frame3 within the
		// very same call. That must still be NeedMoreData: bytes were
		// written earlier in this call (frame2), so it is not truncation.
		cache.available = int64(len(frame1) + len(frame2))

		offset, ok = IsNeedMoreData(m.Process())
		require.True(t, ok, "expected NeedMoreData for frame3's stall, not truncation")
		assert.Equal(t, int64(len(frame1)+len(frame2)), offset)
	})
}

func TestMuxer_SimulationReset(t *testing.T) {
	t.Run("SimulateGetSegmentSize is idempotent across a reset", func(t *testing.T) {
		frame1 := avccFrame([]byte{0x65, 1, 2, 3})
		frame2 := avccFrame([]byte{0x61, 4, 5, 6})

		m, err := New(DefaultConfig(), 1, singleVideoTrack(frame1, frame2), nil, func([]byte) error { return nil }, 0, 6000)
		require.NoError(t, err)

		first, err := m.SimulateGetSegmentSize()
		require.NoError(t, err)

		m.SimulationReset()

		second, err := m.SimulateGetSegmentSize()
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestMuxer_EmptyTrackList(t *testing.T) {
	t.Run("Init succeeds with no tracks and Process drains immediately", func(t *testing.T) {
		m, err := New(DefaultConfig(), 1, nil, &fakeCache{}, func([]byte) error { return nil }, 0, 0)
		require.NoError(t, err)
		assert.NoError(t, m.Process())
	})
}
