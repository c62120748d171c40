package muxer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_RealPath(t *testing.T) {
	t.Run("does not emit below target size", func(t *testing.T) {
		next := newMockFilter()
		b := NewBuffer(next, 10)

		require.NoError(t, b.StartFrame(&OutputFrame{DTS: 100}))
		require.NoError(t, b.Write([]byte{1, 2, 3}))
		require.NoError(t, b.FlushFrame())

		assert.Empty(t, next.started)
		assert.Equal(t, int64(100), mustBufferDTS(t, b))
	})

	t.Run("emits once the accumulation reaches target size", func(t *testing.T) {
		next := newMockFilter()
		b := NewBuffer(next, 5)

		require.NoError(t, b.StartFrame(&OutputFrame{DTS: 100}))
		require.NoError(t, b.Write([]byte{1, 2, 3}))
		require.NoError(t, b.FlushFrame())
		assert.Empty(t, next.started)

		require.NoError(t, b.StartFrame(&OutputFrame{DTS: 200}))
		require.NoError(t, b.Write([]byte{4, 5, 6}))
		require.NoError(t, b.FlushFrame())

		require.Len(t, next.started, 1)
		assert.Equal(t, int64(100), next.started[0].DTS) // oldest pending frame's metadata, not the newest
		assert.Equal(t, 6, next.totalWritten())
		assert.Equal(t, 1, next.flushCount)

		_, ok := b.BufferDTS()
		assert.False(t, ok)
	})

	t.Run("ForceFlush emits a partial accumulation regardless of size", func(t *testing.T) {
		next := newMockFilter()
		b := NewBuffer(next, 1000)

		require.NoError(t, b.StartFrame(&OutputFrame{DTS: 50}))
		require.NoError(t, b.Write([]byte{9}))
		require.NoError(t, b.FlushFrame())
		assert.Empty(t, next.started)

		require.NoError(t, b.ForceFlush())
		require.Len(t, next.started, 1)
		assert.Equal(t, 1, next.totalWritten())
	})

	t.Run("ForceFlush on an empty buffer is a no-op", func(t *testing.T) {
		next := newMockFilter()
		b := NewBuffer(next, 10)
		require.NoError(t, b.ForceFlush())
		assert.Empty(t, next.started)
	})
}

func TestBuffer_SimulatedPath(t *testing.T) {
	t.Run("accumulates simulated size across multiple writes before emitting", func(t *testing.T) {
		next := newMockFilter()
		b := NewBuffer(next, 10)

		b.SimulatedWrite(&OutputFrame{DTS: 1, OriginalSize: 4})
		assert.Empty(t, next.simWrites)

		b.SimulatedWrite(&OutputFrame{DTS: 2, OriginalSize: 4})
		assert.Empty(t, next.simWrites)

		b.SimulatedWrite(&OutputFrame{DTS: 3, OriginalSize: 4})
		require.Len(t, next.simWrites, 1)
		assert.Equal(t, int64(1), next.simWrites[0].DTS)
		assert.Equal(t, int64(12), next.simWrites[0].OriginalSize)
	})

	t.Run("SimulatedForceFlush emits a partial accumulation", func(t *testing.T) {
		next := newMockFilter()
		b := NewBuffer(next, 1000)

		b.SimulatedWrite(&OutputFrame{DTS: 5, OriginalSize: 3})
		b.SimulatedForceFlush()

		require.Len(t, next.simWrites, 1)
		assert.Equal(t, int64(3), next.simWrites[0].OriginalSize)
	})

	t.Run("SimulationSupported delegates to next filter", func(t *testing.T) {
		next := newMockFilter()
		next.simulationOK = false
		b := NewBuffer(next, 10)
		assert.False(t, b.SimulationSupported())
	})
}

func mustBufferDTS(t *testing.T, b *Buffer) int64 {
	t.Helper()
	dts, ok := b.BufferDTS()
	require.True(t, ok)
	return dts
}
