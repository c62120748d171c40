package muxer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContinuityCounter(t *testing.T) {
	t.Run("starts at zero and increments by one", func(t *testing.T) {
		var cc ContinuityCounter
		assert.Equal(t, byte(0), cc.Next())
		assert.Equal(t, byte(1), cc.Next())
		assert.Equal(t, byte(2), cc.Next())
	})

	t.Run("wraps modulo 16", func(t *testing.T) {
		var cc ContinuityCounter
		for i := 0; i < 15; i++ {
			cc.Next()
		}
		assert.Equal(t, byte(15), cc.Next())
		assert.Equal(t, byte(0), cc.Next())
	})

	t.Run("reset returns counter to zero", func(t *testing.T) {
		var cc ContinuityCounter
		cc.Next()
		cc.Next()
		cc.Reset()
		assert.Equal(t, byte(0), cc.Next())
	})
}
