package debugui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInspectorClampsHistoryLength(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		in := NewInspector(nil, nil, 0)
		assert.Equal(t, 1, in.historyFrames)
		assert.Len(t, in.frameHistory, 1)
	})

	t.Run("negative", func(t *testing.T) {
		in := NewInspector(nil, nil, -120)
		assert.Equal(t, 1, in.historyFrames)
		assert.Len(t, in.frameHistory, 1)
	})

	t.Run("positive kept", func(t *testing.T) {
		in := NewInspector(nil, nil, 120)
		assert.Equal(t, 120, in.historyFrames)
		assert.Len(t, in.frameHistory, 120)
	})
}
