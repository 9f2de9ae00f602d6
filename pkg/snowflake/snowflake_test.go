package snowflake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeRange(t *testing.T) {
	_, err := NewNode(-1)
	assert.ErrorIs(t, err, ErrInvalidNode)
	_, err = NewNode(1024)
	assert.ErrorIs(t, err, ErrInvalidNode)
	_, err = NewNode(1023)
	assert.NoError(t, err)
}

func TestGenerateIncreasing(t *testing.T) {
	node, err := NewNode(7)
	require.NoError(t, err)

	prev := node.Generate()
	for i := 0; i < 10000; i++ {
		id := node.Generate()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateClockBackwards(t *testing.T) {
	node, err := NewNode(1)
	require.NoError(t, err)

	clock := int64(1767225600000)
	node.now = func() int64 { return clock }
	first := node.Generate()
	clock -= 5
	second := node.Generate()
	assert.Greater(t, second, first)
	assert.Equal(t, time.UnixMilli(1767225600000), first.Time())
}
