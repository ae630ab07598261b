package sockets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	t.Parallel()

	q := newRingQueue[int](4)
	for i := 0; i < 4; i++ {
		q.push(i)
	}
	require.Equal(t, 4, q.len())

	for i := 0; i < 4; i++ {
		item, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, i, item)
	}

	_, ok := q.pop()
	require.False(t, ok)
}

func TestRingQueueGrows(t *testing.T) {
	t.Parallel()

	q := newRingQueue[int](2)

	// Interleave to move head off zero before forcing growth.
	q.push(0)
	q.push(1)
	first, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, 0, first)

	for i := 2; i < 100; i++ {
		q.push(i)
	}
	require.Equal(t, 99, q.len())

	for i := 1; i < 100; i++ {
		item, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, i, item)
	}
	require.Equal(t, 0, q.len())
}

func TestNextPow2Uint64(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint64(1), nextPow2Uint64(0))
	require.Equal(t, uint64(1), nextPow2Uint64(1))
	require.Equal(t, uint64(2), nextPow2Uint64(2))
	require.Equal(t, uint64(4), nextPow2Uint64(3))
	require.Equal(t, uint64(128), nextPow2Uint64(100))
}
