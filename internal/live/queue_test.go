package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpeakQueue_FIFOOrder(t *testing.T) {
	var q SpeakQueue
	now := time.Now()

	require.NoError(t, q.Enqueue("p1", now))
	require.NoError(t, q.Enqueue("p2", now.Add(time.Second)))
	require.NoError(t, q.Enqueue("p3", now.Add(2*time.Second)))

	require.Equal(t, []string{"p1", "p2", "p3"}, q.Order())

	require.NoError(t, q.Resolve("p1"))
	require.Equal(t, []string{"p2", "p3"}, q.Order())

	// Resolution out of arrival order is allowed; the queue just removes
	// the entry.
	require.NoError(t, q.Resolve("p3"))
	require.Equal(t, []string{"p2"}, q.Order())
}

func TestSpeakQueue_DuplicateEntryRejected(t *testing.T) {
	var q SpeakQueue
	now := time.Now()

	require.NoError(t, q.Enqueue("p1", now))
	err := q.Enqueue("p1", now.Add(time.Minute))
	require.ErrorIs(t, err, ErrAlreadyQueued)
	require.Equal(t, 1, q.Len())
}

func TestSpeakQueue_ResolveAbsent(t *testing.T) {
	var q SpeakQueue

	err := q.Resolve("ghost")
	require.ErrorIs(t, err, ErrNotQueued)
}

func TestSpeakQueue_DropOnDeparture(t *testing.T) {
	var q SpeakQueue
	now := time.Now()

	require.NoError(t, q.Enqueue("p1", now))
	require.NoError(t, q.Enqueue("p2", now))

	require.True(t, q.Drop("p1"))
	require.False(t, q.Drop("p1"))
	require.Equal(t, []string{"p2"}, q.Order())

	// Re-queueing after a drop is a fresh request, not a duplicate.
	require.NoError(t, q.Enqueue("p1", now.Add(time.Second)))
	require.Equal(t, []string{"p2", "p1"}, q.Order())
}
