package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestMotion() *Motion {
	return NewMotion("m1", "r1", "p1", "Increase budget", "", time.Now())
}

func TestMotion_SubmissionYieldsActive(t *testing.T) {
	m := newTestMotion()
	require.Equal(t, MotionActive, m.Status)
}

func TestMotion_LifecycleOrder(t *testing.T) {
	m := newTestMotion()

	// Votes are not accepted before the voting phase.
	err := m.CastVote("p2", ChoiceFor)
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, m.StartVoting())
	require.Equal(t, MotionVoting, m.Status)

	require.NoError(t, m.CastVote("p2", ChoiceFor))

	require.NoError(t, m.EndVoting())
	require.Equal(t, MotionClosed, m.Status)
}

func TestMotion_NoBackwardTransitions(t *testing.T) {
	m := newTestMotion()

	// endVoting on a non-voting motion fails and changes nothing.
	err := m.EndVoting()
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, MotionActive, m.Status)

	require.NoError(t, m.StartVoting())
	err = m.StartVoting()
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, MotionVoting, m.Status)

	require.NoError(t, m.EndVoting())
	err = m.StartVoting()
	require.ErrorIs(t, err, ErrInvalidTransition)
	err = m.EndVoting()
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, MotionClosed, m.Status)
}

func TestMotion_TallyFrozenAfterClose(t *testing.T) {
	m := newTestMotion()
	require.NoError(t, m.StartVoting())
	require.NoError(t, m.CastVote("p2", ChoiceAgainst))
	require.NoError(t, m.EndVoting())

	frozen := m.Totals()

	err := m.CastVote("p3", ChoiceFor)
	require.ErrorIs(t, err, ErrMotionClosed)
	require.Equal(t, frozen, m.Totals())
}

func TestMotion_DeletableOnlyWhileActive(t *testing.T) {
	m := newTestMotion()
	require.True(t, m.Deletable())

	require.NoError(t, m.StartVoting())
	require.False(t, m.Deletable())

	require.NoError(t, m.EndVoting())
	require.False(t, m.Deletable())
}
