package live

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTally_LastVoteWins(t *testing.T) {
	tally := NewTally()

	require.NoError(t, tally.Cast("p1", ChoiceFor))
	require.NoError(t, tally.Cast("p1", ChoiceAgainst))
	require.NoError(t, tally.Cast("p1", ChoiceAbstain))

	require.Equal(t, Totals{For: 0, Against: 0, Abstain: 1}, tally.Totals())
	require.Equal(t, 1, tally.Size())
}

func TestTally_RejectsInvalidChoice(t *testing.T) {
	tally := NewTally()

	err := tally.Cast("p1", Choice("maybe"))
	require.ErrorIs(t, err, ErrInvalidVote)
	require.Equal(t, Totals{}, tally.Totals())
}

func TestTally_AggregateAlwaysReconciles(t *testing.T) {
	tally := NewTally()
	choices := []Choice{ChoiceFor, ChoiceAgainst, ChoiceAbstain}

	// Many participants, each re-voting several times; the aggregate must
	// equal a recount of the latest choice per participant at every step.
	latest := make(map[string]Choice)
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("p%d", i%10)
		choice := choices[(i*7)%3]
		require.NoError(t, tally.Cast(id, choice))
		latest[id] = choice

		var want Totals
		for _, c := range latest {
			switch c {
			case ChoiceFor:
				want.For++
			case ChoiceAgainst:
				want.Against++
			case ChoiceAbstain:
				want.Abstain++
			}
		}
		require.Equal(t, want, tally.Totals())
		require.Equal(t, len(latest), tally.Size())
	}
}
