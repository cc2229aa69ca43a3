package live

// Tally records the most recent choice of each participant on one motion.
// A repeated vote from the same participant replaces the earlier one.
type Tally struct {
	votes map[string]Choice
}

func NewTally() *Tally {
	return &Tally{votes: make(map[string]Choice)}
}

func (t *Tally) Cast(participantID string, choice Choice) error {
	if !choice.valid() {
		return ErrInvalidVote
	}
	t.votes[participantID] = choice
	return nil
}

type Totals struct {
	For     int `json:"for"`
	Against int `json:"against"`
	Abstain int `json:"abstain"`
}

// Totals recomputes the aggregate from the full mapping every time, so the
// counts always reconcile with the recorded votes and never drift.
func (t *Tally) Totals() Totals {
	var totals Totals
	for _, c := range t.votes {
		switch c {
		case ChoiceFor:
			totals.For++
		case ChoiceAgainst:
			totals.Against++
		case ChoiceAbstain:
			totals.Abstain++
		}
	}
	return totals
}

func (t *Tally) Size() int {
	return len(t.votes)
}
