package live

import "time"

type MotionStatus string

// Lifecycle order: pending → active → voting → closed. Submission yields
// active directly; pending is reserved for a future moderation step and is
// never reached by the current flow. closed is terminal.
const (
	MotionPending MotionStatus = "pending"
	MotionActive  MotionStatus = "active"
	MotionVoting  MotionStatus = "voting"
	MotionClosed  MotionStatus = "closed"
)

// Motion is one proposal under debate inside a single room. It belongs to
// that room for its whole life and owns its vote tally.
type Motion struct {
	ID          string
	Title       string
	Description string
	ProposerID  string
	RoomID      string
	Status      MotionStatus
	SubmittedAt time.Time

	tally *Tally
}

func NewMotion(id, roomID, proposerID, title, description string, at time.Time) *Motion {
	return &Motion{
		ID:          id,
		Title:       title,
		Description: description,
		ProposerID:  proposerID,
		RoomID:      roomID,
		Status:      MotionActive,
		SubmittedAt: at,
		tally:       NewTally(),
	}
}

// StartVoting moves the motion from active to voting.
func (m *Motion) StartVoting() error {
	if m.Status != MotionActive {
		return ErrInvalidTransition
	}
	m.Status = MotionVoting
	return nil
}

// EndVoting moves the motion from voting to closed and freezes the tally.
func (m *Motion) EndVoting() error {
	if m.Status != MotionVoting {
		return ErrInvalidTransition
	}
	m.Status = MotionClosed
	return nil
}

func (m *Motion) CastVote(participantID string, choice Choice) error {
	switch m.Status {
	case MotionVoting:
		return m.tally.Cast(participantID, choice)
	case MotionClosed:
		return ErrMotionClosed
	default:
		return ErrInvalidTransition
	}
}

// Deletable reports whether the motion may be removed from the room.
// Deletion is allowed only while active, so in-flight or recorded votes are
// never discarded.
func (m *Motion) Deletable() bool {
	return m.Status == MotionActive
}

func (m *Motion) Totals() Totals {
	return m.tally.Totals()
}
