package live

import "time"

type speakRequest struct {
	ParticipantID string
	RequestedAt   time.Time
}

// SpeakQueue is the FIFO of pending speak requests for one room. Position is
// determined by arrival order at the dispatcher; a participant has at most
// one pending entry.
type SpeakQueue struct {
	entries []speakRequest
}

func (q *SpeakQueue) Enqueue(participantID string, at time.Time) error {
	if q.contains(participantID) {
		return ErrAlreadyQueued
	}
	q.entries = append(q.entries, speakRequest{ParticipantID: participantID, RequestedAt: at})
	return nil
}

// Resolve removes the participant's pending entry, whether the request was
// approved or denied.
func (q *SpeakQueue) Resolve(participantID string) error {
	if !q.remove(participantID) {
		return ErrNotQueued
	}
	return nil
}

// Drop removes the entry on participant departure. Reports whether an entry
// was present.
func (q *SpeakQueue) Drop(participantID string) bool {
	return q.remove(participantID)
}

// Order returns the pending participant ids in queue order.
func (q *SpeakQueue) Order() []string {
	ids := make([]string, len(q.entries))
	for i, e := range q.entries {
		ids[i] = e.ParticipantID
	}
	return ids
}

func (q *SpeakQueue) Len() int {
	return len(q.entries)
}

func (q *SpeakQueue) contains(participantID string) bool {
	for _, e := range q.entries {
		if e.ParticipantID == participantID {
			return true
		}
	}
	return false
}

func (q *SpeakQueue) remove(participantID string) bool {
	for i, e := range q.entries {
		if e.ParticipantID == participantID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}
