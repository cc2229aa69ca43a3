package live

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one immutable entry of a room's append-only chat log.
type ChatMessage struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	RoomID    string    `json:"roomId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomState holds everything belonging to one live room: roster, chat log,
// active motions and the speaking queue. It is not safe for concurrent use;
// the dispatcher serializes all access behind the room's mutation boundary.
type RoomState struct {
	ID   string
	Name string

	roster  map[string]Participant
	chat    []ChatMessage
	motions map[string]*Motion
	queue   SpeakQueue

	now func() time.Time
}

func NewRoomState(id, name string) *RoomState {
	return &RoomState{
		ID:      id,
		Name:    name,
		roster:  make(map[string]Participant),
		motions: make(map[string]*Motion),
		now:     time.Now,
	}
}

// Join adds the participant to the roster. Rejoining refreshes the stored
// identity (name or role may have changed between connections).
func (r *RoomState) Join(p Participant) ([]Delta, error) {
	r.roster[p.ID] = p
	return []Delta{{
		Type:    DeltaUserJoined,
		RoomID:  r.ID,
		Payload: PresencePayload{UserID: p.ID, UserName: p.Name, Role: p.Role},
	}}, nil
}

// Leave removes the participant from the roster and drops any pending speak
// request they held.
func (r *RoomState) Leave(participantID string) ([]Delta, error) {
	p, ok := r.roster[participantID]
	if !ok {
		return nil, ErrNotInRoom
	}
	delete(r.roster, participantID)

	deltas := []Delta{{
		Type:    DeltaUserLeft,
		RoomID:  r.ID,
		Payload: PresencePayload{UserID: p.ID, UserName: p.Name, Role: p.Role},
	}}
	if r.queue.Drop(participantID) {
		deltas = append(deltas, r.queueDelta())
	}
	return deltas, nil
}

func (r *RoomState) PostMessage(authorID, text string) ([]Delta, ChatMessage, error) {
	author, ok := r.roster[authorID]
	if !ok {
		return nil, ChatMessage{}, ErrNotInRoom
	}

	msg := ChatMessage{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		RoomID:    r.ID,
		Text:      text,
		CreatedAt: r.now(),
	}
	r.chat = append(r.chat, msg)

	return []Delta{{
		Type:   DeltaNewMessage,
		RoomID: r.ID,
		Payload: MessagePayload{
			MessageID: msg.ID,
			UserID:    author.ID,
			UserName:  author.Name,
			Message:   msg.Text,
			Timestamp: msg.CreatedAt,
		},
	}}, msg, nil
}

func (r *RoomState) RequestToSpeak(participantID string) ([]Delta, error) {
	p, ok := r.roster[participantID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if err := r.queue.Enqueue(participantID, r.now()); err != nil {
		return nil, err
	}
	return []Delta{
		{
			Type:    DeltaSpeakRequest,
			RoomID:  r.ID,
			Payload: SpeakPayload{UserID: p.ID, UserName: p.Name},
		},
		r.queueDelta(),
	}, nil
}

// ResolveSpeakRequest removes the target's pending entry. Only a speaker or
// admin may resolve requests.
func (r *RoomState) ResolveSpeakRequest(actorID, targetID string, approve bool, reason string) ([]Delta, error) {
	actor, ok := r.roster[actorID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if !actor.Role.canModerate() {
		return nil, ErrForbidden
	}
	if err := r.queue.Resolve(targetID); err != nil {
		return nil, err
	}

	// The target may have left the room with the request still pending.
	target := r.roster[targetID]
	kind := DeltaSpeakerApprove
	if !approve {
		kind = DeltaSpeakerDeny
	}
	return []Delta{
		{
			Type:    kind,
			RoomID:  r.ID,
			Payload: SpeakPayload{UserID: targetID, UserName: target.Name, Reason: reason},
		},
		r.queueDelta(),
	}, nil
}

func (r *RoomState) SubmitMotion(proposerID, title, description string) ([]Delta, *Motion, error) {
	proposer, ok := r.roster[proposerID]
	if !ok {
		return nil, nil, ErrNotInRoom
	}
	if !proposer.Role.canPropose() {
		return nil, nil, ErrForbidden
	}

	m := NewMotion(uuid.NewString(), r.ID, proposerID, title, description, r.now())
	r.motions[m.ID] = m

	return []Delta{{
		Type:   DeltaMotionSubmit,
		RoomID: r.ID,
		Payload: MotionPayload{
			MotionID:    m.ID,
			Title:       m.Title,
			Description: m.Description,
			ProposedBy:  m.ProposerID,
			Status:      m.Status,
			SubmittedAt: m.SubmittedAt,
		},
	}}, m, nil
}

func (r *RoomState) StartVoting(motionID, actorID string) ([]Delta, error) {
	m, err := r.moderatedMotion(motionID, actorID)
	if err != nil {
		return nil, err
	}
	previous := m.Status
	if err := m.StartVoting(); err != nil {
		return nil, err
	}
	return []Delta{statusDelta(r.ID, m, previous)}, nil
}

func (r *RoomState) EndVoting(motionID, actorID string) ([]Delta, error) {
	m, err := r.moderatedMotion(motionID, actorID)
	if err != nil {
		return nil, err
	}
	previous := m.Status
	if err := m.EndVoting(); err != nil {
		return nil, err
	}
	return []Delta{statusDelta(r.ID, m, previous)}, nil
}

func (r *RoomState) CastVote(motionID, participantID string, choice Choice) ([]Delta, error) {
	voter, ok := r.roster[participantID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if !voter.Role.canPropose() {
		return nil, ErrForbidden
	}
	m, ok := r.motions[motionID]
	if !ok {
		return nil, ErrMotionNotFound
	}
	if err := m.CastVote(participantID, choice); err != nil {
		return nil, err
	}

	totals := m.Totals()
	return []Delta{
		{
			Type:   DeltaVoteCast,
			RoomID: r.ID,
			Payload: VoteCastPayload{
				MotionID:   m.ID,
				UserID:     participantID,
				Vote:       choice,
				TotalVotes: totals,
			},
		},
		{
			Type:    DeltaTallyUpdated,
			RoomID:  r.ID,
			Payload: TallyPayload{MotionID: m.ID, Totals: totals},
		},
	}, nil
}

// DeleteMotion removes an active motion. The proposer may retract their own
// motion; otherwise a speaker or admin is required. Unlike the in-session
// operations this does not require presence, so a room owner can clean up
// through the administrative API.
func (r *RoomState) DeleteMotion(motionID string, actor Participant) ([]Delta, error) {
	m, ok := r.motions[motionID]
	if !ok {
		return nil, ErrMotionNotFound
	}
	if m.ProposerID != actor.ID && !actor.Role.canModerate() {
		return nil, ErrForbidden
	}
	if !m.Deletable() {
		return nil, ErrInvalidTransition
	}
	delete(r.motions, motionID)

	return []Delta{{
		Type:    DeltaMotionDeleted,
		RoomID:  r.ID,
		Payload: MotionDeletedPayload{MotionID: motionID},
	}}, nil
}

func (r *RoomState) Motion(motionID string) (*Motion, bool) {
	m, ok := r.motions[motionID]
	return m, ok
}

func (r *RoomState) RosterSize() int {
	return len(r.roster)
}

func (r *RoomState) QueueOrder() []string {
	return r.queue.Order()
}

func (r *RoomState) moderatedMotion(motionID, actorID string) (*Motion, error) {
	actor, ok := r.roster[actorID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if !actor.Role.canModerate() {
		return nil, ErrForbidden
	}
	m, ok := r.motions[motionID]
	if !ok {
		return nil, ErrMotionNotFound
	}
	return m, nil
}

func (r *RoomState) queueDelta() Delta {
	return Delta{
		Type:    DeltaQueueUpdated,
		RoomID:  r.ID,
		Payload: QueuePayload{Queue: r.queue.Order()},
	}
}

func statusDelta(roomID string, m *Motion, previous MotionStatus) Delta {
	return Delta{
		Type:   DeltaMotionStatus,
		RoomID: roomID,
		Payload: MotionStatusPayload{
			MotionID:       m.ID,
			PreviousStatus: previous,
			NewStatus:      m.Status,
		},
	}
}
