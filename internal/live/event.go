package live

import "time"

type Role string

const (
	RoleListener Role = "listener"
	RoleMember   Role = "member"
	RoleSpeaker  Role = "speaker"
	RoleAdmin    Role = "admin"
)

// canModerate reports whether the role may resolve speak requests and drive
// a motion's voting phase.
func (r Role) canModerate() bool {
	return r == RoleSpeaker || r == RoleAdmin
}

// canPropose reports whether the role may submit motions and cast votes.
func (r Role) canPropose() bool {
	return r == RoleMember || r == RoleSpeaker || r == RoleAdmin
}

// Participant is the identity the authentication layer established for a
// connection. The engine trusts it as-is and never mutates it.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type Choice string

const (
	ChoiceFor     Choice = "for"
	ChoiceAgainst Choice = "against"
	ChoiceAbstain Choice = "abstain"
)

func (c Choice) valid() bool {
	return c == ChoiceFor || c == ChoiceAgainst || c == ChoiceAbstain
}

type EventType string

const (
	EventJoinRoom     EventType = "join-room"
	EventLeaveRoom    EventType = "leave-room"
	EventSendMessage  EventType = "send-message"
	EventRequestSpeak EventType = "request-speak"
	EventResolveSpeak EventType = "resolve-speak"
	EventSubmitMotion EventType = "submit-motion"
	EventStartVoting  EventType = "start-voting"
	EventEndVoting    EventType = "end-voting"
	EventCastVote     EventType = "cast-vote"
	EventDeleteMotion EventType = "delete-motion"
)

// Event is one inbound action from a connected participant, tagged with the
// room it targets. Actor always comes from the authenticated connection,
// never from the wire payload.
type Event struct {
	Type   EventType
	RoomID string
	Actor  Participant

	// Type-specific fields; unused ones stay zero.
	Text        string // send-message
	MotionID    string // start/end voting, cast-vote, delete-motion
	Choice      Choice // cast-vote
	TargetID    string // resolve-speak
	Approve     bool   // resolve-speak
	Reason      string // resolve-speak denial
	Title       string // submit-motion
	Description string // submit-motion
}

type DeltaType string

const (
	DeltaUserJoined     DeltaType = "user-joined"
	DeltaUserLeft       DeltaType = "user-left"
	DeltaNewMessage     DeltaType = "new-message"
	DeltaSpeakRequest   DeltaType = "speak-request"
	DeltaSpeakerApprove DeltaType = "speaker-approved"
	DeltaSpeakerDeny    DeltaType = "speaker-denied"
	DeltaQueueUpdated   DeltaType = "queue-updated"
	DeltaMotionSubmit   DeltaType = "motion-submitted"
	DeltaMotionStatus   DeltaType = "motion-status-changed"
	DeltaMotionDeleted  DeltaType = "motion-deleted"
	DeltaVoteCast       DeltaType = "vote-cast"
	DeltaTallyUpdated   DeltaType = "tally-updated"
)

// Delta describes one applied state change, fanned out to every subscriber
// of the room. Payload holds one of the payload structs below.
type Delta struct {
	Type    DeltaType `json:"type"`
	RoomID  string    `json:"roomId"`
	Payload any       `json:"payload"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     Role   `json:"role"`
}

type MessagePayload struct {
	MessageID string    `json:"messageId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type SpeakPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Reason   string `json:"reason,omitempty"`
}

type QueuePayload struct {
	Queue []string `json:"queue"`
}

type MotionPayload struct {
	MotionID    string       `json:"motionId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ProposedBy  string       `json:"proposedBy"`
	Status      MotionStatus `json:"status"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

type MotionStatusPayload struct {
	MotionID       string       `json:"motionId"`
	PreviousStatus MotionStatus `json:"previousStatus"`
	NewStatus      MotionStatus `json:"newStatus"`
}

type MotionDeletedPayload struct {
	MotionID string `json:"motionId"`
}

type VoteCastPayload struct {
	MotionID   string `json:"motionId"`
	UserID     string `json:"userId"`
	Vote       Choice `json:"vote"`
	TotalVotes Totals `json:"totalVotes"`
}

type TallyPayload struct {
	MotionID string `json:"motionId"`
	Totals
}
