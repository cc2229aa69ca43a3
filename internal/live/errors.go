package live

import "errors"

// Rejections are synchronous and local to a single event: the room state is
// never left partially mutated, and a rejected event never produces a delta.
var (
	ErrForbidden         = errors.New("participant role lacks permission")
	ErrRoomNotFound      = errors.New("room not found")
	ErrMotionNotFound    = errors.New("motion not found")
	ErrNotInRoom         = errors.New("participant is not in the room")
	ErrInvalidTransition = errors.New("invalid motion transition")
	ErrMotionClosed      = errors.New("motion is closed")
	ErrInvalidVote       = errors.New("invalid vote choice")
	ErrAlreadyQueued     = errors.New("already in the speaking queue")
	ErrNotQueued         = errors.New("not in the speaking queue")
)
