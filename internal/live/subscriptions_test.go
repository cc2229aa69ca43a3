package live

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// chanSubscriber buffers deltas on a channel the way the websocket client
// does; a zero-capacity or full channel makes Send fail.
type chanSubscriber struct {
	id     string
	deltas chan Delta
}

func newChanSubscriber(id string, capacity int) *chanSubscriber {
	return &chanSubscriber{id: id, deltas: make(chan Delta, capacity)}
}

func (s *chanSubscriber) ID() string { return s.id }

func (s *chanSubscriber) Send(d Delta) error {
	select {
	case s.deltas <- d:
		return nil
	default:
		return errors.New("buffer full")
	}
}

func (s *chanSubscriber) drain() []Delta {
	var out []Delta
	for {
		select {
		case d := <-s.deltas:
			out = append(out, d)
		default:
			return out
		}
	}
}

func TestSubscriptions_PublishReachesAllSubscribers(t *testing.T) {
	subs := NewSubscriptions(zerolog.Nop())
	a := newChanSubscriber("a", 8)
	b := newChanSubscriber("b", 8)
	other := newChanSubscriber("c", 8)

	subs.Subscribe("r1", a)
	subs.Subscribe("r1", b)
	subs.Subscribe("r2", other)

	subs.Publish("r1", Delta{Type: DeltaUserJoined, RoomID: "r1"})

	require.Len(t, a.drain(), 1)
	require.Len(t, b.drain(), 1)
	require.Empty(t, other.drain())
}

func TestSubscriptions_SlowSubscriberDetached(t *testing.T) {
	subs := NewSubscriptions(zerolog.Nop())
	slow := newChanSubscriber("slow", 0)
	ok := newChanSubscriber("ok", 8)

	subs.Subscribe("r1", slow)
	subs.Subscribe("r1", ok)
	require.Equal(t, 2, subs.Count("r1"))

	subs.Publish("r1", Delta{Type: DeltaNewMessage, RoomID: "r1"})

	// The healthy subscriber got the delta; the stuck one is gone.
	require.Len(t, ok.drain(), 1)
	require.Equal(t, 1, subs.Count("r1"))

	subs.Publish("r1", Delta{Type: DeltaNewMessage, RoomID: "r1"})
	require.Len(t, ok.drain(), 1)
	require.Empty(t, slow.drain())
}

func TestSubscriptions_DropAll(t *testing.T) {
	subs := NewSubscriptions(zerolog.Nop())
	s := newChanSubscriber("s", 8)

	subs.Subscribe("r1", s)
	subs.Subscribe("r2", s)

	roomIDs := subs.DropAll("s")
	require.ElementsMatch(t, []string{"r1", "r2"}, roomIDs)
	require.Zero(t, subs.Count("r1"))
	require.Zero(t, subs.Count("r2"))

	subs.Publish("r1", Delta{Type: DeltaUserLeft, RoomID: "r1"})
	require.Empty(t, s.drain())
}

func TestSubscriptions_Unsubscribe(t *testing.T) {
	subs := NewSubscriptions(zerolog.Nop())
	s := newChanSubscriber("s", 8)

	subs.Subscribe("r1", s)
	subs.Unsubscribe("r1", "s")

	subs.Publish("r1", Delta{Type: DeltaUserLeft, RoomID: "r1"})
	require.Empty(t, s.drain())

	// Unsubscribing twice or from an unknown room is a no-op.
	subs.Unsubscribe("r1", "s")
	subs.Unsubscribe("r9", "s")
}
