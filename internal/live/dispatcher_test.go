package live

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	rooms map[string]RoomMeta
}

func (l *fakeLoader) LoadRoom(_ context.Context, roomID string) (RoomMeta, error) {
	meta, ok := l.rooms[roomID]
	if !ok {
		return RoomMeta{}, ErrRoomNotFound
	}
	return meta, nil
}

type recordingStore struct {
	mu       sync.Mutex
	messages []ChatMessage
	motions  []MotionRecord
	statuses map[string]MotionStatus
	deleted  []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{statuses: make(map[string]MotionStatus)}
}

func (s *recordingStore) SaveMessage(_ context.Context, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingStore) SaveMotion(_ context.Context, m MotionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motions = append(s.motions, m)
	return nil
}

func (s *recordingStore) UpdateMotionStatus(_ context.Context, motionID string, status MotionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[motionID] = status
	return nil
}

func (s *recordingStore) DeleteMotion(_ context.Context, motionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, motionID)
	return nil
}

func (s *recordingStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *recordingStore) motionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.motions)
}

func (s *recordingStore) statusOf(motionID string) MotionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[motionID]
}

func newTestDispatcher(t *testing.T, roomIDs ...string) (*Dispatcher, *recordingStore) {
	t.Helper()
	loader := &fakeLoader{rooms: make(map[string]RoomMeta)}
	for _, id := range roomIDs {
		loader.rooms[id] = RoomMeta{ID: id, Name: "room " + id}
	}
	store := newRecordingStore()
	d := NewDispatcher(NewRegistry(), NewSubscriptions(zerolog.Nop()), loader, store, store, zerolog.Nop())
	return d, store
}

func join(t *testing.T, d *Dispatcher, roomID string, p Participant) {
	t.Helper()
	err := d.Dispatch(context.Background(), Event{Type: EventJoinRoom, RoomID: roomID, Actor: p})
	require.NoError(t, err)
}

func TestDispatcher_UnknownRoomRejected(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")

	err := d.Dispatch(context.Background(), Event{Type: EventJoinRoom, RoomID: "nope", Actor: member})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDispatcher_RejectionIsNotBroadcast(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")
	sub := newChanSubscriber("c1", 16)
	d.Subscribe("r1", sub)

	join(t, d, "r1", member)
	require.Len(t, sub.drain(), 1)

	// The second speak request violates the queue precondition; the caller
	// gets the error, subscribers see only the first request's deltas.
	err := d.Dispatch(context.Background(), Event{Type: EventRequestSpeak, RoomID: "r1", Actor: member})
	require.NoError(t, err)
	err = d.Dispatch(context.Background(), Event{Type: EventRequestSpeak, RoomID: "r1", Actor: member})
	require.ErrorIs(t, err, ErrAlreadyQueued)

	deltas := sub.drain()
	require.Len(t, deltas, 2)
	require.Equal(t, DeltaSpeakRequest, deltas[0].Type)
	require.Equal(t, DeltaQueueUpdated, deltas[1].Type)
}

func TestDispatcher_AllSubscribersObserveSameOrder(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")

	const senders = 4
	const perSender = 25
	total := senders*perSender + senders // messages plus joins

	a := newChanSubscriber("a", total+8)
	b := newChanSubscriber("b", total+8)
	d.Subscribe("r1", a)
	d.Subscribe("r1", b)

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := Participant{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("user %d", i), Role: RoleMember}
			require.NoError(t, d.Dispatch(context.Background(), Event{Type: EventJoinRoom, RoomID: "r1", Actor: p}))
			for n := 0; n < perSender; n++ {
				ev := Event{Type: EventSendMessage, RoomID: "r1", Actor: p, Text: fmt.Sprintf("msg %d/%d", i, n)}
				require.NoError(t, d.Dispatch(context.Background(), ev))
			}
		}(i)
	}
	wg.Wait()

	seen := a.drain()
	require.Len(t, seen, total)

	// Whatever interleaving the dispatcher chose, both subscribers saw the
	// exact same sequence.
	require.Equal(t, seen, b.drain())
}

func TestDispatcher_TwoSimultaneousVotesBothLand(t *testing.T) {
	d, store := newTestDispatcher(t, "r1")
	join(t, d, "r1", speaker)
	join(t, d, "r1", member)
	p3 := Participant{ID: "P9", Name: "Eve", Role: RoleMember}
	join(t, d, "r1", p3)

	sub := newChanSubscriber("c1", 64)
	d.Subscribe("r1", sub)

	require.NoError(t, d.Dispatch(context.Background(), Event{
		Type: EventSubmitMotion, RoomID: "r1", Actor: member, Title: "Increase budget",
	}))

	var motionID string
	for _, delta := range sub.drain() {
		if delta.Type == DeltaMotionSubmit {
			motionID = delta.Payload.(MotionPayload).MotionID
		}
	}
	require.NotEmpty(t, motionID)

	require.NoError(t, d.Dispatch(context.Background(), Event{
		Type: EventStartVoting, RoomID: "r1", Actor: speaker, MotionID: motionID,
	}))

	var wg sync.WaitGroup
	for _, voter := range []Participant{member, p3} {
		wg.Add(1)
		go func(p Participant) {
			defer wg.Done()
			err := d.Dispatch(context.Background(), Event{
				Type: EventCastVote, RoomID: "r1", Actor: p, MotionID: motionID, Choice: ChoiceFor,
			})
			require.NoError(t, err)
		}(voter)
	}
	wg.Wait()

	var last Totals
	for _, delta := range sub.drain() {
		if delta.Type == DeltaTallyUpdated {
			last = delta.Payload.(TallyPayload).Totals
		}
	}
	require.Equal(t, Totals{For: 2}, last)

	require.NoError(t, d.Dispatch(context.Background(), Event{
		Type: EventEndVoting, RoomID: "r1", Actor: speaker, MotionID: motionID,
	}))

	err := d.Dispatch(context.Background(), Event{
		Type: EventCastVote, RoomID: "r1", Actor: member, MotionID: motionID, Choice: ChoiceAgainst,
	})
	require.ErrorIs(t, err, ErrMotionClosed)

	require.Eventually(t, func() bool {
		return store.statusOf(motionID) == MotionClosed
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 1, store.motionCount())
}

func TestDispatcher_ChatMessagesPersistedOffPath(t *testing.T) {
	d, store := newTestDispatcher(t, "r1")
	join(t, d, "r1", member)

	require.NoError(t, d.Dispatch(context.Background(), Event{
		Type: EventSendMessage, RoomID: "r1", Actor: member, Text: "hello",
	}))

	require.Eventually(t, func() bool {
		return store.messageCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_EmptyRoomRetired(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")

	join(t, d, "r1", member)
	require.Equal(t, 1, d.registry.Len())

	require.NoError(t, d.Dispatch(context.Background(), Event{Type: EventLeaveRoom, RoomID: "r1", Actor: member}))
	require.Equal(t, 0, d.registry.Len())

	// A retired room comes back on the next event, against the same
	// persisted record.
	join(t, d, "r1", member)
	require.Equal(t, 1, d.registry.Len())
}

func TestDispatcher_SubscriberKeepsRoomAlive(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")
	sub := newChanSubscriber("c1", 16)
	d.Subscribe("r1", sub)

	join(t, d, "r1", member)
	require.NoError(t, d.Dispatch(context.Background(), Event{Type: EventLeaveRoom, RoomID: "r1", Actor: member}))

	// Empty roster but a live subscription: the instance stays.
	require.Equal(t, 1, d.registry.Len())

	d.Unsubscribe("r1", sub)
	require.Equal(t, 0, d.registry.Len())
}

func TestDispatcher_DisconnectCleansUp(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")

	watcher := newChanSubscriber("w", 16)
	d.Subscribe("r1", watcher)

	conn := newChanSubscriber("conn-1", 16)
	d.Subscribe("r1", conn)
	join(t, d, "r1", member)
	require.NoError(t, d.Dispatch(context.Background(), Event{Type: EventRequestSpeak, RoomID: "r1", Actor: member}))
	watcher.drain()

	d.Disconnect(context.Background(), "conn-1", member)

	deltas := watcher.drain()
	require.Len(t, deltas, 2)
	require.Equal(t, DeltaUserLeft, deltas[0].Type)
	require.Equal(t, DeltaQueueUpdated, deltas[1].Type)
	require.Empty(t, deltas[1].Payload.(QueuePayload).Queue)
}

func TestDispatcher_CloseRoom(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1")
	join(t, d, "r1", member)

	d.CloseRoom("r1")
	require.Equal(t, 0, d.registry.Len())

	// Events for the closed room start over from the persisted record.
	join(t, d, "r1", member)
	require.Equal(t, 1, d.registry.Len())
}

func TestDispatcher_RoomsDoNotBlockEachOther(t *testing.T) {
	d, _ := newTestDispatcher(t, "r1", "r2")

	// A stuck subscriber on r1 must not delay r2.
	stuck := newChanSubscriber("stuck", 0)
	d.Subscribe("r1", stuck)
	join(t, d, "r1", member)

	done := make(chan struct{})
	go func() {
		join(t, d, "r2", speaker)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("operation on r2 blocked by r1")
	}
}
