package live

import (
	"sync"

	"github.com/rs/zerolog"
)

// Subscriber is one connection's receiving end for room deltas. Send must
// not block: a subscriber that cannot keep up reports an error and is
// detached, so delivery to one connection never delays another or stalls
// mutation of the room.
type Subscriber interface {
	ID() string
	Send(Delta) error
}

// Subscriptions tracks which connections are subscribed to which rooms and
// fans deltas out to them. It is safe for concurrent use.
type Subscriptions struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber
	log   zerolog.Logger
}

func NewSubscriptions(log zerolog.Logger) *Subscriptions {
	return &Subscriptions{
		rooms: make(map[string]map[string]Subscriber),
		log:   log,
	}
}

func (s *Subscriptions) Subscribe(roomID string, sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.rooms[roomID]
	if !ok {
		subs = make(map[string]Subscriber)
		s.rooms[roomID] = subs
	}
	subs[sub.ID()] = sub
}

func (s *Subscriptions) Unsubscribe(roomID string, subID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detach(roomID, subID)
}

// DropAll removes the subscriber from every room, returning the room ids it
// was subscribed to. Used when a connection goes away.
func (s *Subscriptions) DropAll(subID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roomIDs []string
	for roomID, subs := range s.rooms {
		if _, ok := subs[subID]; ok {
			roomIDs = append(roomIDs, roomID)
			s.detach(roomID, subID)
		}
	}
	return roomIDs
}

func (s *Subscriptions) Count(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[roomID])
}

// Publish delivers the deltas to every current subscriber of the room.
// Delivery order between subscribers is unspecified; each individual
// subscriber receives the deltas in the order given. Subscribers whose Send
// fails are detached.
func (s *Subscriptions) Publish(roomID string, deltas ...Delta) {
	s.mu.RLock()
	targets := make([]Subscriber, 0, len(s.rooms[roomID]))
	for _, sub := range s.rooms[roomID] {
		targets = append(targets, sub)
	}
	s.mu.RUnlock()

	var dead []string
	for _, sub := range targets {
		for _, delta := range deltas {
			if err := sub.Send(delta); err != nil {
				s.log.Debug().
					Str("room", roomID).
					Str("subscriber", sub.ID()).
					Err(err).
					Msg("detaching slow or dead subscriber")
				dead = append(dead, sub.ID())
				break
			}
		}
	}

	if len(dead) > 0 {
		s.mu.Lock()
		for _, id := range dead {
			s.detach(roomID, id)
		}
		s.mu.Unlock()
	}
}

// detach removes one subscription entry. Caller holds the write lock.
func (s *Subscriptions) detach(roomID, subID string) {
	subs, ok := s.rooms[roomID]
	if !ok {
		return
	}
	delete(subs, subID)
	if len(subs) == 0 {
		delete(s.rooms, roomID)
	}
}
