package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RoomMeta is the persisted identity of a room, owned by the persistence
// collaborator. The live RoomState is the working copy, not the source of
// truth for metadata.
type RoomMeta struct {
	ID   string
	Name string
}

// RoomLoader resolves a room id against the persistence collaborator.
// Returns ErrRoomNotFound when no such room exists.
type RoomLoader interface {
	LoadRoom(ctx context.Context, roomID string) (RoomMeta, error)
}

// MessageStore persists chat messages. Writes happen off the mutation path.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg ChatMessage) error
}

// MotionRecord is the persisted form of a motion.
type MotionRecord struct {
	ID          string
	RoomID      string
	ProposerID  string
	Title       string
	Description string
	Status      MotionStatus
	SubmittedAt time.Time
}

// MotionStore writes motion submissions and status changes through to the
// persistence collaborator. Motion writes are synchronous so status changes
// land in order; failures are logged, the live state stays authoritative.
type MotionStore interface {
	SaveMotion(ctx context.Context, m MotionRecord) error
	UpdateMotionStatus(ctx context.Context, motionID string, status MotionStatus) error
	DeleteMotion(ctx context.Context, motionID string) error
}

const persistTimeout = 5 * time.Second

// Dispatcher is the sole entry point through which events reach a room's
// state and the sole producer of outbound deltas. Events for the same room
// are applied one at a time under the room's mutex, so every subscriber
// observes that room's deltas in the order the events were applied. Rooms
// never block each other.
type Dispatcher struct {
	registry *Registry
	subs     *Subscriptions
	loader   RoomLoader
	messages MessageStore
	motions  MotionStore
	log      zerolog.Logger
}

func NewDispatcher(registry *Registry, subs *Subscriptions, loader RoomLoader, messages MessageStore, motions MotionStore, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		subs:     subs,
		loader:   loader,
		messages: messages,
		motions:  motions,
		log:      log,
	}
}

// Dispatch applies one inbound event to its room and, on success, publishes
// the resulting deltas to every subscriber of that room. On failure the
// error is returned to the caller only; nothing is broadcast and the room
// is left exactly as it was.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	for {
		rm, err := d.roomFor(ctx, ev)
		if err != nil {
			return err
		}

		rm.mu.Lock()
		if rm.retired {
			// Lost a race with retirement; the registry no longer maps this
			// instance. Re-fetch and try again.
			rm.mu.Unlock()
			continue
		}

		deltas, err := d.apply(ctx, rm.state, ev)
		if err != nil {
			rm.mu.Unlock()
			return err
		}
		d.subs.Publish(ev.RoomID, deltas...)
		d.retireIfEmpty(ev.RoomID, rm)
		rm.mu.Unlock()
		return nil
	}
}

// Subscribe registers the connection for the room's deltas. Deltas published
// after Subscribe returns are guaranteed to reach the subscriber (until it
// is detached); whether it sees deltas from concurrent earlier events is a
// race it resolves by joining before reading state.
func (d *Dispatcher) Subscribe(roomID string, sub Subscriber) {
	d.subs.Subscribe(roomID, sub)
}

func (d *Dispatcher) Unsubscribe(roomID string, sub Subscriber) {
	d.subs.Unsubscribe(roomID, sub.ID())
	d.sweep(roomID)
}

// Disconnect cleans up after a connection that went away without leaving:
// its subscriptions are dropped and its participant is removed from the
// roster of every room it was still present in.
func (d *Dispatcher) Disconnect(ctx context.Context, connID string, p Participant) {
	for _, roomID := range d.subs.DropAll(connID) {
		err := d.Dispatch(ctx, Event{Type: EventLeaveRoom, RoomID: roomID, Actor: p})
		if err != nil && !errors.Is(err, ErrNotInRoom) && !errors.Is(err, ErrRoomNotFound) {
			d.log.Error().Str("room", roomID).Str("user", p.ID).Err(err).Msg("disconnect cleanup failed")
		}
	}
}

// CloseRoom retires the live instance immediately, regardless of roster.
// Used when the room itself is deleted.
func (d *Dispatcher) CloseRoom(roomID string) {
	rm, ok := d.registry.get(roomID)
	if !ok {
		return
	}
	rm.mu.Lock()
	if !rm.retired {
		d.registry.retire(roomID, rm)
	}
	rm.mu.Unlock()
	d.log.Debug().Str("room", roomID).Msg("room closed")
}

func (d *Dispatcher) roomFor(ctx context.Context, ev Event) (*liveRoom, error) {
	if rm, ok := d.registry.get(ev.RoomID); ok {
		return rm, nil
	}

	// First event for this room since startup (or since it emptied out).
	// The persistence record decides whether the room is allowed to exist.
	meta, err := d.loader.LoadRoom(ctx, ev.RoomID)
	if err != nil {
		return nil, err
	}
	return d.registry.getOrCreate(meta.ID, func() *RoomState {
		d.log.Debug().Str("room", meta.ID).Msg("room state created")
		return NewRoomState(meta.ID, meta.Name)
	}), nil
}

func (d *Dispatcher) apply(ctx context.Context, state *RoomState, ev Event) ([]Delta, error) {
	switch ev.Type {
	case EventJoinRoom:
		return state.Join(ev.Actor)
	case EventLeaveRoom:
		return state.Leave(ev.Actor.ID)
	case EventSendMessage:
		deltas, msg, err := state.PostMessage(ev.Actor.ID, ev.Text)
		if err != nil {
			return nil, err
		}
		if d.messages != nil {
			go d.persistMessage(msg)
		}
		return deltas, nil
	case EventRequestSpeak:
		return state.RequestToSpeak(ev.Actor.ID)
	case EventResolveSpeak:
		return state.ResolveSpeakRequest(ev.Actor.ID, ev.TargetID, ev.Approve, ev.Reason)
	case EventSubmitMotion:
		deltas, m, err := state.SubmitMotion(ev.Actor.ID, ev.Title, ev.Description)
		if err != nil {
			return nil, err
		}
		if d.motions != nil {
			d.persistMotion(*m)
		}
		return deltas, nil
	case EventStartVoting:
		deltas, err := state.StartVoting(ev.MotionID, ev.Actor.ID)
		if err != nil {
			return nil, err
		}
		if d.motions != nil {
			d.persistStatus(ev.MotionID, MotionVoting)
		}
		return deltas, nil
	case EventEndVoting:
		deltas, err := state.EndVoting(ev.MotionID, ev.Actor.ID)
		if err != nil {
			return nil, err
		}
		if d.motions != nil {
			d.persistStatus(ev.MotionID, MotionClosed)
		}
		return deltas, nil
	case EventCastVote:
		return state.CastVote(ev.MotionID, ev.Actor.ID, ev.Choice)
	case EventDeleteMotion:
		deltas, err := state.DeleteMotion(ev.MotionID, ev.Actor)
		if err != nil {
			return nil, err
		}
		if d.motions != nil {
			d.persistDelete(ev.MotionID)
		}
		return deltas, nil
	default:
		return nil, fmt.Errorf("unhandled event type %q", ev.Type)
	}
}

// retireIfEmpty drops the live instance once the room has no participants
// and no subscribers. Postgres keeps the metadata; a later event simply
// rebuilds a fresh instance. Caller holds rm.mu.
func (d *Dispatcher) retireIfEmpty(roomID string, rm *liveRoom) {
	if rm.retired || rm.state.RosterSize() > 0 || d.subs.Count(roomID) > 0 {
		return
	}
	d.registry.retire(roomID, rm)
	d.log.Debug().Str("room", roomID).Msg("empty room retired")
}

// sweep retries retirement from paths that do not already hold the room
// lock, such as the last unsubscribe.
func (d *Dispatcher) sweep(roomID string) {
	rm, ok := d.registry.get(roomID)
	if !ok {
		return
	}
	rm.mu.Lock()
	d.retireIfEmpty(roomID, rm)
	rm.mu.Unlock()
}

func (d *Dispatcher) persistMessage(msg ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := d.messages.SaveMessage(ctx, msg); err != nil {
		d.log.Error().Str("room", msg.RoomID).Str("message", msg.ID).Err(err).Msg("persisting chat message failed")
	}
}

func (d *Dispatcher) persistMotion(m Motion) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	record := MotionRecord{
		ID:          m.ID,
		RoomID:      m.RoomID,
		ProposerID:  m.ProposerID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		SubmittedAt: m.SubmittedAt,
	}
	if err := d.motions.SaveMotion(ctx, record); err != nil {
		d.log.Error().Str("motion", m.ID).Err(err).Msg("persisting motion failed")
	}
}

func (d *Dispatcher) persistStatus(motionID string, status MotionStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := d.motions.UpdateMotionStatus(ctx, motionID, status); err != nil {
		d.log.Error().Str("motion", motionID).Err(err).Msg("persisting motion status failed")
	}
}

func (d *Dispatcher) persistDelete(motionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := d.motions.DeleteMotion(ctx, motionID); err != nil {
		d.log.Error().Str("motion", motionID).Err(err).Msg("deleting persisted motion failed")
	}
}
