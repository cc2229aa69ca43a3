package main

import (
	"context"
	"errors"

	"github.com/tmeadows/parliament-api/internal/data"
	"github.com/tmeadows/parliament-api/internal/live"
)

// Adapters between the persistence models and the engine's collaborator
// interfaces. The engine never sees pgx; these keep the two sides apart.

type roomLoader struct {
	rooms *data.RoomModel
}

func (l *roomLoader) LoadRoom(ctx context.Context, roomID string) (live.RoomMeta, error) {
	room, err := l.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, data.ErrNoRecord) {
			return live.RoomMeta{}, live.ErrRoomNotFound
		}
		return live.RoomMeta{}, err
	}
	if !room.IsActive {
		return live.RoomMeta{}, live.ErrRoomNotFound
	}
	return live.RoomMeta{ID: room.ID, Name: room.Name}, nil
}

type messageStore struct {
	messages *data.MessageModel
}

func (s *messageStore) SaveMessage(ctx context.Context, msg live.ChatMessage) error {
	return s.messages.Insert(ctx, &data.Message{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Content:   msg.Text,
		CreatedAt: msg.CreatedAt,
		User:      data.BasicUserResp{ID: msg.AuthorID},
	})
}

type motionStore struct {
	motions *data.MotionModel
}

func (s *motionStore) SaveMotion(ctx context.Context, m live.MotionRecord) error {
	return s.motions.Insert(ctx, &data.Motion{
		ID:          m.ID,
		RoomID:      m.RoomID,
		ProposerID:  m.ProposerID,
		Title:       m.Title,
		Description: m.Description,
		Status:      string(m.Status),
		CreatedAt:   m.SubmittedAt,
	})
}

func (s *motionStore) UpdateMotionStatus(ctx context.Context, motionID string, status live.MotionStatus) error {
	return s.motions.UpdateStatus(ctx, motionID, string(status))
}

func (s *motionStore) DeleteMotion(ctx context.Context, motionID string) error {
	return s.motions.Delete(ctx, motionID)
}
