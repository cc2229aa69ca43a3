package data

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Motion struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	ProposerID  string    `json:"proposed_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type MotionModel struct {
	Pool *pgxpool.Pool
}

func (m *MotionModel) Insert(ctx context.Context, motion *Motion) error {
	stmt := `
		INSERT INTO motions(id, room_id, proposer_id, title, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	args := []any{
		motion.ID, motion.RoomID, motion.ProposerID,
		motion.Title, motion.Description, motion.Status, motion.CreatedAt,
	}
	_, err := m.Pool.Exec(ctx, stmt, args...)
	return err
}

func (m *MotionModel) ListByRoom(ctx context.Context, roomID, status string) ([]*Motion, error) {
	stmt := `
		SELECT id, room_id, proposer_id, title, description, status, created_at
		FROM motions
		WHERE room_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at ASC
	`
	rows, err := m.Pool.Query(ctx, stmt, roomID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	motions := make([]*Motion, 0)
	for rows.Next() {
		var motion Motion
		err := rows.Scan(
			&motion.ID, &motion.RoomID, &motion.ProposerID,
			&motion.Title, &motion.Description, &motion.Status, &motion.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		motions = append(motions, &motion)
	}
	return motions, rows.Err()
}

func (m *MotionModel) Get(ctx context.Context, motionID string) (*Motion, error) {
	stmt := `
		SELECT id, room_id, proposer_id, title, description, status, created_at
		FROM motions WHERE id = $1
	`
	var motion Motion
	err := m.Pool.QueryRow(ctx, stmt, motionID).Scan(
		&motion.ID, &motion.RoomID, &motion.ProposerID,
		&motion.Title, &motion.Description, &motion.Status, &motion.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return &motion, nil
}

func (m *MotionModel) UpdateStatus(ctx context.Context, motionID, status string) error {
	stmt := `UPDATE motions SET status = $1 WHERE id = $2`
	_, err := m.Pool.Exec(ctx, stmt, status, motionID)
	return err
}

func (m *MotionModel) Delete(ctx context.Context, motionID string) error {
	stmt := `DELETE FROM motions WHERE id = $1`
	_, err := m.Pool.Exec(ctx, stmt, motionID)
	return err
}
