package data

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private"`
	IsActive    bool      `json:"is_active"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type RoomModel struct {
	Pool *pgxpool.Pool
}

func (m *RoomModel) Insert(ctx context.Context, room *Room) error {
	stmt := `
		INSERT INTO rooms(id, name, description, is_private, is_active, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	args := []any{room.ID, room.Name, room.Description, room.IsPrivate, room.IsActive, room.OwnerID}
	return m.Pool.QueryRow(ctx, stmt, args...).Scan(&room.CreatedAt)
}

// List returns active rooms, public ones plus those owned by the caller.
func (m *RoomModel) List(ctx context.Context, userID string) ([]*Room, error) {
	stmt := `
		SELECT id, name, description, is_private, is_active, owner_id, created_at
		FROM rooms
		WHERE is_active = TRUE AND (is_private = FALSE OR owner_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := m.Pool.Query(ctx, stmt, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*Room, 0)
	for rows.Next() {
		var room Room
		err := rows.Scan(
			&room.ID, &room.Name, &room.Description,
			&room.IsPrivate, &room.IsActive, &room.OwnerID, &room.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, &room)
	}
	return rooms, rows.Err()
}

func (m *RoomModel) Get(ctx context.Context, roomID string) (*Room, error) {
	stmt := `
		SELECT id, name, description, is_private, is_active, owner_id, created_at
		FROM rooms WHERE id = $1
	`
	var room Room
	err := m.Pool.QueryRow(ctx, stmt, roomID).Scan(
		&room.ID, &room.Name, &room.Description,
		&room.IsPrivate, &room.IsActive, &room.OwnerID, &room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return &room, nil
}

func (m *RoomModel) Update(ctx context.Context, room *Room) error {
	stmt := `
		UPDATE rooms
		SET name = $1, description = $2, is_private = $3, is_active = $4
		WHERE id = $5
	`
	args := []any{room.Name, room.Description, room.IsPrivate, room.IsActive, room.ID}
	_, err := m.Pool.Exec(ctx, stmt, args...)
	return err
}

// Delete marks the room inactive. The row is kept so motions and chat keep
// their foreign keys; "deleted" rooms simply stop being listed or joinable.
func (m *RoomModel) Delete(ctx context.Context, roomID string) error {
	stmt := `UPDATE rooms SET is_active = FALSE WHERE id = $1`
	tag, err := m.Pool.Exec(ctx, stmt, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRecord
	}
	return nil
}
