package data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Message struct {
	ID        string        `json:"id"`
	RoomID    string        `json:"room_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	User      BasicUserResp `json:"user"`
}

type MessageModel struct {
	Pool *pgxpool.Pool
}

func (m *MessageModel) Insert(ctx context.Context, msg *Message) error {
	stmt := `
		INSERT INTO messages(id, room_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	args := []any{msg.ID, msg.RoomID, msg.User.ID, msg.Content, msg.CreatedAt}
	_, err := m.Pool.Exec(ctx, stmt, args...)
	return err
}

// GetMessages returns the latest 50 messages of a room in chronological
// order, each joined with its author.
func (m *MessageModel) GetMessages(ctx context.Context, roomID string) ([]*Message, error) {
	stmt := `
		SELECT sq.id, sq.room_id, sq.content, sq.created_at,
		       sq.user_id, sq.name, sq.avatar, sq.role
		FROM (
			SELECT msg.id, msg.room_id, msg.content, msg.created_at,
			       u.id AS user_id, u.name, u.avatar, u.role
			FROM messages msg
			JOIN users u ON msg.user_id = u.id
			WHERE msg.room_id = $1
			ORDER BY msg.created_at DESC
			LIMIT 50
		) AS sq
		ORDER BY sq.created_at ASC
	`
	rows, err := m.Pool.Query(ctx, stmt, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		var msg Message
		err := rows.Scan(
			&msg.ID, &msg.RoomID, &msg.Content, &msg.CreatedAt,
			&msg.User.ID, &msg.User.Name, &msg.User.Avatar, &msg.User.Role,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
