package data

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Avatar        string    `json:"avatar"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

type BasicUserResp struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

type UserModel struct {
	Pool *pgxpool.Pool
}

// Insert registers a password-based user. The password hash may be nil for
// users created through an OAuth provider.
func (m *UserModel) Insert(ctx context.Context, u *User, passwordHash []byte) error {
	stmt := `
		INSERT INTO users(id, name, email, email_verified, avatar, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	args := []any{u.ID, u.Name, u.Email, u.EmailVerified, u.Avatar, u.Role, passwordHash}
	_, err := m.Pool.Exec(ctx, stmt, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Upsert creates or refreshes a user coming in through an OAuth identity.
// Role is preserved on conflict so a promoted user keeps their promotion.
func (m *UserModel) Upsert(ctx context.Context, u *User) error {
	stmt := `
		INSERT INTO users(id, name, email, email_verified, avatar, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			email_verified = excluded.email_verified,
			avatar = excluded.avatar
	`
	args := []any{u.ID, u.Name, u.Email, u.EmailVerified, u.Avatar, u.Role}
	_, err := m.Pool.Exec(ctx, stmt, args...)
	return err
}

// GetByEmail returns the user and stored password hash for a login attempt.
func (m *UserModel) GetByEmail(ctx context.Context, email string) (*User, []byte, error) {
	stmt := `
		SELECT id, name, email, email_verified, avatar, role, password_hash, created_at
		FROM users WHERE email = $1
	`
	var u User
	var hash []byte
	err := m.Pool.QueryRow(ctx, stmt, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Avatar, &u.Role, &hash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNoRecord
		}
		return nil, nil, err
	}
	return &u, hash, nil
}

func (m *UserModel) Get(ctx context.Context, userID string) (*BasicUserResp, error) {
	stmt := `SELECT id, name, avatar, role FROM users WHERE id = $1`

	var u BasicUserResp
	err := m.Pool.QueryRow(ctx, stmt, userID).Scan(&u.ID, &u.Name, &u.Avatar, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return &u, nil
}

// GetUserForToken resolves a plaintext session token to its user, if the
// token exists, matches the scope and has not expired.
func (m *UserModel) GetUserForToken(ctx context.Context, token, scope string) (*User, error) {
	hash := sha256.Sum256([]byte(token))

	stmt := `
		SELECT u.id, u.name, u.email, u.email_verified, u.avatar, u.role, u.created_at
		FROM users u
		INNER JOIN tokens t ON t.user_id = u.id
		WHERE t.hash = $1 AND t.scope = $2 AND t.expiry_time >= CURRENT_TIMESTAMP
	`
	var u User
	err := m.Pool.QueryRow(ctx, stmt, hash[:], scope).Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Avatar, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return &u, nil
}
