package data

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ScopeAuthentication = "authentication"

// Token is an opaque session credential. Only its sha256 hash is stored;
// the plaintext exists just long enough to be set as a cookie.
type Token struct {
	PlainText  string    `json:"token"`
	Hash       []byte    `json:"-"`
	Scope      string    `json:"-"`
	UserID     string    `json:"-"`
	ExpiryTime time.Time `json:"expiry_time"`
}

func NewToken(userID string, ttl time.Duration, scope string) (*Token, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	plain := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)
	hash := sha256.Sum256([]byte(plain))

	return &Token{
		PlainText:  plain,
		Hash:       hash[:],
		Scope:      scope,
		UserID:     userID,
		ExpiryTime: time.Now().Add(ttl),
	}, nil
}

type TokenModel struct {
	Pool *pgxpool.Pool
}

func (m *TokenModel) Insert(ctx context.Context, t *Token) error {
	stmt := `INSERT INTO tokens(hash, user_id, scope, expiry_time) VALUES ($1, $2, $3, $4)`
	_, err := m.Pool.Exec(ctx, stmt, t.Hash, t.UserID, t.Scope, t.ExpiryTime)
	return err
}

// DeleteForUser logs the user out of every device holding a token in scope.
func (m *TokenModel) DeleteForUser(ctx context.Context, userID, scope string) error {
	stmt := `DELETE FROM tokens WHERE user_id = $1 AND scope = $2`
	_, err := m.Pool.Exec(ctx, stmt, userID, scope)
	return err
}

// DeleteExpired prunes tokens past their expiry. Called opportunistically;
// expired tokens are already unusable through GetUserForToken.
func (m *TokenModel) DeleteExpired(ctx context.Context) error {
	stmt := `DELETE FROM tokens WHERE expiry_time < CURRENT_TIMESTAMP`
	_, err := m.Pool.Exec(ctx, stmt)
	return err
}
