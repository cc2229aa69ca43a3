package data

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoRecord       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Models struct {
	Users    UserModel
	Tokens   TokenModel
	Rooms    RoomModel
	Motions  MotionModel
	Messages MessageModel
}

func NewModels(pool *pgxpool.Pool) *Models {
	return &Models{
		Users:    UserModel{Pool: pool},
		Tokens:   TokenModel{Pool: pool},
		Rooms:    RoomModel{Pool: pool},
		Motions:  MotionModel{Pool: pool},
		Messages: MessageModel{Pool: pool},
	}
}
