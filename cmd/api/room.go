package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/tmeadows/parliament-api/internal/data"
)

func (app *application) getRoomsHandler(w http.ResponseWriter, r *http.Request) {
	user := sessionUser(r)

	rooms, err := app.models.Rooms.List(context.Background(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"rooms": rooms}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createRoomHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name" validate:"required,min=3,max=80"`
		Description string `json:"description" validate:"max=500"`
		IsPrivate   bool   `json:"isPrivate"`
	}
	err := app.readValidatedJSON(r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	user := sessionUser(r)
	room := &data.Room{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		IsActive:    true,
		OwnerID:     user.ID,
	}

	err = app.models.Rooms.Insert(context.Background(), room)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"room": room}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := app.roomFromParams(r)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecord):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"room": room}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        *string `json:"name" validate:"omitempty,min=3,max=80"`
		Description *string `json:"description" validate:"omitempty,max=500"`
		IsPrivate   *bool   `json:"isPrivate"`
	}
	err := app.readValidatedJSON(r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	room, err := app.roomFromParams(r)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecord):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	user := sessionUser(r)
	if room.OwnerID != user.ID && user.Role != "admin" {
		app.forbiddenResponse(w, r)
		return
	}

	if input.Name != nil {
		room.Name = *input.Name
	}
	if input.Description != nil {
		room.Description = *input.Description
	}
	if input.IsPrivate != nil {
		room.IsPrivate = *input.IsPrivate
	}

	err = app.models.Rooms.Update(context.Background(), room)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"room": room}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := app.roomFromParams(r)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecord):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	user := sessionUser(r)
	if room.OwnerID != user.ID && user.Role != "admin" {
		app.forbiddenResponse(w, r)
		return
	}

	err = app.models.Rooms.Delete(context.Background(), room.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Drop the live session; connected clients stop receiving deltas and
	// new events for this room are rejected against the inactive record.
	app.dispatcher.CloseRoom(room.ID)

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "room deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getRoomMessagesHandler(w http.ResponseWriter, r *http.Request) {
	room, err := app.roomFromParams(r)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecord):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	messages, err := app.models.Messages.GetMessages(context.Background(), room.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"messages": messages}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) roomFromParams(r *http.Request) (*data.Room, error) {
	params := httprouter.ParamsFromContext(r.Context())
	return app.models.Rooms.Get(context.Background(), params.ByName("roomID"))
}
