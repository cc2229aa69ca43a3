package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/tmeadows/parliament-api/internal/data"
	"github.com/tmeadows/parliament-api/internal/live"
)

func (app *application) getMotionsHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.FormValue("room_id")
	if roomID == "" {
		app.badRequestResponse(w, r, "invalid query param: room_id")
		return
	}
	status := r.FormValue("status")

	motions, err := app.models.Motions.ListByRoom(context.Background(), roomID, status)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"motions": motions}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getMotionHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	motion, err := app.models.Motions.Get(context.Background(), params.ByName("motionID"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecord):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"motion": motion}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteMotionHandler retracts a motion. While the room is live this goes
// through the dispatcher so the deletion serializes with in-flight votes;
// if no live state holds the motion any more, the persisted record is
// checked and removed directly.
func (app *application) deleteMotionHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	motionID := params.ByName("motionID")

	motion, err := app.models.Motions.Get(context.Background(), motionID)
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
	actor := live.Participant{ID: user.ID, Name: user.Name, Role: live.Role(user.Role)}

	err = app.dispatcher.Dispatch(r.Context(), live.Event{
		Type:     live.EventDeleteMotion,
		RoomID:   motion.RoomID,
		Actor:    actor,
		MotionID: motionID,
	})
	switch {
	case err == nil:
		// Deleted from the live session; the dispatcher also removes the
		// persisted record.
	case errors.Is(err, live.ErrMotionNotFound), errors.Is(err, live.ErrRoomNotFound):
		// Motion is not part of any live session (server restart, room
		// retired). Apply the same rules against the persisted record.
		if motion.ProposerID != user.ID && user.Role != "speaker" && user.Role != "admin" {
			app.forbiddenResponse(w, r)
			return
		}
		if motion.Status != string(live.MotionActive) {
			app.errorResponse(w, r, http.StatusConflict, "only active motions can be deleted")
			return
		}
		if err := app.models.Motions.Delete(context.Background(), motionID); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	default:
		app.liveErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "motion deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
