package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tmeadows/parliament-api/internal/live"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.Error().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("request failed")
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	res := envelope{
		"error": message,
	}

	err := app.writeJSON(w, status, res, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered an error and could not process the response"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource is not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not allowed on this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

func (app *application) unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, "authentication required")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, "you are not allowed to perform this action")
}

// liveErrorResponse maps an engine rejection to an HTTP status for the REST
// endpoints that go through the dispatcher.
func (app *application) liveErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, live.ErrForbidden), errors.Is(err, live.ErrNotInRoom):
		app.forbiddenResponse(w, r)
	case errors.Is(err, live.ErrRoomNotFound), errors.Is(err, live.ErrMotionNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, live.ErrInvalidVote):
		app.badRequestResponse(w, r, err.Error())
	case errors.Is(err, live.ErrInvalidTransition),
		errors.Is(err, live.ErrMotionClosed),
		errors.Is(err, live.ErrAlreadyQueued),
		errors.Is(err, live.ErrNotQueued):
		app.errorResponse(w, r, http.StatusConflict, err.Error())
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// liveErrorCode names an engine rejection on the websocket error frame so
// clients can switch on it without string matching.
func liveErrorCode(err error) string {
	switch {
	case errors.Is(err, live.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, live.ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, live.ErrMotionNotFound):
		return "MOTION_NOT_FOUND"
	case errors.Is(err, live.ErrNotInRoom):
		return "NOT_IN_ROOM"
	case errors.Is(err, live.ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, live.ErrMotionClosed):
		return "MOTION_CLOSED"
	case errors.Is(err, live.ErrInvalidVote):
		return "INVALID_VOTE"
	case errors.Is(err, live.ErrAlreadyQueued):
		return "ALREADY_QUEUED"
	case errors.Is(err, live.ErrNotQueued):
		return "NOT_QUEUED"
	default:
		return "INTERNAL"
	}
}
