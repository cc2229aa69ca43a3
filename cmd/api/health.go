package main

import (
	"net/http"
	"time"
)

func (app *application) healthHandler(w http.ResponseWriter, r *http.Request) {
	err := app.writeJSON(w, http.StatusOK, envelope{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(app.startedAt).Seconds(),
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
