package main

import (
	"context"
	"net/http"

	"github.com/tmeadows/parliament-api/internal/data"
)

type contextKey string

const sessionUserKey = contextKey("sessionUser")

// withSessionUser stores the authenticated user on the request. Only the
// auth middleware writes this key.
func withSessionUser(r *http.Request, u *data.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionUserKey, u))
}

// sessionUser returns the authenticated user. Handlers behind the auth
// middleware may assume it is present; anywhere else this is a bug.
func sessionUser(r *http.Request) *data.User {
	u, ok := r.Context().Value(sessionUserKey).(*data.User)
	if !ok {
		panic("no session user on request context")
	}
	return u
}
