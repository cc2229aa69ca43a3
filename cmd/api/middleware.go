package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/tmeadows/parliament-api/internal/data"
)

func (app *application) logRequest(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		app.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("origin", r.Header.Get("Origin")).
			Msg("request")
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func (app *application) isAuthenticated(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sessionID")
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				app.unauthorizedResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		user, err := app.models.Users.GetUserForToken(context.Background(), cookie.Value, data.ScopeAuthentication)
		if err != nil {
			switch {
			case errors.Is(err, data.ErrNoRecord):
				app.unauthorizedResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		r = withSessionUser(r, user)
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// TODO: vary header
func (app *application) enableCORS(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("origin")
		allowedOrigins := app.config.cors.allowedOrigins

		if origin != "" {
			for _, v := range allowedOrigins {
				if v == origin {
					w.Header().Set("Access-Control-Allow-Origin", v)
					w.Header().Set("Access-Control-Allow-Credentials", "true")

					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
						w.Header().Set("Access-Control-Allow-Methods", "POST, PUT, DELETE")
						w.WriteHeader(http.StatusOK)
						return
					}

					break
				}
			}
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
