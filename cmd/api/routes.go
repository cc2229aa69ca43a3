package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	corsMw := alice.New(app.logRequest, app.enableCORS)
	authMw := alice.New(app.isAuthenticated)

	// authentication
	router.HandlerFunc(http.MethodPost, "/v1/auth/register", app.registerHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/login", app.loginHandler)
	router.HandlerFunc(http.MethodGet, "/v1/auth/redirectURL", app.getRedirectURLHandler)
	router.HandlerFunc(http.MethodGet, "/v1/auth/callback", app.callbackHandler)
	router.Handler(http.MethodDelete, "/v1/auth/logout", authMw.Then(http.HandlerFunc(app.logoutHandler)))

	// users
	router.Handler(http.MethodGet, "/v1/me", authMw.Then(http.HandlerFunc(app.getLoggedInUserHandler)))
	router.Handler(http.MethodGet, "/v1/users/:userID", authMw.Then(http.HandlerFunc(app.getUserHandler)))

	// rooms
	router.Handler(http.MethodGet, "/v1/rooms", authMw.Then(http.HandlerFunc(app.getRoomsHandler)))
	router.Handler(http.MethodPost, "/v1/rooms", authMw.Then(http.HandlerFunc(app.createRoomHandler)))
	router.Handler(http.MethodGet, "/v1/rooms/:roomID", authMw.Then(http.HandlerFunc(app.getRoomHandler)))
	router.Handler(http.MethodPut, "/v1/rooms/:roomID", authMw.Then(http.HandlerFunc(app.updateRoomHandler)))
	router.Handler(http.MethodDelete, "/v1/rooms/:roomID", authMw.Then(http.HandlerFunc(app.deleteRoomHandler)))
	router.Handler(http.MethodGet, "/v1/rooms/:roomID/messages", authMw.Then(http.HandlerFunc(app.getRoomMessagesHandler)))

	// motions
	router.Handler(http.MethodGet, "/v1/motions", authMw.Then(http.HandlerFunc(app.getMotionsHandler)))
	router.Handler(http.MethodGet, "/v1/motions/:motionID", authMw.Then(http.HandlerFunc(app.getMotionHandler)))
	router.Handler(http.MethodDelete, "/v1/motions/:motionID", authMw.Then(http.HandlerFunc(app.deleteMotionHandler)))

	// health
	router.HandlerFunc(http.MethodGet, "/v1/health", app.healthHandler)

	// websocket
	router.Handler(http.MethodGet, "/ws", authMw.Then(http.HandlerFunc(app.wsHandler)))

	return corsMw.Then(router)
}
