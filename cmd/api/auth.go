package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tmeadows/parliament-api/internal/data"
)

var oauthConfig = oauth2.Config{
	Endpoint: google.Endpoint,
	Scopes: []string{
		"https://www.googleapis.com/auth/userinfo.profile",
		"https://www.googleapis.com/auth/userinfo.email",
	},
}

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo?access_token="

const sessionTTL = 24 * time.Hour

func (app *application) getLoggedInUserHandler(w http.ResponseWriter, r *http.Request) {
	u := sessionUser(r)
	app.writeJSON(w, http.StatusOK, envelope{"user": u}, nil)
}

func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=60"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
		Role     string `json:"role" validate:"omitempty,oneof=listener member speaker"`
	}
	err := app.readValidatedJSON(r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}
	if input.Role == "" {
		input.Role = "member"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	user := &data.User{
		ID:    uuid.NewString(),
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
	}
	err = app.models.Users.Insert(context.Background(), user, hash)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateEmail):
			app.errorResponse(w, r, http.StatusConflict, "a user with this email already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.startSession(w, user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	err := app.readValidatedJSON(r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	user, hash, err := app.models.Users.GetByEmail(context.Background(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecord):
			app.unauthorizedResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Users created through OAuth have no password; they must keep using
	// the provider flow.
	if len(hash) == 0 || bcrypt.CompareHashAndPassword(hash, []byte(input.Password)) != nil {
		app.unauthorizedResponse(w, r)
		return
	}

	err = app.startSession(w, user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getRedirectURLHandler(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	oauthState := base64.StdEncoding.EncodeToString(b)
	cookie := &http.Cookie{
		Name:     "oauthState",
		Value:    oauthState,
		Secure:   true,
		HttpOnly: true,
		Expires:  time.Now().Add(5 * time.Minute),
		Path:     "/",
	}
	http.SetCookie(w, cookie)

	oauthConfig.ClientID = app.config.google.clientID
	oauthConfig.ClientSecret = app.config.google.clientSecret
	oauthConfig.RedirectURL = app.config.google.redirectURL
	redirectURL := oauthConfig.AuthCodeURL(oauthState)

	err = app.writeJSON(w, http.StatusOK, envelope{"redirectURL": redirectURL}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) callbackHandler(w http.ResponseWriter, r *http.Request) {
	state, code := r.FormValue("state"), r.FormValue("code")
	cookie, err := r.Cookie("oauthState")

	if err != nil {
		switch {
		case errors.Is(err, http.ErrNoCookie):
			app.badRequestResponse(w, r, "missing required cookie: oauthState")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if cookie.Value != state {
		app.badRequestResponse(w, r, "invalid cookie found: oauthState")
		return
	}

	token, err := oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	res, err := http.Get(userInfoURL + token.AccessToken)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		app.serverErrorResponse(w, r, errors.New("fetching google user info failed"))
		return
	}

	var userInfo struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Picture       string `json:"picture"`
	}

	err = json.NewDecoder(res.Body).Decode(&userInfo)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	user := &data.User{
		ID:            userInfo.ID,
		Name:          userInfo.Name,
		Email:         userInfo.Email,
		EmailVerified: userInfo.VerifiedEmail,
		Avatar:        userInfo.Picture,
		Role:          "member",
	}
	err = app.models.Users.Upsert(context.Background(), user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.startSession(w, user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, app.config.webURL, http.StatusTemporaryRedirect)
}

// startSession issues an opaque token, stores its hash and sets the session
// cookie.
func (app *application) startSession(w http.ResponseWriter, user *data.User) error {
	t, err := data.NewToken(user.ID, sessionTTL, data.ScopeAuthentication)
	if err != nil {
		return err
	}

	err = app.models.Tokens.Insert(context.Background(), t)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "sessionID",
		Value:    t.PlainText,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		Expires:  t.ExpiryTime,
		SameSite: http.SameSiteNoneMode,
	})
	return nil
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	user := sessionUser(r)

	err := app.models.Tokens.DeleteForUser(context.Background(), user.ID, data.ScopeAuthentication)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "sessionID",
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		Expires:  time.Unix(0, 0),
	})

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "logged out successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
