package main

import (
	"context"
	"net/http"

	"github.com/minthway/wayfarer/internal/userservice"
)

type contextKey string

const userContextKey = contextKey("user")

func (app *application) createUserContext(r *http.Request, user *userservice.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) *userservice.User {
	user, ok := r.Context().Value(userContextKey).(*userservice.User)
	if !ok {
		return nil
	}
	return user
}

// requesterID returns the authenticated user's id, or nil for anonymous
// requests. Read paths use it to decide whether interaction flags apply.
func (app *application) requesterID(r *http.Request) *int64 {
	user := app.getUserContext(r)
	if user == nil || user.IsAnonymous() {
		return nil
	}
	return &user.ID
}

func (app *application) requesterIsAdmin(r *http.Request) bool {
	user := app.getUserContext(r)
	return user != nil && user.Role.IsAdmin()
}
