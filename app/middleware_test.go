package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minthway/wayfarer/internal/userservice"
)

func newBareApplication() *application {
	return &application{
		config: &Config{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuthUser(t *testing.T) {
	app := newBareApplication()
	handler := app.requireAuthUser(okHandler)

	t.Run("anonymous is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = app.createUserContext(r, &userservice.AnonymousUser)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = app.createUserContext(r, &userservice.User{ID: 1, Role: userservice.RoleUser})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAuthor(t *testing.T) {
	app := newBareApplication()
	handler := app.requireAuthor(okHandler)

	tests := []struct {
		name string
		role userservice.Role
		want int
	}{
		{name: "regular user", role: userservice.RoleUser, want: http.StatusForbidden},
		{name: "certified user", role: userservice.RoleCertifiedUser, want: http.StatusOK},
		{name: "admin", role: userservice.RoleAdmin, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r = app.createUserContext(r, &userservice.User{ID: 1, Role: tt.role})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newBareApplication()
	handler := app.requireAdmin(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = app.createUserContext(r, &userservice.User{ID: 1, Role: userservice.RoleCertifiedUser})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r = app.createUserContext(r, &userservice.User{ID: 1, Role: userservice.RoleAdmin})
	w = httptest.NewRecorder()

	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	app := newBareApplication()
	app.config.Limiter.Enabled = true
	app.config.Limiter.RPS = 1
	app.config.Limiter.Burst = 2

	handler := app.rateLimit(http.HandlerFunc(okHandler))

	send := func(addr string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))

	// separate clients have separate buckets
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"))
}

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication()

	handler := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))
}
