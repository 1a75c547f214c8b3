package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("register returns user and token", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/users/register", map[string]string{
			"name":     "traveler",
			"email":    "traveler@example.com",
			"password": "Password123!",
		}, nil)

		require.Equal(t, http.StatusCreated, status)
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "traveler", user["name"])
		assert.Equal(t, "USER", user["role"])

		token, ok := body["token"].(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, token["access_token"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/users/register", map[string]string{
			"name":     "traveler2",
			"email":    "traveler@example.com",
			"password": "Password123!",
		}, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.NotNil(t, body["error"])
	})

	t.Run("wrong password", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/users/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "WrongPassword1!",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("me requires a token", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/users/me", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("login and fetch me", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/users/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "Password123!",
		}, nil)
		require.Equal(t, http.StatusOK, status)

		token := body["token"].(map[string]any)["access_token"].(string)

		status, _, body = ts.get(t, "/v1/users/me", &token)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "traveler@example.com", body["user"].(map[string]any)["email"])
	})
}

func loginAdmin(t *testing.T, app *application, ts *testServer) string {
	t.Helper()

	err := app.userService.EnsureAdmin(context.Background(), app.config.Admin.Name, app.config.Admin.Email, app.config.Admin.Password)
	require.NoError(t, err)

	status, _, body := ts.post(t, "/v1/users/login", map[string]string{
		"email":    app.config.Admin.Email,
		"password": app.config.Admin.Password,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	return body["token"].(map[string]any)["access_token"].(string)
}

func TestCertificationLifecycleOverHTTP(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	userToken := ts.registerAndLogin(t, "hopeful", "hopeful@example.com", "Password123!")
	adminToken := loginAdmin(t, app, ts)

	var requestID float64

	t.Run("user opens a request", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/certifications", nil, &userToken)
		require.Equal(t, http.StatusCreated, status)

		request := body["certification_request"].(map[string]any)
		assert.Equal(t, "PENDING", request["status"])
		requestID = request["id"].(float64)
	})

	t.Run("second request conflicts", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/certifications", nil, &userToken)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("listing needs admin", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/admin/certifications", &userToken)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("admin approves, case-insensitively", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/admin/certifications", &adminToken)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body["certification_requests"].([]any), 1)

		status, _, body = ts.put(t, fmt.Sprintf("/v1/admin/certifications/%d", int64(requestID)), &adminToken, map[string]string{
			"action": "approve",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "APPROVED", body["decision"].(map[string]any)["status"])
	})

	t.Run("user is now certified", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/users/me", &userToken)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "CERTIFIED_USER", body["user"].(map[string]any)["role"])
	})

	t.Run("certified user can open a fresh request", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/certifications", nil, &userToken)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "PENDING", body["certification_request"].(map[string]any)["status"])
	})

	t.Run("re-deciding conflicts", func(t *testing.T) {
		status, _, _ := ts.put(t, fmt.Sprintf("/v1/admin/certifications/%d", int64(requestID)), &adminToken, map[string]string{
			"action": "REJECT",
		})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("invalid action", func(t *testing.T) {
		status, _, _ := ts.put(t, fmt.Sprintf("/v1/admin/certifications/%d", int64(requestID)), &adminToken, map[string]string{
			"action": "maybe",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func (ts *testServer) postBlog(t *testing.T, token string, fields map[string]string) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/blogs/new", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	status, _, body := readResponse(t, res)
	return status, body
}

func TestBlogModerationFlow(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	userToken := ts.registerAndLogin(t, "writer", "writer@example.com", "Password123!")
	readerToken := ts.registerAndLogin(t, "reader", "reader@example.com", "Password123!")
	adminToken := loginAdmin(t, app, ts)

	t.Run("uncertified users cannot publish", func(t *testing.T) {
		status, _ := ts.postBlog(t, userToken, map[string]string{
			"title":      "Too soon",
			"paragraph1": "Not certified yet.",
		})
		assert.Equal(t, http.StatusForbidden, status)
	})

	certifyUser(t, db, "writer@example.com")

	var blogID float64

	t.Run("certified author submits a blog", func(t *testing.T) {
		// re-login so the refreshed role is attached to the context
		status, _, body := ts.post(t, "/v1/users/login", map[string]string{
			"email":    "writer@example.com",
			"password": "Password123!",
		}, nil)
		require.Equal(t, http.StatusOK, status)
		userToken = body["token"].(map[string]any)["access_token"].(string)

		status, blog := ts.postBlog(t, userToken, map[string]string{
			"title":      "Sunrise in Bagan",
			"paragraph1": "Two thousand temples before breakfast.",
		})
		require.Equal(t, http.StatusCreated, status)

		created := blog["blog"].(map[string]any)
		assert.Equal(t, "PENDING", created["status"])
		blogID = created["id"].(float64)
	})

	t.Run("pending blog is hidden from readers", func(t *testing.T) {
		status, _, _ := ts.get(t, fmt.Sprintf("/v1/blog/%d", int64(blogID)), &readerToken)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("admin approves it", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/admin/blogs", &adminToken)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body["blogs"].([]any), 1)

		status, _, body = ts.put(t, fmt.Sprintf("/v1/admin/blogs/%d", int64(blogID)), &adminToken, map[string]string{
			"action": "APPROVE",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "APPROVED", body["decision"].(map[string]any)["status"])
	})

	t.Run("approved blog shows up in the feed", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs/featured", nil)
		require.Equal(t, http.StatusOK, status)

		feed := body["feed"].(map[string]any)
		require.Len(t, feed["content"].([]any), 1)
		assert.False(t, feed["has_next"].(bool))
	})

	t.Run("reader likes and favorites it", func(t *testing.T) {
		path := fmt.Sprintf("/v1/blog/%d/like", int64(blogID))
		status, _, body := ts.post(t, path, nil, &readerToken)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(1), body["like"].(map[string]any)["like_count"])

		status, _, _ = ts.post(t, fmt.Sprintf("/v1/blog/%d/favorite", int64(blogID)), nil, &readerToken)
		require.Equal(t, http.StatusOK, status)

		status, _, body = ts.get(t, "/v1/blogs/favorites", &readerToken)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body["blogs"].([]any), 1)
	})
}

func certifyUser(t *testing.T, db *sql.DB, email string) {
	t.Helper()

	var roleID int
	err := db.QueryRow(`
		INSERT INTO roles (name)
		VALUES ('CERTIFIED_USER')
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`).Scan(&roleID)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE users SET role_id = $1 WHERE email = $2`, roleID, email)
	require.NoError(t, err)
}
