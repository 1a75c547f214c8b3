package imageservice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, handler http.Handler) *GithubStore {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := NewGithubStore("test-token", "wayfarer", "images", "main")
	store.apiURL = server.URL
	return store
}

func TestUpload(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	store := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))

	url, err := store.Upload(context.Background(), []byte("fake jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/repos/wayfarer/images/contents/images/"))
	assert.True(t, strings.HasSuffix(gotPath, ".jpg"))
	assert.Equal(t, "main", gotBody["branch"])

	decoded, err := base64.StdEncoding.DecodeString(gotBody["content"])
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg"), decoded)

	assert.True(t, strings.HasPrefix(url, "https://raw.githubusercontent.com/wayfarer/images/main/images/"))
}

func TestUploadRejectsUnknownType(t *testing.T) {
	store := NewGithubStore("t", "o", "r", "main")

	_, err := store.Upload(context.Background(), []byte("data"), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadServerError(t *testing.T) {
	store := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	_, err := store.Upload(context.Background(), []byte("data"), "image/png")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestDelete(t *testing.T) {
	var deleted bool

	store := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]string{"sha": "abc123"})
		case http.MethodDelete:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "abc123", body["sha"])
			deleted = true
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	url := "https://raw.githubusercontent.com/wayfarer/images/main/images/photo.jpg"
	err := store.Delete(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestDeleteForeignURL(t *testing.T) {
	store := NewGithubStore("t", "wayfarer", "images", "main")

	err := store.Delete(context.Background(), "https://example.com/photo.jpg")
	assert.ErrorIs(t, err, ErrNotManaged)
}
