package certservice

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minthway/wayfarer/internal/common"
)

func setupTestService(t *testing.T) (*CertService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	return NewCertService(db), db
}

func createTestUser(t *testing.T, db *sql.DB, name, email, role string) int64 {
	t.Helper()

	var roleID int
	err := db.QueryRow(`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`, role).Scan(&roleID)
	require.NoError(t, err)

	var userID int64
	err = db.QueryRow(`INSERT INTO users (name, email, password, role_id) VALUES ($1, $2, $3, $4) RETURNING id`, name, email, []byte("x"), roleID).Scan(&userID)
	require.NoError(t, err)

	return userID
}

func TestRequestCertification(t *testing.T) {
	svc, db := setupTestService(t)
	userID := createTestUser(t, db, "hopeful", "hopeful@example.com", "USER")
	certifiedID := createTestUser(t, db, "veteran", "veteran@example.com", "CERTIFIED_USER")

	t.Run("opens a pending request", func(t *testing.T) {
		req, err := svc.RequestCertification(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, userID, req.UserID)
		assert.Nil(t, req.ReviewedBy)
	})

	t.Run("second pending request is rejected", func(t *testing.T) {
		_, err := svc.RequestCertification(context.Background(), userID)
		assert.ErrorIs(t, err, ErrPendingRequestExists)
	})

	t.Run("already certified users may still request", func(t *testing.T) {
		req, err := svc.RequestCertification(context.Background(), certifiedID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("new request allowed once the previous one is decided", func(t *testing.T) {
		_, err := db.Exec(`UPDATE certification_requests SET status = 'APPROVED' WHERE user_id = $1`, userID)
		require.NoError(t, err)

		req, err := svc.RequestCertification(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.RequestCertification(context.Background(), 424242)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetRequestByUser(t *testing.T) {
	svc, db := setupTestService(t)
	userID := createTestUser(t, db, "hopeful", "hopeful@example.com", "USER")

	t.Run("no request yet", func(t *testing.T) {
		_, err := svc.GetRequestByUser(context.Background(), userID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("returns latest request", func(t *testing.T) {
		created, err := svc.RequestCertification(context.Background(), userID)
		require.NoError(t, err)

		got, err := svc.GetRequestByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "hopeful", got.UserName)
	})
}

func TestListPendingRequests(t *testing.T) {
	svc, db := setupTestService(t)

	first := createTestUser(t, db, "first", "first@example.com", "USER")
	second := createTestUser(t, db, "second", "second@example.com", "USER")

	_, err := svc.RequestCertification(context.Background(), first)
	require.NoError(t, err)
	_, err = svc.RequestCertification(context.Background(), second)
	require.NoError(t, err)

	requests, err := svc.ListPendingRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 2)

	// oldest submission first
	assert.Equal(t, first, requests[0].UserID)
	assert.Equal(t, second, requests[1].UserID)
}
