package adminservice

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minthway/wayfarer/internal/common"
)

func setupTestService(t *testing.T) (*AdminService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	return NewAdminService(db), db
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

func createCertRequest(t *testing.T, db *sql.DB, userID int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(`INSERT INTO certification_requests (user_id) VALUES ($1) RETURNING id`, userID).Scan(&id)
	require.NoError(t, err)

	return id
}

func createPendingBlog(t *testing.T, db *sql.DB, authorID int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(`
		INSERT INTO blogs (title, paragraph1, author_id)
		VALUES ('Draft trip', 'Waiting for review.', $1)
		RETURNING id`, authorID).Scan(&id)
	require.NoError(t, err)

	return id
}

func userRole(t *testing.T, db *sql.DB, userID int64) string {
	t.Helper()

	var role string
	err := db.QueryRow(`SELECT r.name FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`, userID).Scan(&role)
	require.NoError(t, err)

	return role
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input   string
		want    Action
		wantErr bool
	}{
		{input: "APPROVE", want: ActionApprove},
		{input: "approve", want: ActionApprove},
		{input: "Reject", want: ActionReject},
		{input: " reject ", want: ActionReject},
		{input: "", wantErr: true},
		{input: "maybe", wantErr: true},
		{input: "APPROVED", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideCertification(t *testing.T) {
	svc, db := setupTestService(t)
	adminID := createTestUser(t, db, "admin", "admin@example.com", "ADMIN")
	userID := createTestUser(t, db, "hopeful", "hopeful@example.com", "USER")
	requestID := createCertRequest(t, db, userID)

	t.Run("approval promotes the user", func(t *testing.T) {
		decision, err := svc.DecideCertification(context.Background(), adminID, requestID, ActionApprove, nil)
		require.NoError(t, err)

		assert.Equal(t, "APPROVED", decision.Status)
		assert.Equal(t, adminID, decision.ReviewedBy)
		assert.Equal(t, userID, decision.UserID)
		assert.Equal(t, "CERTIFIED_USER", userRole(t, db, userID))
	})

	t.Run("decisions are final", func(t *testing.T) {
		_, err := svc.DecideCertification(context.Background(), adminID, requestID, ActionReject, nil)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := svc.DecideCertification(context.Background(), adminID, 424242, ActionApprove, nil)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("non admin cannot decide", func(t *testing.T) {
		otherID := createTestUser(t, db, "plain", "plain@example.com", "USER")
		otherRequest := createCertRequest(t, db, otherID)

		_, err := svc.DecideCertification(context.Background(), otherID, otherRequest, ActionApprove, nil)
		assert.ErrorIs(t, err, ErrAdminNotFound)
	})

	t.Run("rejection keeps the reason and the role", func(t *testing.T) {
		rejectedID := createTestUser(t, db, "rejected", "rejected@example.com", "USER")
		rejectedRequest := createCertRequest(t, db, rejectedID)

		reason := "profile incomplete"
		decision, err := svc.DecideCertification(context.Background(), adminID, rejectedRequest, ActionReject, &reason)
		require.NoError(t, err)

		assert.Equal(t, "REJECTED", decision.Status)
		require.NotNil(t, decision.RejectionReason)
		assert.Equal(t, reason, *decision.RejectionReason)
		assert.Equal(t, "USER", userRole(t, db, rejectedID))
	})
}

func TestDecideBlog(t *testing.T) {
	svc, db := setupTestService(t)
	adminID := createTestUser(t, db, "admin", "admin@example.com", "ADMIN")
	authorID := createTestUser(t, db, "author", "author@example.com", "CERTIFIED_USER")

	t.Run("approval publishes the blog", func(t *testing.T) {
		blogID := createPendingBlog(t, db, authorID)

		decision, err := svc.DecideBlog(context.Background(), adminID, blogID, ActionApprove, nil)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", decision.Status)
		assert.Nil(t, decision.ReviewNote)

		var status string
		require.NoError(t, db.QueryRow(`SELECT status FROM blogs WHERE id = $1`, blogID).Scan(&status))
		assert.Equal(t, "APPROVED", status)
	})

	t.Run("rejection keeps the review note", func(t *testing.T) {
		blogID := createPendingBlog(t, db, authorID)

		note := "photos missing attribution"
		decision, err := svc.DecideBlog(context.Background(), adminID, blogID, ActionReject, &note)
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", decision.Status)
		require.NotNil(t, decision.ReviewNote)
		assert.Equal(t, note, *decision.ReviewNote)

		var stored sql.NullString
		require.NoError(t, db.QueryRow(`SELECT review_note FROM blogs WHERE id = $1`, blogID).Scan(&stored))
		assert.Equal(t, note, stored.String)
	})

	t.Run("decided blogs stay decided", func(t *testing.T) {
		blogID := createPendingBlog(t, db, authorID)

		_, err := svc.DecideBlog(context.Background(), adminID, blogID, ActionApprove, nil)
		require.NoError(t, err)

		_, err = svc.DecideBlog(context.Background(), adminID, blogID, ActionReject, nil)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})

	t.Run("unknown blog", func(t *testing.T) {
		_, err := svc.DecideBlog(context.Background(), adminID, 424242, ActionApprove, nil)
		assert.ErrorIs(t, err, ErrBlogNotFound)
	})
}

func TestCertificationLifecycle(t *testing.T) {
	svc, db := setupTestService(t)
	adminID := createTestUser(t, db, "admin", "admin@example.com", "ADMIN")
	userID := createTestUser(t, db, "journey", "journey@example.com", "USER")

	// request, decide, and confirm the user can no longer be re-decided
	requestID := createCertRequest(t, db, userID)

	decision, err := svc.DecideCertification(context.Background(), adminID, requestID, ActionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", decision.Status)
	assert.Equal(t, "CERTIFIED_USER", userRole(t, db, userID))

	_, err = svc.DecideCertification(context.Background(), adminID, requestID, ActionApprove, nil)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}
