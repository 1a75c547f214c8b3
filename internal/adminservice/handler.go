package adminservice

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrRequestNotFound = errors.New("certification request not found")
	ErrBlogNotFound    = errors.New("blog not found")
	ErrAdminNotFound   = errors.New("admin account not found")
	ErrAlreadyDecided  = errors.New("already decided")
)

// DecideCertification settles a pending certification request. Approval
// promotes the requesting user to CERTIFIED_USER in the same transaction, so
// a crash can never leave an approved request with an unpromoted user.
// Decisions are final: a second decision on the same request fails.
func (s *AdminService) DecideCertification(ctx context.Context, adminID, requestID int64, action Action, reason *string) (*CertificationDecision, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := s.checkAdmin(tx, ctx, adminID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	var userID int64
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, status
		FROM certification_requests
		WHERE id = $1 AND NOT deleted
		FOR UPDATE`, requestID).Scan(&userID, &status)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRequestNotFound
		default:
			return nil, err
		}
	}

	if status != "PENDING" {
		_ = tx.Rollback()
		return nil, ErrAlreadyDecided
	}

	decision := &CertificationDecision{
		RequestID:  requestID,
		UserID:     userID,
		ReviewedBy: adminID,
	}

	switch action {
	case ActionApprove:
		decision.Status = "APPROVED"
	case ActionReject:
		decision.Status = "REJECTED"
		decision.RejectionReason = reason
	default:
		_ = tx.Rollback()
		return nil, ErrInvalidAction
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE certification_requests
		SET status = $1, reviewed_by = $2, rejection_reason = $3
		WHERE id = $4
		RETURNING updated_at`,
		decision.Status, adminID, decision.RejectionReason, requestID).Scan(&decision.DecidedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if action == ActionApprove {
		if err := s.promoteUser(tx, ctx, userID); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return decision, nil
}

// DecideBlog settles a pending blog. The review note is kept on rejection so
// the author can see why, and cleared on approval.
func (s *AdminService) DecideBlog(ctx context.Context, adminID, blogID int64, action Action, note *string) (*BlogDecision, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := s.checkAdmin(tx, ctx, adminID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	var authorID int64
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT author_id, status
		FROM blogs
		WHERE id = $1 AND NOT deleted
		FOR UPDATE`, blogID).Scan(&authorID, &status)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrBlogNotFound
		default:
			return nil, err
		}
	}

	if status != "PENDING" {
		_ = tx.Rollback()
		return nil, ErrAlreadyDecided
	}

	decision := &BlogDecision{
		BlogID:   blogID,
		AuthorID: authorID,
	}

	switch action {
	case ActionApprove:
		decision.Status = "APPROVED"
	case ActionReject:
		decision.Status = "REJECTED"
		decision.ReviewNote = note
	default:
		_ = tx.Rollback()
		return nil, ErrInvalidAction
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE blogs
		SET status = $1, review_note = $2, version = version + 1
		WHERE id = $3
		RETURNING updated_at`,
		decision.Status, decision.ReviewNote, blogID).Scan(&decision.DecidedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return decision, nil
}

func (s *AdminService) checkAdmin(tx *sql.Tx, ctx context.Context, adminID int64) error {
	var role string
	err := tx.QueryRowContext(ctx, `
		SELECT r.name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 AND NOT u.deleted`, adminID).Scan(&role)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrAdminNotFound
		default:
			return err
		}
	}

	if role != "ADMIN" {
		return ErrAdminNotFound
	}

	return nil
}

func (s *AdminService) promoteUser(tx *sql.Tx, ctx context.Context, userID int64) error {
	var roleID int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO roles (name)
		VALUES ('CERTIFIED_USER')
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`).Scan(&roleID)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET role_id = $1, version = version + 1
		WHERE id = $2 AND NOT deleted`, roleID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRequestNotFound
	}

	return nil
}
