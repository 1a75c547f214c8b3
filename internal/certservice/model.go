package certservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrUserNotFound         = errors.New("user does not exist")
	ErrPendingRequestExists = errors.New("a pending certification request already exists")
)

const certColumns = `
	cr.id, cr.user_id, u.name, u.email, cr.status, cr.reviewed_by,
	cr.rejection_reason, cr.created_at, cr.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*CertificationRequest, error) {
	var r CertificationRequest
	err := row.Scan(
		&r.ID, &r.UserID, &r.UserName, &r.UserEmail, &r.Status, &r.ReviewedBy,
		&r.RejectionReason, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *CertModel) insertRequest(ctx context.Context, userID int64) (*CertificationRequest, error) {
	query := `
		INSERT INTO certification_requests (user_id)
		VALUES ($1)
		RETURNING id, status, created_at, updated_at`

	r := &CertificationRequest{UserID: userID}
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "certification_requests_pending_user_idx":
			return nil, ErrPendingRequestExists
		case errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "certification_requests_user_id_fkey":
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	return r, nil
}

// getLatestRequestByUser returns the user's most recent active request,
// whatever its state.
func (m *CertModel) getLatestRequestByUser(ctx context.Context, userID int64) (*CertificationRequest, error) {
	query := `
		SELECT` + certColumns + `
		FROM certification_requests cr
		JOIN users u ON u.id = cr.user_id
		WHERE cr.user_id = $1 AND NOT cr.deleted
		ORDER BY cr.created_at DESC, cr.id DESC
		LIMIT 1`

	r, err := scanRequest(m.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return r, nil
}

func (m *CertModel) getPendingRequests(ctx context.Context) ([]CertificationRequest, error) {
	// oldest first: review queue order
	query := `
		SELECT` + certColumns + `
		FROM certification_requests cr
		JOIN users u ON u.id = cr.user_id
		WHERE cr.status = 'PENDING' AND NOT cr.deleted
		ORDER BY cr.created_at ASC, cr.id ASC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []CertificationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}

	return requests, rows.Err()
}
