package certservice

import (
	"context"
	"database/sql"
)

func NewCertService(db *sql.DB) *CertService {
	return &CertService{m: &CertModel{db: db}}
}

// RequestCertification opens a certification request. A user may hold at
// most one pending request at a time; once that request is decided they are
// free to submit another.
func (s *CertService) RequestCertification(ctx context.Context, userID int64) (*CertificationRequest, error) {
	return s.m.insertRequest(ctx, userID)
}

// GetRequestByUser returns the user's most recent certification request.
func (s *CertService) GetRequestByUser(ctx context.Context, userID int64) (*CertificationRequest, error) {
	return s.m.getLatestRequestByUser(ctx, userID)
}

// ListPendingRequests returns the review queue, oldest first.
func (s *CertService) ListPendingRequests(ctx context.Context) ([]CertificationRequest, error) {
	return s.m.getPendingRequests(ctx)
}
