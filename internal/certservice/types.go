package certservice

import (
	"database/sql"
	"time"
)

// RequestStatus is the review state of a certification request. It follows
// the same lifecycle as blog moderation: PENDING until an admin decides.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

type CertificationRequest struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	UserName        string        `json:"user_name"`
	UserEmail       string        `json:"user_email"`
	Status          RequestStatus `json:"status"`
	ReviewedBy      *int64        `json:"reviewed_by,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type CertModel struct {
	db *sql.DB
}

type CertService struct {
	m *CertModel
}
