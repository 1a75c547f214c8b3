package adminservice

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Action is a moderation decision. Parsing is case-insensitive; anything
// other than approve or reject is refused.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

var ErrInvalidAction = errors.New("action must be APPROVE or REJECT")

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", ErrInvalidAction
	}
}

type CertificationDecision struct {
	RequestID       int64     `json:"request_id"`
	UserID          int64     `json:"user_id"`
	Status          string    `json:"status"`
	ReviewedBy      int64     `json:"reviewed_by"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	DecidedAt       time.Time `json:"decided_at"`
}

type BlogDecision struct {
	BlogID     int64     `json:"blog_id"`
	AuthorID   int64     `json:"author_id"`
	Status     string    `json:"status"`
	ReviewNote *string   `json:"review_note,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

type AdminService struct {
	db *sql.DB
}

func NewAdminService(db *sql.DB) *AdminService {
	return &AdminService{db: db}
}
