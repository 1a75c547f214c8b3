package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

// UniqueViolation is a helper function to check if the error is a unique
// constraint error on the named constraint.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getOrCreateRole resolves the role row for name, creating it lazily. The
// upsert makes concurrent first uses race-free.
func getOrCreateRole(q execer, ctx context.Context, name Role) (int64, error) {
	query := `
		INSERT INTO roles (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var id int64
	err := q.QueryRowContext(ctx, query, string(name)).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (m *DBModel) insertUser(tx *sql.Tx, ctx context.Context, u *User) error {
	roleID, err := getOrCreateRole(tx, ctx, u.Role)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (name, email, password, role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at, version`

	err = tx.QueryRowContext(ctx, query, u.Name, u.Email, u.Password.hash, roleID).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password, r.name, u.created_at, u.updated_at, u.version
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1 AND NOT u.deleted`

	var u User
	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, r.name, u.created_at, u.updated_at, u.version
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 AND NOT u.deleted`

	var u User
	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}
