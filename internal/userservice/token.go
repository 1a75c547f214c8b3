package userservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"errors"
	"time"
)

type token struct {
	plain  string
	hash   []byte
	expiry time.Time
}

func hashToken(t string) []byte {
	hash := sha256.Sum256([]byte(t))
	return hash[:]
}

func newToken(ttl time.Duration) (*token, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	t := &token{
		plain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		expiry: time.Now().Add(ttl),
	}
	t.hash = hashToken(t.plain)

	return t, nil
}

func (m *DBModel) createAuthToken(tx *sql.Tx, ctx context.Context, userID int64) (*AuthToken, error) {
	accessToken, err := newToken(AccessTokenTime)
	if err != nil {
		return nil, err
	}

	refreshToken, err := newToken(RefreshTokenTime)
	if err != nil {
		return nil, err
	}

	authToken := &AuthToken{
		AccessTokenPlain:   accessToken.plain,
		AccessTokenHash:    accessToken.hash,
		RefreshTokenPlain:  refreshToken.plain,
		RefreshTokenHash:   refreshToken.hash,
		UserID:             userID,
		AccessTokenExpiry:  accessToken.expiry,
		RefreshTokenExpiry: refreshToken.expiry,
	}

	query := `
		INSERT INTO auth_tokens (access_token, refresh_token, user_id, access_token_expiry, refresh_token_expiry)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.ExecContext(ctx, query, authToken.AccessTokenHash, authToken.RefreshTokenHash, authToken.UserID, authToken.AccessTokenExpiry, authToken.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	return authToken, nil
}

func (m *DBModel) deleteAuthTokens(tx *sql.Tx, ctx context.Context, userID int64) error {
	query := `
		DELETE FROM auth_tokens
		WHERE user_id = $1`

	_, err := tx.ExecContext(ctx, query, userID)
	return err
}

// getUserByAccessToken resolves an unexpired access token to its user and
// role in one query.
func (m *DBModel) getUserByAccessToken(ctx context.Context, hash []byte) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, r.name, u.created_at, u.updated_at, u.version
		FROM users u
		INNER JOIN auth_tokens t ON u.id = t.user_id
		INNER JOIN roles r ON r.id = u.role_id
		WHERE t.access_token = $1 AND t.access_token_expiry > $2 AND NOT u.deleted`

	var u User
	err := m.db.QueryRowContext(ctx, query, hash, time.Now()).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.Version)
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
