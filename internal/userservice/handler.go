package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minthway/wayfarer/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("unauthorized access")
)

func NewUserService(db *sql.DB, mb common.MessageProducer) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
	}
}

// CreateUser registers a new account with the USER role, signs it in and
// publishes a user.created event for the welcome email.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (*LoginResult, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Name:  name,
		Email: email,
		Role:  RoleUser,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(tx, ctx, &u)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	authToken, err := s.m.createAuthToken(tx, ctx, u.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	data := struct {
		Name  string
		Email string
	}{
		Name:  u.Name,
		Email: u.Email,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, eventData, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: &u, Token: authToken}, nil
}

// LoginUser verifies the credentials and returns the account with a fresh or
// still-valid token pair.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = s.m.deleteAuthTokens(tx, ctx, user.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	authToken, err := s.m.createAuthToken(tx, ctx, user.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: authToken}, nil
}

func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByAccessToken(ctx, hashToken(token))
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*User, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

func (s *UserService) LogoutUser(ctx context.Context, userID int64) error {
	v := common.NewValidator()
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.deleteAuthTokens(tx, ctx, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// EnsureAdmin creates the bootstrap admin account at startup if it does not
// exist yet. Idempotent across restarts.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := s.m.getUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	u := User{
		Name:  name,
		Email: email,
		Role:  RoleAdmin,
	}

	if err := u.Password.set(password); err != nil {
		return err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.insertUser(tx, ctx, &u)
	if err != nil {
		_ = tx.Rollback()
		// another instance may have won the race
		if errors.Is(err, ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	return tx.Commit()
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
