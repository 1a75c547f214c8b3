package userservice

import (
	"context"
	"testing"

	"github.com/minthway/wayfarer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}

func setupTestService(t *testing.T) (*UserService, *mockProducer) {
	db := common.TestDB("file://../../migrations", t)

	mb := new(mockProducer)
	mb.On("Publish", mock.Anything, mock.Anything, common.UserCreatedKey, common.UserExchange).Return(nil)

	return NewUserService(db, mb), mb
}

func TestCreateUser(t *testing.T) {
	s, mb := setupTestService(t)
	ctx := context.Background()

	res, err := s.CreateUser(ctx, "Aung Min", "aung@example.com", "Password1!")
	assert.NoError(t, err)
	assert.Equal(t, RoleUser, res.User.Role)
	assert.NotZero(t, res.User.ID)
	assert.Len(t, res.Token.AccessTokenPlain, 26)
	mb.AssertCalled(t, "Publish", mock.Anything, mock.Anything, common.UserCreatedKey, common.UserExchange)

	// duplicate email
	_, err = s.CreateUser(ctx, "Other", "aung@example.com", "Password1!")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginUser(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "Aung Min", "aung@example.com", "Password1!")
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		email       string
		password    string
		expectedErr error
	}{
		{name: "valid credentials", email: "aung@example.com", password: "Password1!"},
		{name: "wrong password", email: "aung@example.com", password: "Password2!", expectedErr: ErrAuthenticationFailure},
		{name: "unknown email", email: "nobody@example.com", password: "Password1!", expectedErr: ErrAuthenticationFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.LoginUser(ctx, tc.email, tc.password)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, res.Token.AccessTokenPlain)
		})
	}
}

func TestGetUserByAccessToken(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	res, err := s.CreateUser(ctx, "Aung Min", "aung@example.com", "Password1!")
	assert.NoError(t, err)

	user, err := s.GetUserByAccessToken(ctx, res.Token.AccessTokenPlain)
	assert.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
	assert.Equal(t, RoleUser, user.Role)

	// token invalidated by logout
	err = s.LogoutUser(ctx, user.ID)
	assert.NoError(t, err)

	_, err = s.GetUserByAccessToken(ctx, res.Token.AccessTokenPlain)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	err := s.EnsureAdmin(ctx, "Admin", "admin@example.com", "Admin123!")
	assert.NoError(t, err)

	// idempotent
	err = s.EnsureAdmin(ctx, "Admin", "admin@example.com", "Admin123!")
	assert.NoError(t, err)

	res, err := s.LoginUser(ctx, "admin@example.com", "Admin123!")
	assert.NoError(t, err)
	assert.True(t, res.User.Role.IsAdmin())
}
