package userservice

import (
	"database/sql"
	"time"

	"github.com/minthway/wayfarer/internal/common"
)

// Role is the closed set of account roles. Authorization checks go through
// the capability methods below instead of comparing raw strings.
type Role string

const (
	RoleUser          Role = "USER"
	RoleCertifiedUser Role = "CERTIFIED_USER"
	RoleAdmin         Role = "ADMIN"

	AccessTokenTime  time.Duration = 7 * 24 * time.Hour
	RefreshTokenTime time.Duration = 30 * 24 * time.Hour
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleCertifiedUser || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanAuthorBlogs reports whether the role may create travel blogs. Authoring
// is unlocked by the certification workflow; admins always may.
func (r Role) CanAuthorBlogs() bool {
	return r == RoleCertifiedUser || r == RoleAdmin
}

var (
	AnonymousUser = User{}
)

type UserService struct {
	m  *DBModel
	mb common.MessageProducer
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// AuthToken is the opaque bearer credential pair issued at login. Only the
// hashes are stored; the expiry drives the access-token cookie lifetime.
type AuthToken struct {
	AccessTokenPlain   string    `json:"access_token"`
	AccessTokenHash    []byte    `json:"-"`
	RefreshTokenPlain  string    `json:"refresh_token"`
	RefreshTokenHash   []byte    `json:"-"`
	UserID             int64     `json:"user_id"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

// LoginResult is returned by CreateUser and LoginUser: registering signs the
// user in immediately.
type LoginResult struct {
	User  *User      `json:"user"`
	Token *AuthToken `json:"token"`
}
