// Package auth handles user accounts and JWT session tokens.
package auth

import (
	"context"
	"strings"
	"time"

	"opsboard/internal/core/apperror"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// User is an account that can sign in to the dashboard.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (in *RegisterInput) Validate() error {
	if !strings.Contains(in.Email, "@") {
		return apperror.NewValidation("invalid email").WithDetail("email", in.Email)
	}
	if len(in.Password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters")
	}
	switch in.Role {
	case "", RoleAdmin, RoleManager:
	default:
		return apperror.NewValidation("invalid role").WithDetail("role", in.Role)
	}
	return nil
}

// RefreshToken is a stored, hashed refresh credential. Only the hash
// ever touches the database; the raw token lives in the client.
type RefreshToken struct {
	ID            int64      `db:"id"`
	UserID        int64      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason *string    `db:"revoked_reason"`
}

// IsValid reports whether the token can still be exchanged.
func (t *RefreshToken) IsValid() bool {
	if t.RevokedAt != nil {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}

// TokenPair contains the access and refresh tokens handed to a client.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// TokenRepository persists refresh tokens.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID int64, reason string) error
	RevokeAllUserTokens(ctx context.Context, userID int64, reason string) error
}
