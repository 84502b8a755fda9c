package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"opsboard/internal/core/appcontext"
	"opsboard/internal/core/apperror"
	"opsboard/pkg/logger"
)

const defaultRefreshTTL = 7 * 24 * time.Hour

// Service implements sign-up, sign-in and token refresh.
type Service struct {
	repo       Repository
	tokens     TokenRepository
	issuer     *TokenIssuer
	refreshTTL time.Duration
}

func NewService(repo Repository, tokens TokenRepository, issuer *TokenIssuer) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		issuer:     issuer,
		refreshTTL: defaultRefreshTTL,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	role := in.Role
	if role == "" {
		role = RoleManager
	}
	u := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies credentials and returns a fresh token pair.
// Unknown email and bad password produce the same error so the
// endpoint does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Warn(ctx, "failed login attempt", "email", email)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	pair, err := s.generateTokenPair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokens.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	u, err := s.repo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}

	if err := s.tokens.RevokeRefreshToken(ctx, token.ID, "refreshed"); err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, u)
}

// Logout revokes every refresh token the user holds.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.tokens.RevokeAllUserTokens(ctx, userID, "logout")
}

// ParseToken is the middleware hook: it turns a bearer token into the
// request-scoped user context.
func (s *Service) ParseToken(tokenString string) (*appcontext.UserContext, error) {
	return s.issuer.Parse(tokenString)
}

func (s *Service) generateTokenPair(ctx context.Context, u *User) (*TokenPair, error) {
	accessToken, expiresAt, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}

	raw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	token := &RefreshToken{
		UserID:    u.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(s.refreshTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.SaveRefreshToken(ctx, token); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
