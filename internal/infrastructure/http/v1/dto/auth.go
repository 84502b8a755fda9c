package dto

import "opsboard/internal/domain/auth"

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the token pair and account profile.
type LoginResponse struct {
	auth.TokenPair
	User *auth.User `json:"user"`
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
