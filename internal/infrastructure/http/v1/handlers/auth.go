package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opsboard/internal/core/appcontext"
	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/auth"
	"opsboard/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves account endpoints.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{TokenPair: *pair, User: user})
}

// Refresh rotates a refresh token for a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout revokes every refresh token of the authenticated user.
func (h *AuthHandler) Logout(c *gin.Context) {
	u := appcontext.GetUser(c.Request.Context())
	if u == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}
	userID, err := strconv.ParseInt(u.UserID, 10, 64)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid session"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Register creates an account. Admin-only; the seed binary creates the
// first admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
