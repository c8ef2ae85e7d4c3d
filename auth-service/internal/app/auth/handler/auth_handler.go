package handler

import (
	"net/http"

	"shopcatalog/auth-service/internal/app/auth/entity"
	"shopcatalog/auth-service/internal/app/auth/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// Register - POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, resp)
}

// Login - POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// GetMe - GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

// UpdateProfile - PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.UpdateProfileRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

// ForgotPassword - POST /auth/forgot-password.
// Ответ одинаковый для существующего и неизвестного email
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req entity.ForgotPasswordRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "If the email is registered, a reset link has been sent")
}

// ResetPassword - POST /auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req entity.ResetPasswordRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}

	resp, err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.GetString(ctxUserID))
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}
