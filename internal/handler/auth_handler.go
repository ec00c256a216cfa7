package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "login successful", gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "password updated", nil)
}
