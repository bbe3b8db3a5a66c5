package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/middleware"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// MeResponse is the authenticated caller as seen by this service
type MeResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Me returns current user info
// @Summary Get current user
// @Description Get the caller's id and role from the bearer token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		UserID: userID.String(),
		Role:   c.GetString(middleware.ContextRole),
	})
}
