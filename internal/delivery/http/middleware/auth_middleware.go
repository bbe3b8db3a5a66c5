package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/speeddate-backend/internal/usecase/auth"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	tokens *auth.TokenUseCase
}

func NewAuthMiddleware(tokens *auth.TokenUseCase) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

type errorBody struct {
	Error string `json:"error"`
}

// RequireAuth verifies the bearer token and stores the caller's id and role
// on the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "missing authorization token"})
			return
		}

		principal, err := m.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}

		c.Set(ContextUserID, principal.UserID)
		c.Set(ContextRole, principal.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "admin role required"})
			return
		}
		c.Next()
	}
}
