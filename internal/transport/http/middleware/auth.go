package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"paperarchive/internal/app"
	"paperarchive/internal/transport/http/response"
)

const (
	ContextIdentityKey = "identity"
	ContextRoleKey     = "role"
)

// TokenFromRequest returns the session token from the cookie, falling back
// to an "Authorization: Bearer" header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token)
	}
	const prefix = "Bearer "
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	return ""
}

// AuthAdmin lets the request through only with a token that validates to
// the admin role.
func AuthAdmin(authService *app.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrInvalidToken) {
				response.Abort(c, http.StatusUnauthorized, "unauthorized")
				return
			}
			logrus.WithError(err).Error("token validation failed")
			response.Abort(c, http.StatusInternalServerError, "authentication unavailable")
			return
		}
		if claims.Role != app.RoleAdmin {
			response.Abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		c.Set(ContextIdentityKey, claims.Identity)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// Identity returns the authenticated identity set by AuthAdmin.
func Identity(c *gin.Context) string {
	return c.GetString(ContextIdentityKey)
}
