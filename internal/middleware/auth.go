// Package middleware provides shared gin middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "auth_user_id"
	identityKey = "auth_identity"
)

// RequireAuth validates the Bearer token on each request and stores the
// identity in the gin context.
func RequireAuth(userSvc service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication token not found"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		ident, err := userSvc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn(c.Request.Context()).Err(err).Msg("Auth: token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}

		c.Set(userIDKey, ident.UserID)
		c.Set(identityKey, ident)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(int64)
	return userID
}

// Identity returns the authenticated identity set by RequireAuth
func Identity(c *gin.Context) *service.Identity {
	v, _ := c.Get(identityKey)
	ident, _ := v.(*service.Identity)
	return ident
}
