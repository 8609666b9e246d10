package authentication

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tokenworks/todo-auth-service/internal/token"
	"github.com/tokenworks/todo-auth-service/internal/user"
)

// AuthMiddleware guards routes with a bearer access token. The codec leaves
// expiry to the caller, so the normal-path rejection of expired tokens
// happens here.
func AuthMiddleware(userService user.UserService, codec *token.Codec, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
			return
		}
		rawToken := parts[1]

		claims, err := codec.Verify(rawToken)
		if err != nil {
			logger.Warn("access token parse failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}
		if claims.Expired(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token expired"})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			logger.Error("invalid subject claim", zap.Error(err), zap.String("subject", claims.Subject))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		u, err := userService.ReadUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			logger.Error("failed to load user by ID", zap.Error(err), zap.Uint("userID", userID))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not validate user"})
			return
		}

		c.Set(user.ContextUserKey, u)
		c.Next()
	}
}

// RoleMiddleware restricts a route group to a single role.
func RoleMiddleware(requiredRole user.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(user.ContextUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		u := raw.(*user.User)
		if u.Role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
