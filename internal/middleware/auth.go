package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/config"
	"learnhub/api/internal/models"
	"learnhub/api/internal/security"
)

// Context keys shared with handlers.
const (
	CtxUser   = "current_user"
	CtxClaims = "access_claims"
	CtxToken  = "access_token"
)

type SessionSource interface {
	FindActiveByToken(ctx context.Context, token string) (models.Session, error)
}

type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Auth enforces both halves of request authentication: the token's
// signature must verify AND its session row must still be active. The two
// failure modes answer with distinct codes so clients can tell a revoked
// session from a malformed or expired token.
func Auth(cfg *config.AppConfig, users UserSource, sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		session, err := sessions.FindActiveByToken(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_revoked"})
			return
		}

		if session.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		c.Set(CtxToken, tokenStr)
		c.Set(CtxClaims, *claims)
		c.Set(CtxUser, user)

		c.Next()
	}
}
