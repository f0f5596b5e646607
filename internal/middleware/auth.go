package middleware

import (
	"errors"
	"net/http"
	"strings"

	"Synergy_Link/internal/pkg"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "email"
)

// AuthMiddleware verifies the bearer token issued by the identity provider
// and puts the caller's id into the context.
func AuthMiddleware(signer *pkg.TokenSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthenticated(c, "invalid authorization format")
			return
		}

		claims, err := signer.ParseAccess(parts[1])
		if err != nil {
			if errors.Is(err, pkg.ErrTokenExpired) {
				abortUnauthenticated(c, "token expired")
				return
			}
			abortUnauthenticated(c, "invalid token")
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": pkg.KindUnauthenticated, "msg": msg})
}

// CurrentUserID returns the authenticated caller or an unauthenticated error.
func CurrentUserID(c *gin.Context) (string, error) {
	id := c.GetString(ContextUserIDKey)
	if id == "" {
		return "", pkg.Unauthenticated("sign in required")
	}
	return id, nil
}

func CurrentEmail(c *gin.Context) string {
	return c.GetString(ContextEmailKey)
}
