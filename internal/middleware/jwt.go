package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// Resolver maps a bearer token to the local user it identifies.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// JWT returns a middleware that resolves the bearer token and sets the user in context.
// A missing token is 401; a token that fails verification is 403.
func JWT(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "no token provided")
			c.Abort()
			return
		}
		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			WriteError(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserEmail, user.Email)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserID returns the authenticated user id, or 0 outside the JWT middleware.
func UserID(c *gin.Context) int64 {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}
