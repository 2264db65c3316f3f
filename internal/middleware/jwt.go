package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/backend/internal/auth"
	"github.com/stagepass/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// UserID returns the authenticated user's ID from the gin context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Denied(c)
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Denied(c)
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Denied(c)
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// OptionalJWT sets user claims when a valid bearer token is present and
// continues anonymously otherwise. Used on read endpoints whose results
// depend on who is asking, such as private artist and venue listings.
func OptionalJWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}
		if claims, err := jwtService.Validate(parts[1]); err == nil {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserEmail, claims.Email)
		}
		c.Next()
	}
}
