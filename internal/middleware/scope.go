package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/pkg/response"
)

// RequireScope returns a middleware that allows only users holding the
// scope through a global role. Organization-scoped checks live in the
// handlers, where the organization in question is known.
func RequireScope(gate *access.Gate, scope access.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			response.Denied(c)
			c.Abort()
			return
		}
		allowed, err := gate.HasScope(c.Request.Context(), userID, scope, nil)
		if err != nil || !allowed {
			response.Denied(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
