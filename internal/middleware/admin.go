package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"mebe/internal/session" // Session resolution with the master override
)

// AdminOnlyMiddleware checks the caller's role on each request. The check
// goes through the session manager so the master-admin override applies
// even when the stored flag says otherwise.
func AdminOnlyMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone, exists := c.Get(PhoneKey) // Get phone from context
		// Check if phone exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := sessions.Resolve(c.Request.Context(), phone.(string)) // Resolve the user record
		if err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// Check the resolved admin flag (override included)
		if !user.IsAdmin {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
