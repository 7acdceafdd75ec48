package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/go-badge/badge/internal/scheme"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextUsername     = "auth_username"
	ContextOrganization = "auth_organization"
	ContextOutcome      = "auth_outcome"
)

// Authenticate guards a route with the given authentication strategy. The
// raw Authorization header is handed to the strategy verbatim; the settled
// outcome decides between proceeding, a 401 challenge, and a 500 for
// verification faults that never judged the credential.
func Authenticate(s scheme.Scheme) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome := s.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))

		if !outcome.Authenticated() {
			if outcome.Failure.Internal {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": outcome.Failure.Message,
				})
				return
			}

			if challenge := outcome.Challenge(); challenge != "" {
				c.Header("WWW-Authenticate", challenge)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": outcome.Failure.Message,
			})
			return
		}

		c.Set(ContextUsername, outcome.Credentials.Username)
		c.Set(ContextOrganization, outcome.Credentials.Organization)
		c.Set(ContextOutcome, outcome)
		c.Next()
	}
}

// OutcomeFromContext retrieves the authentication outcome stored by
// Authenticate. The second return is false on unguarded routes.
func OutcomeFromContext(c *gin.Context) (scheme.Outcome, bool) {
	value, exists := c.Get(ContextOutcome)
	if !exists {
		return scheme.Outcome{}, false
	}
	outcome, ok := value.(scheme.Outcome)
	return outcome, ok
}
