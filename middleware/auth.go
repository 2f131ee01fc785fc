package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	TokenHeader = "auth-token"
	UserIDKey   = "userId"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type gateOptions struct {
	queryParam string
}

type GateOption func(*gateOptions)

// WithQueryToken lets the gate fall back to a query parameter when the
// header is absent. Only the websocket route uses it.
func WithQueryToken(param string) GateOption {
	return func(o *gateOptions) { o.queryParam = param }
}

// RequireToken rejects requests without a valid auth-token header and stores
// the verified user id under UserIDKey for downstream handlers.
func RequireToken(verifier TokenVerifier, opts ...GateOption) gin.HandlerFunc {
	var o gateOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		// Skip middleware for OPTIONS requests (CORS preflight)
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := c.GetHeader(TokenHeader)
		if token == "" && o.queryParam != "" {
			token = c.Query(o.queryParam)
		}
		if token == "" {
			c.String(http.StatusUnauthorized, "Access Denied")
			c.Abort()
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			log.Printf("[RequireToken] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.String(http.StatusBadRequest, "Invalid Token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by RequireToken.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
