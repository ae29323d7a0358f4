// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/pkg/config"
)

// RequestIdentity carries the visitor and session identifiers extracted
// from the request. Either may be empty; handlers decide what absence
// means for their endpoint.
type RequestIdentity struct {
	VisitorID string
	SessionID string
	Consent   string
}

// IdentityMiddleware extracts the visitor cookie, the session header, and
// the consent cookie. It never rejects a request; identity is optional.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := &RequestIdentity{
			SessionID: c.GetHeader("X-Haven-Session-ID"),
		}

		if visitorID, err := c.Cookie(config.VisitorCookieName); err == nil {
			identity.VisitorID = visitorID
		}
		if consent, err := c.Cookie(config.ConsentCookieName); err == nil {
			identity.Consent = consent
		}

		c.Set("identity", identity)
		c.Next()
	}
}

// GetRequestIdentity retrieves the request identity from gin context
func GetRequestIdentity(c *gin.Context) (*RequestIdentity, bool) {
	value, exists := c.Get("identity")
	if !exists {
		return nil, false
	}

	identity, ok := value.(*RequestIdentity)
	return identity, ok
}
