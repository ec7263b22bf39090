package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackerext/article-templates/backend/internal/host"
)

// IdentityTokenHeader carries the opaque per-request token the host
// platform hands the extension frontend.
const IdentityTokenHeader = "X-Identity-Token"

const identityKey = "identity"

// Identity resolves the acting identity for each request and aborts
// with 401 when the token is missing or the host rejects it.
func Identity(identities host.Identities) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(IdentityTokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity token"})
			c.Abort()
			return
		}

		actor, err := identities.Resolve(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "identity resolution failed"})
			c.Abort()
			return
		}

		c.Set(identityKey, actor)
		c.Next()
	}
}

// GetIdentity returns the resolved acting identity. The bool is false
// on routes that skipped the Identity middleware.
func GetIdentity(c *gin.Context) (host.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(host.Identity)
	return actor, ok
}
