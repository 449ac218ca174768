package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxIdentity = "identity"
	CtxUserID   = "user_id"
)

// SetIdentity stores the verified identity on the request context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(CtxIdentity, id)
	c.Set(CtxUserID, id.UID)
}

// CurrentIdentity returns the verified identity for this request, if
// the session gate ran and accepted a token.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// UserID returns the authenticated user's id, or "" when anonymous.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}
