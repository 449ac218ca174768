package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ProfileEnsurer lazily creates the display-facing profile row for an
// identity the first time it shows up signed in.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, id, fullName string) error
}

// RequireUser gates protected routes: it verifies the Bearer ID token,
// rejects tokens issued before a sign-out, ensures the profile row
// exists, and puts the identity on the context.
func RequireUser(verifier TokenVerifier, sessions *SessionStore, profiles ProfileEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		id, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		revokedAt, revoked, err := sessions.RevokedAt(c.Request.Context(), id.UID)
		if err != nil {
			// Fail closed: this is the sign-out enforcement point, so
			// an unreachable store must not let revoked tokens through.
			log.Printf("[auth] revocation check for %s: %v", id.UID, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "session check unavailable"})
			c.Abort()
			return
		}
		if revoked && !id.IssuedAt.After(revokedAt) {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "session revoked"})
			c.Abort()
			return
		}

		name := id.Name
		if strings.TrimSpace(name) == "" {
			name = "Anonymous"
		}
		if err := profiles.Ensure(c.Request.Context(), id.UID, name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure profile: " + err.Error()})
			c.Abort()
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// OptionalUser resolves an identity when a valid token is present but
// lets anonymous requests through. Public reads use it so owner-only
// affordances (the "mine" filter) can still see who is asking.
func OptionalUser(verifier TokenVerifier, sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		id, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		revokedAt, revoked, err := sessions.RevokedAt(c.Request.Context(), id.UID)
		if err != nil {
			// Anonymous pass-through; do not attach an identity we
			// could not check against sign-outs.
			log.Printf("[auth] revocation check for %s: %v", id.UID, err)
			c.Next()
			return
		}
		if revoked && !id.IssuedAt.After(revokedAt) {
			c.Next()
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
