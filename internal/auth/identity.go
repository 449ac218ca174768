package auth

import (
	"context"
	"time"
)

// Identity is a verified user of the hosted identity provider.
type Identity struct {
	UID      string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"full_name,omitempty"`
	IssuedAt time.Time `json:"-"`
}

// Session is what a successful credential exchange returns.
type Session struct {
	Identity
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// IdentityClient is the credential side of the identity provider.
type IdentityClient interface {
	// SignIn exchanges email/password for a session. Bad credentials
	// come back as *AuthError.
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignUp creates the account and kicks off email verification; it
	// does not authenticate. Returns the new identity's uid.
	SignUp(ctx context.Context, email, password, fullName string) (string, error)
	// SignOut revokes the identity's refresh tokens at the provider.
	SignOut(ctx context.Context, uid string) error
}

// TokenVerifier checks a bearer ID token and returns the identity it
// was issued to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*Identity, error)
}
