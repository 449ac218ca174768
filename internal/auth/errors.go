package auth

import "errors"

// AuthError is a rejection from the identity provider, surfaced with
// the provider's own message (bad credentials, duplicate email, weak
// password, unconfirmed account).
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUserDisabled       = "USER_DISABLED"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeSignUpRejected     = "SIGNUP_REJECTED"
)

// AsAuthError unwraps err into an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
