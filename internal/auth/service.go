package auth

import (
	"context"
	"fmt"
	"strings"
)

// Service orchestrates the session transitions: credential exchange at
// the provider, the lazy profile ensure, and revocation bookkeeping.
type Service struct {
	identity IdentityClient
	sessions *SessionStore
	profiles ProfileEnsurer
}

func NewService(identity IdentityClient, sessions *SessionStore, profiles ProfileEnsurer) *Service {
	return &Service{identity: identity, sessions: sessions, profiles: profiles}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.identity.SignIn(ctx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		return nil, err
	}

	name := sess.Name
	if strings.TrimSpace(name) == "" {
		name = "Anonymous"
	}
	if err := s.profiles.Ensure(ctx, sess.UID, name); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	if err := s.sessions.ClearRevoked(ctx, sess.UID); err != nil {
		return nil, err
	}

	return sess, nil
}

// SignUp creates the account but never authenticates: the provider
// defers activation behind email confirmation, and no profile row is
// written until the identity actually signs in.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) error {
	_, err := s.identity.SignUp(ctx, strings.ToLower(strings.TrimSpace(email)), password, strings.TrimSpace(fullName))
	return err
}

func (s *Service) SignOut(ctx context.Context, uid string) error {
	if err := s.identity.SignOut(ctx, uid); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return s.sessions.MarkRevoked(ctx, uid)
}
