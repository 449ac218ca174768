package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix = "session:revoked:" // session:revoked:{uid} -> unix seconds of sign-out
	eventChannel     = "session:events"   // pub/sub stream of session transitions
	revokedTTL       = 30 * 24 * time.Hour
)

// SessionStore keeps sign-out revocation markers and publishes session
// change events. ID tokens stay valid at the provider until they
// expire, so sign-out is enforced here: tokens issued before the
// marker are rejected by the gate.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

type SessionEvent struct {
	Event string    `json:"event"` // "signed_in" | "signed_out"
	UID   string    `json:"uid"`
	At    time.Time `json:"at"`
}

// MarkRevoked records a sign-out: tokens issued at or before now stop
// passing the gate.
func (s *SessionStore) MarkRevoked(ctx context.Context, uid string) error {
	now := time.Now()
	key := revokedKeyPrefix + uid
	if err := s.client.Set(ctx, key, now.Unix(), revokedTTL).Err(); err != nil {
		return fmt.Errorf("mark revoked: %w", err)
	}
	s.publish(ctx, SessionEvent{Event: "signed_out", UID: uid, At: now})
	return nil
}

// ClearRevoked removes the marker after a fresh sign-in.
func (s *SessionStore) ClearRevoked(ctx context.Context, uid string) error {
	if err := s.client.Del(ctx, revokedKeyPrefix+uid).Err(); err != nil {
		return fmt.Errorf("clear revoked: %w", err)
	}
	s.publish(ctx, SessionEvent{Event: "signed_in", UID: uid, At: time.Now()})
	return nil
}

// RevokedAt returns when the uid last signed out, if it did and no
// sign-in cleared the marker since.
func (s *SessionStore) RevokedAt(ctx context.Context, uid string) (time.Time, bool, error) {
	v, err := s.client.Get(ctx, revokedKeyPrefix+uid).Int64()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("revoked lookup: %w", err)
	}
	return time.Unix(v, 0), true, nil
}

func (s *SessionStore) publish(ctx context.Context, ev SessionEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	// Session events are advisory; a failed publish never fails the
	// transition itself.
	s.client.Publish(ctx, eventChannel, data)
}
