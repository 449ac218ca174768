package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	identity *Identity
	err      error
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, idToken string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.identity == nil {
		return nil, errors.New("no identity configured")
	}
	id := *f.identity
	return &id, nil
}

type fakeEnsurer struct {
	calls []string
	names []string
	err   error
}

func (f *fakeEnsurer) Ensure(ctx context.Context, id, fullName string) error {
	f.calls = append(f.calls, id)
	f.names = append(f.names, fullName)
	return f.err
}

func gatedRouter(verifier TokenVerifier, sessions *SessionStore, ensurer ProfileEnsurer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireUser(verifier, sessions, ensurer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": UserID(c)})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequireUser_MissingToken(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	r := gatedRouter(&fakeVerifier{}, sessions, &fakeEnsurer{})

	rr := doGet(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireUser_InvalidToken(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	r := gatedRouter(&fakeVerifier{err: errors.New("bad")}, sessions, &fakeEnsurer{})

	rr := doGet(r, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireUser_ValidTokenEnsuresProfile(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	ensurer := &fakeEnsurer{}
	verifier := &fakeVerifier{identity: &Identity{UID: "uid-1", Email: "a@b.c", Name: "Alice", IssuedAt: time.Now()}}
	r := gatedRouter(verifier, sessions, ensurer)

	rr := doGet(r, "/me", "token")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "uid-1")
	require.Len(t, ensurer.calls, 1)
	assert.Equal(t, "uid-1", ensurer.calls[0])
	assert.Equal(t, "Alice", ensurer.names[0])
}

func TestRequireUser_BlankNameFallsBackToAnonymous(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	ensurer := &fakeEnsurer{}
	verifier := &fakeVerifier{identity: &Identity{UID: "uid-1", IssuedAt: time.Now()}}
	r := gatedRouter(verifier, sessions, ensurer)

	rr := doGet(r, "/me", "token")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, ensurer.names, 1)
	assert.Equal(t, "Anonymous", ensurer.names[0])
}

func TestRequireUser_RejectsTokensIssuedBeforeSignOut(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	require.NoError(t, sessions.MarkRevoked(context.Background(), "uid-1"))

	stale := &fakeVerifier{identity: &Identity{UID: "uid-1", IssuedAt: time.Now().Add(-time.Hour)}}
	r := gatedRouter(stale, sessions, &fakeEnsurer{})
	rr := doGet(r, "/me", "token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	fresh := &fakeVerifier{identity: &Identity{UID: "uid-1", IssuedAt: time.Now().Add(time.Hour)}}
	r = gatedRouter(fresh, sessions, &fakeEnsurer{})
	rr = doGet(r, "/me", "token")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireUser_SessionStoreDownFailsClosed(t *testing.T) {
	sessions, _, mr := setupSessions(t)
	mr.Close()

	ensurer := &fakeEnsurer{}
	verifier := &fakeVerifier{identity: &Identity{UID: "uid-1", IssuedAt: time.Now()}}
	r := gatedRouter(verifier, sessions, ensurer)

	rr := doGet(r, "/me", "token")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, ensurer.calls)
}

func TestOptionalUser_AnonymousPassesThrough(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/feed", OptionalUser(&fakeVerifier{err: errors.New("no session")}, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": UserID(c)})
	})

	rr := doGet(r, "/feed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":""`)
}

func TestOptionalUser_ResolvesIdentityWhenPresent(t *testing.T) {
	sessions, _, _ := setupSessions(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := &fakeVerifier{identity: &Identity{UID: "uid-9", IssuedAt: time.Now()}}
	r.GET("/feed", OptionalUser(verifier, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": UserID(c)})
	})

	rr := doGet(r, "/feed", "token")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "uid-9")
}

func TestOptionalUser_SessionStoreDownStaysAnonymous(t *testing.T) {
	sessions, _, mr := setupSessions(t)
	mr.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := &fakeVerifier{identity: &Identity{UID: "uid-9", IssuedAt: time.Now()}}
	r.GET("/feed", OptionalUser(verifier, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": UserID(c)})
	})

	rr := doGet(r, "/feed", "token")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":""`)
}
