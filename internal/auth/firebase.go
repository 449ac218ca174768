package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/codeprogress/codeprogress-backend/config"
)

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client
func InitializeFirebase(cfg *config.FirebaseConfig) (*fbauth.Client, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}

// FirebaseIdentity implements IdentityClient against Firebase Auth.
// Account creation and token revocation go through the Admin SDK; the
// password exchange goes through the Identity Toolkit REST endpoint,
// since the Admin SDK has no credential sign-in.
type FirebaseIdentity struct {
	client   *fbauth.Client
	http     *http.Client
	endpoint string
	apiKey   string
	redirect string
}

func NewFirebaseIdentity(client *fbauth.Client, cfg *config.FirebaseConfig) *FirebaseIdentity {
	return &FirebaseIdentity{
		client:   client,
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: cfg.IdentityEndpoint,
		apiKey:   cfg.WebAPIKey,
		redirect: cfg.EmailRedirectURL,
	}
}

type signInReq struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResp struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityErrResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseIdentity) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(signInReq{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("marshal sign-in request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", f.endpoint, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("identity endpoint read: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e identityErrResp
		if err := json.Unmarshal(data, &e); err != nil || e.Error.Message == "" {
			return nil, fmt.Errorf("identity endpoint: status %d", resp.StatusCode)
		}
		return nil, &AuthError{Code: CodeInvalidCredentials, Message: e.Error.Message}
	}

	var out signInResp
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("identity endpoint decode: %w", err)
	}

	expires, _ := strconv.ParseInt(out.ExpiresIn, 10, 64)
	return &Session{
		Identity: Identity{
			UID:   out.LocalID,
			Email: out.Email,
			Name:  out.DisplayName,
		},
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    expires,
	}, nil
}

func (f *FirebaseIdentity) SignUp(ctx context.Context, email, password, fullName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)
	if fullName != "" {
		params = params.DisplayName(fullName)
	}

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", &AuthError{Code: CodeEmailExists, Message: "email already in use"}
		}
		return "", &AuthError{Code: CodeSignUpRejected, Message: err.Error()}
	}

	// The provider defers activation: the account is unusable until the
	// emailed confirmation link is followed, then lands on the
	// configured redirect.
	settings := &fbauth.ActionCodeSettings{URL: f.redirect}
	if _, err := f.client.EmailVerificationLinkWithSettings(ctx, email, settings); err != nil {
		log.Printf("email verification link for %s: %v", email, err)
	}

	return user.UID, nil
}

func (f *FirebaseIdentity) SignOut(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

// FirebaseVerifier implements TokenVerifier over the Admin SDK.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) VerifyToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	id := &Identity{
		UID:      token.UID,
		IssuedAt: time.Unix(token.IssuedAt, 0),
	}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
