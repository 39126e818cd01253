package auth

import (
	"context"
	"fmt"
	"os"

	fb "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
)

// TokenVerifier defines the subset of Firebase Auth methods we use.
// This makes it mockable in tests.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*fbauth.Token, error)
}

// FirebaseConfig defines the Firebase configuration.
type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

// FirebaseStrategy authenticates Firebase ID tokens sent as bearer tokens.
type FirebaseStrategy struct {
	App    *fb.App
	Auth   TokenVerifier
	Config *FirebaseConfig
}

// newFirebaseApp is swapped in tests.
var newFirebaseApp = func(ctx context.Context, opts ...option.ClientOption) (TokenVerifier, *fb.App, error) {
	app, err := fb.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Firebase Auth: %w", err)
	}
	return client, app, nil
}

// NewFirebaseStrategy creates a Firebase-backed strategy. A nil cfg is read from the environment.
func NewFirebaseStrategy(ctx context.Context, cfg *FirebaseConfig) (*FirebaseStrategy, error) {
	if cfg == nil {
		cfg = firebaseConfigFromEnv()
	}

	opts := []option.ClientOption{}
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	if cfg.ProjectID != "" {
		os.Setenv("GOOGLE_CLOUD_PROJECT", cfg.ProjectID)
	}

	client, app, err := newFirebaseApp(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &FirebaseStrategy{App: app, Auth: client, Config: cfg}, nil
}

func firebaseConfigFromEnv() *FirebaseConfig {
	return &FirebaseConfig{
		CredentialsPath: os.Getenv("FIREBASE_CREDENTIALS"),
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
	}
}

func (s *FirebaseStrategy) Name() string { return "firebase" }

func (s *FirebaseStrategy) Authenticate(c *gin.Context) (*Credentials, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}

	tok, err := s.Auth.VerifyIDToken(c.Request.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid Firebase token: %s", ErrInvalidCredentials, err.Error())
	}

	return &Credentials{
		Subject:  tok.UID,
		Strategy: s.Name(),
		Scope:    stringList(tok.Claims["permissions"]),
		Claims:   tok.Claims,
	}, nil
}
