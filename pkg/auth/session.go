package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/gin-gonic/gin"
	"github.com/googleapis/gax-go/v2"
)

const defaultSessionCookie = "auth-cookie"

// Decrypter is the subset of the KMS client used to open session cookies.
type Decrypter interface {
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error)
}

// Session is the decrypted content of a session cookie.
type Session struct {
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	SessionID    string `json:"sessionId"`
	AccessToken  string `json:"accessToken"`
}

// SessionStrategy reads a KMS-encrypted session cookie and verifies the access token inside it.
type SessionStrategy struct {
	Client  Decrypter
	KeyName string
	Cookie  string
	Tokens  *JWTStrategy
}

// NewSessionStrategy connects to Cloud KMS. An empty keyName falls back to AUTH_KEY.
func NewSessionStrategy(ctx context.Context, keyName string, tokens *JWTStrategy) (*SessionStrategy, error) {
	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create kms client: %w", err)
	}
	if keyName == "" {
		keyName = os.Getenv("AUTH_KEY")
	}

	return &SessionStrategy{
		Client:  client,
		KeyName: keyName,
		Cookie:  defaultSessionCookie,
		Tokens:  tokens,
	}, nil
}

func (s *SessionStrategy) Name() string { return "session" }

func (s *SessionStrategy) Authenticate(c *gin.Context) (*Credentials, error) {
	session, err := s.Decode(c)
	if err != nil {
		return nil, err
	}

	creds, err := s.Tokens.Verify(session.AccessToken)
	if err != nil {
		return nil, err
	}
	creds.Strategy = s.Name()
	return creds, nil
}

// Decode decrypts the session cookie attached to the request.
func (s *SessionStrategy) Decode(c *gin.Context) (*Session, error) {
	name := s.Cookie
	if name == "" {
		name = defaultSessionCookie
	}

	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return nil, ErrNoCredentials
	}

	decoded, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, err.Error())
	}

	result, err := s.Client.Decrypt(c.Request.Context(), &kmspb.DecryptRequest{
		Name:       s.KeyName,
		Ciphertext: []byte(decoded),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: unable to decrypt session: %s", ErrInvalidCredentials, err.Error())
	}

	session := &Session{}
	if err := json.Unmarshal(result.Plaintext, session); err != nil {
		return nil, fmt.Errorf("%w: malformed session: %s", ErrInvalidCredentials, err.Error())
	}
	return session, nil
}
