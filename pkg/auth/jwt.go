package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// JWTStrategy verifies HMAC-signed bearer tokens.
type JWTStrategy struct {
	Secret []byte
}

// NewJWTStrategy creates a strategy using secret, falling back to AUTH_SECRET when empty.
func NewJWTStrategy(secret string) *JWTStrategy {
	if secret == "" {
		secret = os.Getenv("AUTH_SECRET")
	}
	return &JWTStrategy{Secret: []byte(secret)}
}

func (s *JWTStrategy) Name() string { return "jwt" }

func (s *JWTStrategy) Authenticate(c *gin.Context) (*Credentials, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	return s.Verify(token)
}

// Verify parses and validates a raw token string.
func (s *JWTStrategy) Verify(tokenString string) (*Credentials, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: error parsing token: %s", ErrInvalidCredentials, err.Error())
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: malformed claims", ErrInvalidCredentials)
	}

	subject, _ := claims["uid"].(string)
	if subject == "" {
		subject, _ = claims["sub"].(string)
	}

	if claims["disabled"] == true {
		return nil, fmt.Errorf("%w: user account %s is disabled", ErrInvalidCredentials, subject)
	}

	return &Credentials{
		Subject:  subject,
		Strategy: s.Name(),
		Scope:    stringList(claims["permissions"]),
		Claims:   claims,
	}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrNoCredentials
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", fmt.Errorf("%w: invalid Authorization format", ErrInvalidCredentials)
	}
	return parts[1], nil
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Fields(list)
	}
	return nil
}
