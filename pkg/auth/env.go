package auth

import (
	"context"
	"os"
)

// FromEnv builds a registry from the environment:
//
//	AUTH_SECRET                               -> jwt
//	AUTH_KEY (with AUTH_SECRET)               -> session
//	FIREBASE_CREDENTIALS / FIREBASE_PROJECT_ID -> firebase
func FromEnv(ctx context.Context) (*Registry, error) {
	reg := NewRegistry()

	if os.Getenv("AUTH_SECRET") != "" {
		tokens := NewJWTStrategy("")
		reg.Register(tokens)

		if os.Getenv("AUTH_KEY") != "" {
			session, err := newSessionStrategy(ctx, "", tokens)
			if err != nil {
				return nil, err
			}
			reg.Register(session)
		}
	}

	if os.Getenv("FIREBASE_CREDENTIALS") != "" || os.Getenv("FIREBASE_PROJECT_ID") != "" {
		fb, err := NewFirebaseStrategy(ctx, nil)
		if err != nil {
			return nil, err
		}
		reg.Register(fb)
	}

	return reg, nil
}

// newSessionStrategy is swapped in tests.
var newSessionStrategy = NewSessionStrategy
