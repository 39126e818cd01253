package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware builds the gin handler enforcing cfg. A nil cfg yields a pass-through handler.
// Unknown strategy names are reported here, when the route is registered.
func Middleware(reg *Registry, cfg *Config) (gin.HandlerFunc, error) {
	if cfg == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}
	if reg == nil {
		reg = NewRegistry()
	}

	strategies, err := reg.Resolve(cfg.Strategies)
	if err != nil {
		return nil, err
	}
	mode := cfg.mode()
	scope := append([]string(nil), cfg.Scope...)

	return func(c *gin.Context) {
		var (
			creds   *Credentials
			lastErr error
		)
		for _, s := range strategies {
			got, err := s.Authenticate(c)
			if err == nil {
				creds = got
				break
			}
			if !errors.Is(err, ErrNoCredentials) {
				lastErr = err
			}
		}

		if creds == nil {
			switch {
			case mode == ModeTry:
				c.Next()
			case mode == ModeOptional && lastErr == nil:
				c.Next()
			default:
				if lastErr == nil {
					lastErr = ErrNoCredentials
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "details": lastErr.Error()})
			}
			return
		}

		if !creds.HasScope(scope) {
			if mode == ModeTry {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrInsufficientScope.Error()})
			return
		}

		c.Set(credentialsKey, creds)
		c.Next()
	}, nil
}
