package auth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"
)

// Mode controls how strictly a route requires authentication.
type Mode string

const (
	// ModeRequired rejects requests without valid credentials. It is the default.
	ModeRequired Mode = "required"
	// ModeOptional lets anonymous requests through but rejects invalid credentials.
	ModeOptional Mode = "optional"
	// ModeTry never rejects; credentials are attached when they verify.
	ModeTry Mode = "try"
)

var (
	ErrNoCredentials      = errors.New("no credentials presented")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientScope  = errors.New("insufficient scope")
	ErrUnknownStrategy    = errors.New("unknown auth strategy")
)

const credentialsKey = "authCredentials"

// Config is the access-control fragment attached to a module or a route.
type Config struct {
	Mode       Mode     `yaml:"mode,omitempty"`
	Strategies []string `yaml:"strategies,omitempty"`
	Scope      []string `yaml:"scope,omitempty"`
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		Mode:       c.Mode,
		Strategies: slices.Clone(c.Strategies),
		Scope:      slices.Clone(c.Scope),
	}
}

func (c *Config) mode() Mode {
	if c.Mode == "" {
		return ModeRequired
	}
	return c.Mode
}

// Credentials is the principal produced by a successful strategy.
type Credentials struct {
	Subject  string
	Strategy string
	Scope    []string
	Claims   map[string]any
}

// HasScope reports whether every required scope is granted.
func (c *Credentials) HasScope(required []string) bool {
	for _, s := range required {
		if !slices.Contains(c.Scope, s) {
			return false
		}
	}
	return true
}

// Strategy authenticates a request. Implementations return ErrNoCredentials
// when the request carries nothing the strategy understands.
type Strategy interface {
	Name() string
	Authenticate(c *gin.Context) (*Credentials, error)
}

// Registry holds the strategies available to routes, in registration order.
type Registry struct {
	order      []string
	strategies map[string]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// Register adds a strategy, replacing any previous one with the same name.
func (r *Registry) Register(s Strategy) {
	if _, ok := r.strategies[s.Name()]; !ok {
		r.order = append(r.order, s.Name())
	}
	r.strategies[s.Name()] = s
}

// Names returns the registered strategy names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Resolve returns the named strategies, or every registered strategy when names is empty.
func (r *Registry) Resolve(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		names = r.order
	}

	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, ok := r.strategies[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
		}
		out = append(out, s)
	}
	return out, nil
}

// CredentialsFrom returns the credentials attached by Middleware, if any.
func CredentialsFrom(c *gin.Context) *Credentials {
	if v, ok := c.Get(credentialsKey); ok {
		if creds, ok := v.(*Credentials); ok {
			return creds
		}
	}
	return nil
}
