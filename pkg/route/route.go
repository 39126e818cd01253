package route

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
)

// Options is the per-route configuration consumed by the HTTP layer.
type Options struct {
	Auth        *auth.Config      `yaml:"auth,omitempty"`
	Validate    *validation.Rules `yaml:"validate,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Notes       string            `yaml:"notes,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
}

// Clone returns a deep copy of the options.
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	return &Options{
		Auth:        o.Auth.Clone(),
		Validate:    o.Validate.Clone(),
		Description: o.Description,
		Notes:       o.Notes,
		Tags:        slices.Clone(o.Tags),
	}
}

// OptionsFunc resolves a route's options against the engine at registration time.
// Routes declaring one are left untouched by the loader.
type OptionsFunc func(engine *gin.Engine) *Options

// Binder turns a module instance into the gin handler serving a route.
type Binder func(instance any) gin.HandlerFunc

// Declaration is one handler declared on a module, before merging.
type Declaration struct {
	Method      string
	Path        string
	Bind        Binder
	Options     *Options
	OptionsFunc OptionsFunc
}

// Clone returns a deep copy. Binder and OptionsFunc are functions and are shared.
func (d Declaration) Clone() Declaration {
	d.Options = d.Options.Clone()
	return d
}

// Handler is a finalized route, ready to be registered on a gin engine.
// It is designed for declarative, data-driven route registration across services.
type Handler struct {
	Method      string
	Path        string
	Handler     gin.HandlerFunc
	Options     *Options
	OptionsFunc OptionsFunc
}

// Resolve returns the route's options, calling OptionsFunc when one is set.
func (h *Handler) Resolve(engine *gin.Engine) *Options {
	if h.OptionsFunc != nil {
		return h.OptionsFunc(engine)
	}
	return h.Options
}
