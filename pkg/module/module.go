package module

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/metadata"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
)

// HandlerFunc is a handler declared as a method of the module, usually a method
// expression such as (*Users).Get.
type HandlerFunc[T any] func(*T, *gin.Context)

// Module declares the routes and module-wide defaults of a group of handlers sharing one instance of T.
type Module[T any] struct {
	store *metadata.Store
	name  string
}

// New registers a module in store. A nil factory instantiates T with new.
func New[T any](store *metadata.Store, name string, factory func() *T) *Module[T] {
	if factory == nil {
		factory = func() *T { return new(T) }
	}
	store.SetFactory(name, func() any { return factory() })

	return &Module[T]{store: store, name: name}
}

func (m *Module[T]) Name() string { return m.name }

// BasePath prefixes every route path of the module.
func (m *Module[T]) BasePath(path string) *Module[T] {
	m.store.SetModuleConfig(m.name, metadata.ModuleConfig{BasePath: path})
	return m
}

// Auth sets the module-wide auth fragment.
func (m *Module[T]) Auth(cfg auth.Config) *Module[T] {
	m.store.SetAuth(metadata.ModuleTarget(m.name), cfg)
	return m
}

// Params sets the module-wide path parameter schema. Routes merge their own on top.
func (m *Module[T]) Params(s validation.Schema) *Module[T] {
	m.store.SetValidation(metadata.ModuleTarget(m.name), validation.Rules{Params: s})
	return m
}

func (m *Module[T]) Get(path string, h HandlerFunc[T]) *Route[T] {
	return m.Handle(Config[T]{Method: http.MethodGet, Path: path, Handler: h})
}

func (m *Module[T]) Post(path string, h HandlerFunc[T]) *Route[T] {
	return m.Handle(Config[T]{Method: http.MethodPost, Path: path, Handler: h})
}

func (m *Module[T]) Put(path string, h HandlerFunc[T]) *Route[T] {
	return m.Handle(Config[T]{Method: http.MethodPut, Path: path, Handler: h})
}

func (m *Module[T]) Patch(path string, h HandlerFunc[T]) *Route[T] {
	return m.Handle(Config[T]{Method: http.MethodPatch, Path: path, Handler: h})
}

func (m *Module[T]) Delete(path string, h HandlerFunc[T]) *Route[T] {
	return m.Handle(Config[T]{Method: http.MethodDelete, Path: path, Handler: h})
}

// Config is a full route declaration, used when a route needs pre-set options.
type Config[T any] struct {
	Method      string
	Path        string
	Handler     HandlerFunc[T]
	Options     *route.Options
	OptionsFunc route.OptionsFunc
}

// Handle declares a route from a full config.
func (m *Module[T]) Handle(cfg Config[T]) *Route[T] {
	decl := route.Declaration{
		Method:      cfg.Method,
		Path:        cfg.Path,
		Bind:        bind(cfg.Handler),
		Options:     cfg.Options,
		OptionsFunc: cfg.OptionsFunc,
	}
	index := m.store.AppendRoute(m.name, decl)

	return &Route[T]{module: m, index: index, target: metadata.RouteTarget(m.name, index)}
}

// bind returns nil for a nil handler so the route is rejected at registration.
func bind[T any](h HandlerFunc[T]) route.Binder {
	if h == nil {
		return nil
	}
	return func(instance any) gin.HandlerFunc {
		inst, _ := instance.(*T)
		return func(c *gin.Context) { h(inst, c) }
	}
}

// Route sets route-level fragments on a declared route.
type Route[T any] struct {
	module *Module[T]
	index  int
	target metadata.Target
}

// Auth overrides the module auth fragment for this route.
func (r *Route[T]) Auth(cfg auth.Config) *Route[T] {
	r.module.store.SetAuth(r.target, cfg)
	return r
}

// Params adds path parameter rules, overriding module rules with the same key.
func (r *Route[T]) Params(s validation.Schema) *Route[T] {
	r.module.store.SetValidation(r.target, validation.Rules{Params: s})
	return r
}

func (r *Route[T]) Query(s validation.Schema) *Route[T] {
	r.module.store.SetValidation(r.target, validation.Rules{Query: s})
	return r
}

func (r *Route[T]) Payload(s validation.Schema) *Route[T] {
	r.module.store.SetValidation(r.target, validation.Rules{Payload: s})
	return r
}

// Options pre-sets the route options. Fields set here take precedence over fragments.
func (r *Route[T]) Options(opts route.Options) *Route[T] {
	r.module.store.UpdateRoute(r.module.name, r.index, func(d *route.Declaration) {
		d.Options = &opts
	})
	return r
}

// OptionsFunc makes the route resolve its options at registration; fragments are then ignored.
func (r *Route[T]) OptionsFunc(fn route.OptionsFunc) *Route[T] {
	r.module.store.UpdateRoute(r.module.name, r.index, func(d *route.Declaration) {
		d.OptionsFunc = fn
	})
	return r
}

// Describe documents the route, keeping any other pre-set options.
func (r *Route[T]) Describe(description string, tags ...string) *Route[T] {
	r.module.store.UpdateRoute(r.module.name, r.index, func(d *route.Declaration) {
		if d.Options == nil {
			d.Options = &route.Options{}
		}
		d.Options.Description = description
		d.Options.Tags = tags
	})
	return r
}
