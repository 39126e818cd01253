// Package loader flattens the fragments declared by a module into finalized routes.
//
// Precedence, first match wins:
//
//	auth:     pre-set route options > route fragment > module fragment
//	params:   pre-set route options > module params merged with route params (route wins per key)
//	query:    pre-set route options > route fragment
//	payload:  pre-set route options > route fragment
//
// Routes declaring an OptionsFunc are not merged at all.
package loader

import (
	"maps"

	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/metadata"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
)

// LoadRoutes returns one finalized route per declaration of module, in declaration order.
// Missing fragments fall back to empty defaults; an unknown module yields no routes.
func LoadRoutes(store *metadata.Store, module string) []*route.Handler {
	// One instance is shared by every handler of the module.
	var instance any
	if factory := store.FactoryFor(module); factory != nil {
		instance = factory()
	}

	declarations := store.RoutesConfig(module)
	routes := make([]*route.Handler, 0, len(declarations))

	moduleCfg := store.ModuleConfig(module)
	moduleAuth := store.AuthConfig(metadata.ModuleTarget(module))
	moduleValidate := store.ValidationConfig(metadata.ModuleTarget(module))

	basePath := ""
	if moduleCfg != nil {
		basePath = moduleCfg.BasePath
	}

	for i, decl := range declarations {
		cfg := decl.Clone()

		target := metadata.RouteTarget(module, i)
		routeAuth := store.AuthConfig(target)
		routeValidate := store.ValidationConfig(target)

		h := &route.Handler{
			Method: cfg.Method,
			Path:   basePath + cfg.Path,
		}
		if cfg.Bind != nil {
			h.Handler = cfg.Bind(instance)
		}

		if cfg.OptionsFunc != nil {
			h.OptionsFunc = cfg.OptionsFunc
			h.Options = cfg.Options
			routes = append(routes, h)
			continue
		}

		h.Options = merge(cfg.Options, moduleAuth, routeAuth, moduleValidate, routeValidate)
		routes = append(routes, h)
	}

	return routes
}

// LoadAll loads every module registered in store, in registration order.
func LoadAll(store *metadata.Store) []*route.Handler {
	var routes []*route.Handler
	for _, module := range store.Modules() {
		routes = append(routes, LoadRoutes(store, module)...)
	}
	return routes
}

// merge fills the gaps of the pre-set options. opts is owned by the caller and may be nil.
func merge(opts *route.Options, moduleAuth, routeAuth *auth.Config, moduleValidate, routeValidate validation.Rules) *route.Options {
	if opts == nil {
		opts = &route.Options{}
	}
	if opts.Validate == nil {
		opts.Validate = &validation.Rules{}
	}

	if opts.Auth == nil {
		if routeAuth != nil {
			opts.Auth = routeAuth.Clone()
		} else if moduleAuth != nil {
			opts.Auth = moduleAuth.Clone()
		}
	}

	if opts.Validate.Params == nil {
		opts.Validate.Params = mergeParams(moduleValidate.Params, routeValidate.Params)
	}
	if opts.Validate.Query == nil {
		opts.Validate.Query = routeValidate.Query.Clone()
	}
	if opts.Validate.Payload == nil {
		opts.Validate.Payload = routeValidate.Payload.Clone()
	}

	return opts
}

// mergeParams combines module and route params; route rules win on key collision.
// The result is nil when neither side declares any rule.
func mergeParams(moduleParams, routeParams validation.Schema) validation.Schema {
	merged := validation.Schema{}
	maps.Copy(merged, moduleParams)
	maps.Copy(merged, routeParams)

	if len(merged) == 0 {
		return nil
	}
	return merged
}
