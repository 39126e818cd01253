package metadata

import (
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
)

// RoutesConfig returns the module's route declarations in declaration order.
// The declarations are copies; an empty slice is returned when nothing was declared.
func (s *Store) RoutesConfig(module string) []route.Declaration {
	v, ok := s.get(KindRoutes, ModuleTarget(module))
	if !ok {
		return []route.Declaration{}
	}
	routes := v.([]route.Declaration)
	out := make([]route.Declaration, len(routes))
	for i, decl := range routes {
		out[i] = decl.Clone()
	}
	return out
}

// AuthConfig returns the auth fragment declared for target, or nil.
func (s *Store) AuthConfig(target Target) *auth.Config {
	v, ok := s.get(KindAuth, target)
	if !ok {
		return nil
	}
	return v.(*auth.Config).Clone()
}

// ValidationConfig returns the validation fragment declared for target.
// It never fails; the zero Rules is returned when nothing was declared.
func (s *Store) ValidationConfig(target Target) validation.Rules {
	v, ok := s.get(KindValidation, target)
	if !ok {
		return validation.Rules{}
	}
	rules := v.(validation.Rules)
	return *rules.Clone()
}

// ModuleConfig returns the module's configuration, or nil.
func (s *Store) ModuleConfig(module string) *ModuleConfig {
	v, ok := s.get(KindModule, ModuleTarget(module))
	if !ok {
		return nil
	}
	cfg := v.(ModuleConfig)
	return &cfg
}

// FactoryFor returns the module's instance factory, or nil.
func (s *Store) FactoryFor(module string) Factory {
	v, ok := s.get(KindFactory, ModuleTarget(module))
	if !ok {
		return nil
	}
	return v.(Factory)
}
