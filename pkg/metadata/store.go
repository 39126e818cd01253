// Package metadata holds the configuration fragments modules declare at setup time,
// keyed by fragment kind and target, and the accessors the route loader reads them through.
package metadata

import (
	"sync"

	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
)

// Kind identifies the kind of fragment stored for a target.
type Kind int

const (
	KindRoutes Kind = iota
	KindAuth
	KindValidation
	KindModule
	KindFactory
)

func (k Kind) String() string {
	switch k {
	case KindRoutes:
		return "routes"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindModule:
		return "module"
	case KindFactory:
		return "factory"
	}
	return "unknown"
}

// Target addresses a module, or one of its routes when Route is set.
// Route is the 1-based position of the declaration within the module.
type Target struct {
	Module string
	Route  int
}

// ModuleTarget addresses the module itself.
func ModuleTarget(module string) Target {
	return Target{Module: module}
}

// RouteTarget addresses the declaration at index in the module's route list.
func RouteTarget(module string, index int) Target {
	return Target{Module: module, Route: index + 1}
}

// ModuleConfig is the module's own configuration.
type ModuleConfig struct {
	BasePath string
}

// Factory creates the module instance handlers are bound to.
type Factory func() any

type key struct {
	kind   Kind
	target Target
}

// Store is written once while modules are set up and read many times afterwards.
type Store struct {
	mu      sync.RWMutex
	entries map[key]any
	modules []string
}

func NewStore() *Store {
	return &Store{entries: map[key]any{}}
}

func (s *Store) get(kind Kind, target Target) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key{kind, target}]
	return v, ok
}

func (s *Store) set(kind Kind, target Target, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(target.Module)
	s.entries[key{kind, target}] = v
}

// track records module registration order. Callers hold the write lock.
func (s *Store) track(module string) {
	for _, m := range s.modules {
		if m == module {
			return
		}
	}
	s.modules = append(s.modules, module)
}

// Modules returns the names of every module with stored fragments, in registration order.
func (s *Store) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.modules...)
}

// SetFactory records how to instantiate the module.
func (s *Store) SetFactory(module string, f Factory) {
	s.set(KindFactory, ModuleTarget(module), f)
}

// SetModuleConfig records the module's own configuration.
func (s *Store) SetModuleConfig(module string, cfg ModuleConfig) {
	s.set(KindModule, ModuleTarget(module), cfg)
}

// AppendRoute adds a route declaration after the ones already declared for the module
// and returns its index.
func (s *Store) AppendRoute(module string, decl route.Declaration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(module)

	k := key{KindRoutes, ModuleTarget(module)}
	routes, _ := s.entries[k].([]route.Declaration)
	s.entries[k] = append(routes, decl.Clone())
	return len(routes)
}

// UpdateRoute applies fn to a copy of the declaration at index and stores the result.
// It reports false when the module has no declaration at index.
func (s *Store) UpdateRoute(module string, index int, fn func(*route.Declaration)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{KindRoutes, ModuleTarget(module)}
	routes, _ := s.entries[k].([]route.Declaration)
	if index < 0 || index >= len(routes) {
		return false
	}

	decl := routes[index].Clone()
	fn(&decl)
	routes[index] = decl.Clone()
	return true
}

// SetAuth records the auth fragment for a module or route target.
func (s *Store) SetAuth(target Target, cfg auth.Config) {
	s.set(KindAuth, target, cfg.Clone())
}

// SetValidation merges rules into the target's validation fragment, one sub-field at a time.
// Sub-fields left empty in rules keep their previous value.
func (s *Store) SetValidation(target Target, rules validation.Rules) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(target.Module)

	k := key{KindValidation, target}
	current, _ := s.entries[k].(validation.Rules)
	if rules.Params != nil {
		current.Params = rules.Params.Clone()
	}
	if rules.Query != nil {
		current.Query = rules.Query.Clone()
	}
	if rules.Payload != nil {
		current.Payload = rules.Payload.Clone()
	}
	s.entries[k] = current
}
