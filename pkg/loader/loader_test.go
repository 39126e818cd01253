package loader

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/metadata"
	"github.com/ranorsolutions/svc-routing-go/pkg/module"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type users struct {
	hits int
}

func (u *users) list(c *gin.Context) {
	u.hits++
	c.JSON(http.StatusOK, gin.H{"hits": u.hits})
}

func (u *users) get(c *gin.Context) {
	u.hits++
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "hits": u.hits})
}

func noop(*users, *gin.Context) {}

// strip drops the bound handlers so routes can be compared structurally.
func strip(routes []*route.Handler) []route.Handler {
	out := make([]route.Handler, 0, len(routes))
	for _, r := range routes {
		cp := *r
		cp.Handler = nil
		cp.OptionsFunc = nil
		out = append(out, cp)
	}
	return out
}

func TestLoadRoutes_UnknownModule(t *testing.T) {
	routes := LoadRoutes(metadata.NewStore(), "missing")
	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}

func TestLoadRoutes_PathWithoutBasePath(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil)
	m.Get("/users/:id", noop)
	m.Get("", noop)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 2)
	assert.Equal(t, "/users/:id", routes[0].Path)
	assert.Equal(t, "", routes[1].Path)
}

func TestLoadRoutes_BasePathScenario(t *testing.T) {
	store := metadata.NewStore()
	module.New[users](store, "users", nil).
		BasePath("/users").
		Get("/:id", noop)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	assert.Equal(t, http.MethodGet, routes[0].Method)
	assert.Equal(t, "/users/:id", routes[0].Path)
}

func TestLoadRoutes_DeclarationOrder(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil).BasePath("/users")
	m.Get("", noop)
	m.Post("", noop)
	m.Put("/:id", noop)
	m.Patch("/:id", noop)
	m.Delete("/:id", noop)

	var got []string
	for _, r := range LoadRoutes(store, "users") {
		got = append(got, r.Method+" "+r.Path)
	}
	assert.Equal(t, []string{
		"GET /users",
		"POST /users",
		"PUT /users/:id",
		"PATCH /users/:id",
		"DELETE /users/:id",
	}, got)
}

func TestLoadRoutes_AuthPrecedence(t *testing.T) {
	moduleAuth := auth.Config{Strategies: []string{"module"}}
	routeAuth := auth.Config{Strategies: []string{"route"}}
	presetAuth := &auth.Config{Strategies: []string{"preset"}}

	store := metadata.NewStore()
	m := module.New[users](store, "users", nil).Auth(moduleAuth)

	m.Handle(module.Config[users]{
		Method:  http.MethodGet,
		Path:    "/preset",
		Handler: noop,
		Options: &route.Options{Auth: presetAuth},
	}).Auth(routeAuth)
	m.Get("/route", noop).Auth(routeAuth)
	m.Get("/module", noop)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 3)
	assert.Equal(t, []string{"preset"}, routes[0].Options.Auth.Strategies)
	assert.Equal(t, []string{"route"}, routes[1].Options.Auth.Strategies)
	assert.Equal(t, []string{"module"}, routes[2].Options.Auth.Strategies)
}

func TestLoadRoutes_NoAuthAnywhere(t *testing.T) {
	store := metadata.NewStore()
	module.New[users](store, "users", nil).Get("/", noop)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	assert.Nil(t, routes[0].Options.Auth)
	require.NotNil(t, routes[0].Options.Validate)
	// No params on either side means no params rule at all, not an empty one.
	assert.Nil(t, routes[0].Options.Validate.Params)
	assert.True(t, routes[0].Options.Validate.IsEmpty())
}

func TestLoadRoutes_ParamsMerge(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil).Params(validation.Schema{"a": "numeric"})
	m.Get("/disjoint", noop).Params(validation.Schema{"b": "alpha"})
	m.Get("/overlap", noop).Params(validation.Schema{"a": "uuid4"})
	m.Get("/module-only", noop)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 3)
	assert.Equal(t, validation.Schema{"a": "numeric", "b": "alpha"}, routes[0].Options.Validate.Params)
	assert.Equal(t, validation.Schema{"a": "uuid4"}, routes[1].Options.Validate.Params)
	assert.Equal(t, validation.Schema{"a": "numeric"}, routes[2].Options.Validate.Params)

	// Module fragment is untouched by the merge.
	assert.Equal(t, validation.Schema{"a": "numeric"}, store.ValidationConfig(metadata.ModuleTarget("users")).Params)
}

func TestLoadRoutes_PresetValidationWins(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil).Params(validation.Schema{"a": "numeric"})
	m.Handle(module.Config[users]{
		Method:  http.MethodPost,
		Path:    "/",
		Handler: noop,
		Options: &route.Options{Validate: &validation.Rules{
			Params:  validation.Schema{"preset": "required"},
			Query:   validation.Schema{"q": "required"},
			Payload: validation.Schema{"p": "required"},
		}},
	}).
		Params(validation.Schema{"b": "alpha"}).
		Query(validation.Schema{"limit": "numeric"}).
		Payload(validation.Schema{"name": "required"})

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	v := routes[0].Options.Validate
	assert.Equal(t, validation.Schema{"preset": "required"}, v.Params)
	assert.Equal(t, validation.Schema{"q": "required"}, v.Query)
	assert.Equal(t, validation.Schema{"p": "required"}, v.Payload)
}

// The route-level payload fragment must land in Validate.Payload and leave
// Validate.Query alone. An earlier implementation of this merge wrote the
// resolved payload into the query field; that looked accidental and is not
// reproduced here.
func TestLoadRoutes_QueryAndPayloadFromRoute(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil)
	m.Post("/", noop).
		Query(validation.Schema{"dryRun": "omitempty,boolean"}).
		Payload(validation.Schema{"name": "required"})
	m.Post("/payload-only", noop).Payload(validation.Schema{"name": "required"})

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 2)

	assert.Equal(t, validation.Schema{"dryRun": "omitempty,boolean"}, routes[0].Options.Validate.Query)
	assert.Equal(t, validation.Schema{"name": "required"}, routes[0].Options.Validate.Payload)

	assert.Nil(t, routes[1].Options.Validate.Query)
	assert.Equal(t, validation.Schema{"name": "required"}, routes[1].Options.Validate.Payload)
}

func TestLoadRoutes_OptionsFuncIsNotMerged(t *testing.T) {
	store := metadata.NewStore()
	called := false
	fn := func(*gin.Engine) *route.Options {
		called = true
		return &route.Options{Description: "dynamic"}
	}

	m := module.New[users](store, "users", nil).
		Auth(auth.Config{Strategies: []string{"jwt"}}).
		Params(validation.Schema{"id": "numeric"})
	m.Handle(module.Config[users]{Method: http.MethodGet, Path: "/:id", Handler: noop, OptionsFunc: fn}).
		Query(validation.Schema{"q": "required"})

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	assert.Nil(t, routes[0].Options)
	require.NotNil(t, routes[0].OptionsFunc)
	assert.False(t, called)
	assert.Equal(t, "dynamic", routes[0].Resolve(nil).Description)
}

func TestLoadRoutes_SharedInstance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := metadata.NewStore()
	instances := 0
	m := module.New(store, "users", func() *users {
		instances++
		return &users{}
	}).BasePath("/users")
	m.Get("", (*users).list)
	m.Get("/:id", (*users).get)

	routes := LoadRoutes(store, "users")
	assert.Equal(t, 1, instances)

	r := gin.New()
	for _, h := range routes {
		r.Handle(h.Method, h.Path, h.Handler)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.JSONEq(t, `{"hits":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/7", nil))
	assert.JSONEq(t, `{"id":"7","hits":2}`, rec.Body.String())
}

func TestLoadRoutes_Idempotent(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil).
		BasePath("/users").
		Auth(auth.Config{Strategies: []string{"jwt"}}).
		Params(validation.Schema{"id": "numeric"})
	m.Get("/:id", noop).Query(validation.Schema{"expand": "omitempty"})
	m.Handle(module.Config[users]{
		Method:  http.MethodPost,
		Path:    "",
		Handler: noop,
		Options: &route.Options{Tags: []string{"api"}},
	}).Payload(validation.Schema{"name": "required"})

	first := LoadRoutes(store, "users")
	// Mutating the output must not leak back into the store.
	first[0].Options.Validate.Params["id"] = "changed"
	first[0].Options.Auth.Strategies[0] = "changed"
	first[1].Options.Tags[0] = "changed"

	second := LoadRoutes(store, "users")
	third := LoadRoutes(store, "users")
	assert.Equal(t, strip(second), strip(third))
	assert.Equal(t, "numeric", second[0].Options.Validate.Params["id"])
	assert.Equal(t, "jwt", second[0].Options.Auth.Strategies[0])
	assert.Equal(t, "api", second[1].Options.Tags[0])
}

func TestLoadAll(t *testing.T) {
	store := metadata.NewStore()
	module.New[users](store, "users", nil).BasePath("/users").Get("", noop)
	module.New[users](store, "admins", nil).BasePath("/admins").Get("", noop)

	routes := LoadAll(store)
	require.Len(t, routes, 2)
	assert.Equal(t, "/users", routes[0].Path)
	assert.Equal(t, "/admins", routes[1].Path)
}

func TestLoadRoutes_AccessorResultsDoNotLeak(t *testing.T) {
	store := metadata.NewStore()
	module.New[users](store, "users", nil).
		Auth(auth.Config{Scope: []string{"users"}}).
		Params(validation.Schema{"id": "numeric"}).
		Get("/:id", noop)

	store.AuthConfig(metadata.ModuleTarget("users")).Scope[0] = "changed"
	store.ValidationConfig(metadata.ModuleTarget("users")).Params["id"] = "changed"

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	assert.Equal(t, []string{"users"}, routes[0].Options.Auth.Scope)
	assert.Equal(t, validation.Schema{"id": "numeric"}, routes[0].Options.Validate.Params)
}

func TestLoadRoutes_SameMethodAndPathKeepOwnFragments(t *testing.T) {
	store := metadata.NewStore()
	m := module.New[users](store, "users", nil)
	m.Get("/", noop).Auth(auth.Config{Scope: []string{"a"}})
	m.Get("/", noop)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 2)
	assert.Equal(t, []string{"a"}, routes[0].Options.Auth.Scope)
	assert.Nil(t, routes[1].Options.Auth)
}

func TestLoadRoutes_DescribeKeepsFragments(t *testing.T) {
	store := metadata.NewStore()
	module.New[users](store, "users", nil).
		Auth(auth.Config{Strategies: []string{"jwt"}}).
		Get("/", noop).
		Query(validation.Schema{"limit": "omitempty,numeric"}).
		Describe("List users", "users")

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	opts := routes[0].Options
	assert.Equal(t, "List users", opts.Description)
	assert.Equal(t, []string{"users"}, opts.Tags)
	assert.Equal(t, []string{"jwt"}, opts.Auth.Strategies)
	assert.Equal(t, validation.Schema{"limit": "omitempty,numeric"}, opts.Validate.Query)
}

func TestLoadRoutes_NilHandler(t *testing.T) {
	store := metadata.NewStore()
	module.New[users](store, "users", nil).Get("/nil", nil)

	routes := LoadRoutes(store, "users")
	require.Len(t, routes, 1)
	assert.Nil(t, routes[0].Handler)
}
