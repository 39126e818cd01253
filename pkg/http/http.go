package http

import (
	"fmt"
	"net"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	ctxmw "github.com/ranorsolutions/http-common-go/pkg/middleware/context"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/loader"
	"github.com/ranorsolutions/svc-routing-go/pkg/metrics"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/service"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

type HTTPService struct {
	Engine  *gin.Engine
	Server  *http.Server
	Service *service.Service
	Metrics *metrics.Recorder
	Routes  []*route.Handler
}

// New creates a Gin HTTP service wrapping a given `service.Service`.
// It loads the routes of every module declared in svc.Store and mounts them under /api/{version}.
func New(svc *service.Service, version string) (*HTTPService, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	recorder := metrics.New()

	engine := gin.New()
	engine.Use(ctxmw.GinContextToContextMiddleware())
	engine.Use(gin.Recovery())
	engine.Use(recorder.Handler())

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/metrics", recorder.Exposer())

	group := &engine.RouterGroup
	if version != "" {
		group = engine.Group(fmt.Sprintf("/api/%s", version))
	}

	routes := loader.LoadAll(svc.Store)
	for _, h := range routes {
		if !supportedMethods[h.Method] {
			svc.Logger.Warn("unrecognized HTTP method %s for route %s", h.Method, h.Path)
			continue
		}

		chain, err := handlerChain(engine, svc.Auth, h)
		if err != nil {
			return nil, fmt.Errorf("failed to register route %s %s: %w", h.Method, h.Path, err)
		}

		group.Handle(h.Method, h.Path, chain...)
		recorder.RouteRegistered()
		svc.Logger.Info("registered route %s %s", h.Method, joinPath(group.BasePath(), h.Path))
	}

	server := &http.Server{Handler: engine}

	return &HTTPService{
		Server:  server,
		Engine:  engine,
		Service: svc,
		Metrics: recorder,
		Routes:  routes,
	}, nil
}

// handlerChain resolves the route's options and puts auth and validation in front of the handler.
func handlerChain(engine *gin.Engine, reg *auth.Registry, h *route.Handler) ([]gin.HandlerFunc, error) {
	if h.Handler == nil {
		return nil, fmt.Errorf("route has no handler")
	}

	opts := h.Resolve(engine)
	if opts == nil {
		return []gin.HandlerFunc{h.Handler}, nil
	}

	authenticate, err := auth.Middleware(reg, opts.Auth)
	if err != nil {
		return nil, err
	}

	return []gin.HandlerFunc{
		authenticate,
		validation.Middleware(opts.Validate),
		h.Handler,
	}, nil
}

// ListenAndServe starts serving requests on the given listener.
func (s *HTTPService) ListenAndServe(l net.Listener) error {
	s.Service.Logger.Info("HTTP server listening on %s", formatAddr(l.Addr().String()))
	return s.Server.Serve(l)
}

func joinPath(base, path string) string {
	if base == "/" {
		base = ""
	}
	return base + path
}

// formatAddr normalizes the listener address for readable logs.
func formatAddr(addr string) string {
	re := regexp.MustCompile(`\[::\]`)
	return re.ReplaceAllString(addr, "http://localhost")
}
