package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/firmint/firmint"
	apimiddleware "github.com/firmint/firmint/infrastructure/api/middleware"
	v1 "github.com/firmint/firmint/infrastructure/api/v1"
	mcpinternal "github.com/firmint/firmint/internal/mcp"
)

// APIServer provides an HTTP API backed by a firmint Client.
type APIServer struct {
	client       *firmint.Client
	apiKeys      []string
	corsOrigins  []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given firmint Client.
// apiKeys configures write-protection: mutating endpoints (POST, DELETE) on
// /api/v1/batches require a valid X-API-KEY. Read-only endpoints, MCP, and
// docs remain open. corsOrigins configures cross-origin access for the
// default server created by ListenAndServe.
func NewAPIServer(client *firmint.Client, apiKeys, corsOrigins []string) *APIServer {
	return &APIServer{
		client:      client,
		apiKeys:     apiKeys,
		corsOrigins: corsOrigins,
		logger:      client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call
// MountRoutes(). If not called, ListenAndServe creates a default router with
// all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	batchesRouter := v1.NewBatchesRouter(a.client)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		// Open route — sample input for download.
		r.Get("/sample.csv", v1.SampleCSV)

		// Write-protected routes — mutating methods require a valid API key,
		// reads pass through.
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.WriteProtect(apimiddleware.NewAuthConfigWithKeys(a.apiKeys)))
			r.Mount("/batches", batchesRouter.Routes())
		})
	})

	// MCP (Model Context Protocol) endpoint — no timeout middleware.
	// MCP uses streaming responses and manages its own session state via
	// response headers, which is incompatible with chi's Timeout middleware
	// that wraps the ResponseWriter.
	mcpSrv := mcpinternal.NewServer(a.client, "1.0.0", a.logger)
	httpHandler := server.NewStreamableHTTPServer(mcpSrv.MCPServer())
	router.Mount("/mcp", httpHandler)
}

// DocsRouter returns a router for Swagger UI and the OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.corsOrigins, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
