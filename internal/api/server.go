// Package api provides the HTTP API server and handlers for the wiki.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/litewiki/litewiki-server/internal/auth"
	"github.com/litewiki/litewiki-server/internal/ratelimit"
	"github.com/litewiki/litewiki-server/internal/search"
	"github.com/litewiki/litewiki-server/internal/service"
	"github.com/litewiki/litewiki-server/internal/store"
	"github.com/litewiki/litewiki-server/internal/validation"
)

// Services groups the business services used by the API server.
type Services struct {
	Page   *service.PageService
	Tag    *service.TagService
	Author *service.AuthorService
	Search *service.SearchService
}

// Options configures the API server.
type Options struct {
	Store       store.Store
	SearchIndex *search.Index
	Services    *Services
	Verifier    auth.Verifier
	RateLimiter *ratelimit.KeyedLimiter
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	searchIndex *search.Index
	services    *Services
	validator   *validation.Validator
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates an HTTP server with all middleware and routes configured.
func NewServer(opts Options) *Server {
	router := chi.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.RateLimiter != nil {
		router.Use(rateLimitMiddleware(opts.RateLimiter, opts.Logger))
	}
	router.Use(requestLogger(opts.Logger))
	router.Use(sessionMiddleware(opts.Verifier))

	humaConfig := huma.DefaultConfig("LiteWiki API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:       opts.Store,
		searchIndex: opts.SearchIndex,
		services:    opts.Services,
		validator:   validation.New(),
		router:      router,
		api:         api,
		logger:      opts.Logger,
	}

	s.registerHealthRoutes()
	s.registerPageRoutes()
	s.registerRevisionRoutes()
	s.registerTagRoutes()
	s.registerAuthorRoutes()
	s.registerSearchRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
