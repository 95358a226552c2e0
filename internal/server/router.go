package server

import (
	"log/slog"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/flashdeck/flashdeck/internal/handler"
	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/middleware"
)

// RouterConfig collects everything the HTTP surface needs.
type RouterConfig struct {
	Logger        *slog.Logger
	IsDevelopment bool
	MaxBodyBytes  int64

	// Only these peers may supply the client address via forwarding headers.
	TrustedProxies []netip.Prefix

	CORS          middleware.CORSConfig
	Identity      middleware.IdentityConfig
	RateLimit     middleware.RateLimitConfig
	// Metrics may be nil; then /metrics is not mounted.
	Metrics metrics.Recorder

	Health *handler.HealthHandler
	Decks  *handler.DeckHandler
	Cards  *handler.CardHandler
}

// NewRouter builds the chi router with the global middleware chain and all routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	r.Use(middleware.TrustedProxies(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", handler.NewMetricsHandler(cfg.Metrics).Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
		r.Use(middleware.RequireJSON)
		r.Use(middleware.RateLimitIP(cfg.RateLimit))
		r.Use(middleware.Identity(cfg.Identity))
		r.Use(middleware.RateLimitUser(cfg.RateLimit))

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", cfg.Decks.List)
			r.Post("/", cfg.Decks.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Decks.Get)
				r.Put("/", cfg.Decks.Update)
				r.Delete("/", cfg.Decks.Delete)
				r.Get("/stats", cfg.Decks.Stats)

				r.Get("/cards", cfg.Cards.List)
				r.Post("/cards", cfg.Cards.Create)
				r.Put("/cards/{cardId}", cfg.Cards.Update)
				r.Delete("/cards/{cardId}", cfg.Cards.Delete)
				r.Post("/cards/{cardId}/review", cfg.Cards.Review)
			})
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

