package api

import (
	"context"
	"net/http"

	"github.com/dom/tour-of-heroes/internal/api/handlers"
	"github.com/dom/tour-of-heroes/internal/api/middleware"
	"github.com/dom/tour-of-heroes/internal/config"
	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/metrics"
	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/dom/tour-of-heroes/internal/service"
	"github.com/dom/tour-of-heroes/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, limiter *middleware.RateLimiter, cfg *config.Config, logger *zap.Logger) http.Handler {
	logger = logging.OrNop(logger)
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	if cfg.Environment != "test" {
		r.Use(middleware.Logger(logger.Named("http")))
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	// Initialize handlers
	heroHandler := handlers.NewHeroHandler(services.Hero, logger.Named("heroes"))
	searchHandler := handlers.NewSearchSocketHandler(hub, logger.Named("search"))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Route("/heroes", func(r chi.Router) {
			r.Get("/", heroHandler.List)
			r.Post("/", heroHandler.Create)
			r.Put("/", heroHandler.Update)
			r.Get("/search/ws", searchHandler.Handle)
			r.Get("/{id}", heroHandler.Get)
			r.Delete("/{id}", heroHandler.Delete)
		})
	})

	return r
}

// SearchLookup adapts the hero service to the live-search pipeline.
func SearchLookup(heroService *service.HeroService) search.LookupFunc {
	return func(ctx context.Context, term string) ([]domain.Hero, error) {
		found, err := heroService.SearchHeroes(ctx, term)
		if err != nil {
			// Superseded lookups are cancelled during ordinary typing.
			if ctx.Err() != nil {
				metrics.RecordSearchLookup("cancelled")
			} else {
				metrics.RecordSearchLookup("error")
			}
			return nil, err
		}
		metrics.RecordSearchLookup("ok")

		heroes := make([]domain.Hero, 0, len(found))
		for _, h := range found {
			heroes = append(heroes, *h)
		}
		return heroes, nil
	}
}
