package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/tour-of-heroes/internal/api"
	"github.com/dom/tour-of-heroes/internal/api/middleware"
	"github.com/dom/tour-of-heroes/internal/config"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/repository"
	"github.com/dom/tour-of-heroes/internal/repository/memory"
	"github.com/dom/tour-of-heroes/internal/repository/postgres"
	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/dom/tour-of-heroes/internal/service"
	"github.com/dom/tour-of-heroes/internal/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	// Initialize services
	services := service.NewServices(repos, log.Named("service"))
	if cfg.SeedHeroes {
		seeded, err := services.Hero.SeedIfEmpty(ctx)
		if err != nil {
			return fmt.Errorf("seed heroes: %w", err)
		}
		if seeded > 0 {
			log.Info("seeded heroes", zap.Int("count", seeded))
		}
	}

	// Initialize live search
	pipeline := search.New(api.SearchLookup(services.Hero),
		search.WithDebounce(cfg.SearchDebounce),
		search.WithLogger(log.Named("search")),
	)
	hub := websocket.NewHub(pipeline, log.Named("ws"))
	go hub.Run()
	defer hub.Stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log.Named("ratelimit"))
	limiter.StartCleanup(time.Minute, ctx.Done())

	router := api.NewRouter(services, hub, limiter, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.HeroStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(cfg *config.Config, log *zap.Logger) (*repository.Repositories, error) {
	if cfg.HeroStore != config.StorePostgres {
		return memory.NewRepositories(), nil
	}

	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, logLevel)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("connected to database")
	return postgres.NewRepositories(db), nil
}
