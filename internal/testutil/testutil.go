package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/tour-of-heroes/internal/api"
	"github.com/dom/tour-of-heroes/internal/api/middleware"
	"github.com/dom/tour-of-heroes/internal/config"
	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/repository"
	"github.com/dom/tour-of-heroes/internal/repository/memory"
	repoPostgres "github.com/dom/tour-of-heroes/internal/repository/postgres"
	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/dom/tour-of-heroes/internal/service"
	"github.com/dom/tour-of-heroes/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection.
// It skips in -short mode since it needs a container runtime.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_tour_of_heroes"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Exec("TRUNCATE TABLE heroes RESTART IDENTITY CASCADE").Error; err != nil {
		t.Logf("warning: failed to truncate heroes: %v", err)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:              "0", // Random port
		Environment:       "test",
		LogLevel:          "error",
		HeroStore:         config.StoreMemory,
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
		HTTPClientTimeout: 5 * time.Second,
		SearchDebounce:    20 * time.Millisecond, // Fast debounce for tests
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server over the in-memory store,
// seeded with the starting roster.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, memory.NewRepositories(domain.SeedHeroes()...))
}

// NewTestServerWithRepos creates a complete test server over repos.
func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories) *TestServer {
	t.Helper()

	cfg := TestConfig()
	services := service.NewServices(repos, nil)

	pipeline := search.New(api.SearchLookup(services.Hero), search.WithDebounce(cfg.SearchDebounce))
	hub := websocket.NewHub(pipeline, nil)
	go hub.Run()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, nil)
	router := api.NewRouter(services, hub, limiter, cfg, nil)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// SearchSocketURL returns the live-search WebSocket URL
func (ts *TestServer) SearchSocketURL() string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return wsURL + "/api/v1/heroes/search/ws"
}
