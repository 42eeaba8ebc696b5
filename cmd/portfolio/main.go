// Package main runs the portfolio API.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwilkins507/my-portfolio/articles"
	"github.com/cwilkins507/my-portfolio/internal/adapters/clients"
	"github.com/cwilkins507/my-portfolio/internal/adapters/clients/acl"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/handlers"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/middleware"
	"github.com/cwilkins507/my-portfolio/internal/adapters/storage"
	"github.com/cwilkins507/my-portfolio/internal/app"
	"github.com/cwilkins507/my-portfolio/internal/content"
	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/config"
	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
	"github.com/cwilkins507/my-portfolio/internal/platform/metrics"
	"github.com/cwilkins507/my-portfolio/internal/platform/telemetry"
	"github.com/cwilkins507/my-portfolio/internal/ports"
)

// Build-time variables, injected via ldflags:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, logCloser := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer logCloser.Close()

	logging.SetDefault(logger)

	logger.Info("starting portfolio",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown failed", slog.Any("error", shutdownErr))
		}
	}()

	m := metrics.New()

	catalog, err := content.NewLoader(articleFS(cfg.Content),
		content.WithCategoryTable(domain.DefaultCategoryTable()),
		content.WithStrictSlugs(cfg.Content.StrictSlugs),
		content.WithLogger(logger),
	).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading articles: %w", err)
	}

	renderer := content.NewRenderer(content.RenderOptions{
		ImageBase:  cfg.Content.ImageBase,
		TableClass: cfg.Content.TableClass,
		CacheSize:  cfg.Content.RenderCacheSize,
	})
	m.RegisterCacheStats(func() (int, int) {
		stats := renderer.CacheStats()
		return stats.Hits, stats.Misses
	})

	store, closeStore, err := newQuizStore(cfg.Quiz)
	if err != nil {
		return fmt.Errorf("opening quiz store: %w", err)
	}
	defer closeStore()

	relay, err := newRelay(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating relay client: %w", err)
	}

	registry := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{store, relay} {
		if err := registry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	exec := app.NewExecutor(logger)
	articleService := app.NewArticleService(catalog, renderer, m, logger)
	quizService := app.NewQuizService(store, relay, exec, logger,
		app.WithQuizMetrics(m),
		app.WithOutcomeTTL(cfg.Quiz.CookieMaxAge),
	)
	contactService := app.NewContactService(relay, exec, m)

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	buildInfo.Articles = catalog.Len()

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:      logger,
		ServiceName: cfg.App.Name,
		Timeout:     cfg.Server.RequestTimeout,
		Session: middleware.SessionConfig{
			CookieName: cfg.Quiz.CookieName,
			MaxAge:     cfg.Quiz.CookieMaxAge,
			Secure:     cfg.Quiz.CookieSecure,
		},
		Health:   handlers.NewHealthHandler(registry, buildInfo, m.Handler()),
		Articles: handlers.NewArticleHandler(articleService),
		Quiz:     handlers.NewQuizHandler(quizService),
		Contact:  handlers.NewContactHandler(contactService),
	})

	logger.Info("articles loaded", slog.Int("count", catalog.Len()))

	return waitForShutdown(ctx, logger, server, server.Start(), cfg.Server.ShutdownTimeout)
}

// articleFS serves articles from disk when content.dir is set, otherwise
// from the binary.
func articleFS(cfg config.ContentConfig) fs.FS {
	if cfg.Dir != "" {
		return os.DirFS(cfg.Dir)
	}

	return articles.FS
}

type quizStore interface {
	ports.QuizStore
	ports.HealthChecker
}

func newQuizStore(cfg config.QuizConfig) (quizStore, func(), error) {
	if cfg.Store != "bolt" {
		return storage.NewMemory(), func() {}, nil
	}

	db, err := storage.NewBolt(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

// newRelay builds the form relay client. Relay settings override the shared
// client defaults for timeout and attempts.
func newRelay(cfg *config.Config, logger *slog.Logger) (*acl.RelayClient, error) {
	retry := cfg.Client.Retry
	retry.MaxAttempts = cfg.Relay.MaxAttempts

	client, err := clients.New(clients.Config{
		BaseURL:     cfg.Relay.URL,
		ServiceName: cfg.Relay.Name,
		Timeout:     cfg.Relay.Timeout,
		Retry:       retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return acl.NewRelayClient(client, acl.RelayConfig{AccessKey: cfg.Relay.AccessKey}), nil
}

func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
