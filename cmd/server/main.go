package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/api"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/database"
	"github.com/sporthub-api/internal/metrics"
	"github.com/sporthub-api/internal/repository"
	"github.com/sporthub-api/internal/service"
	"github.com/sporthub-api/pkg/logger"
)

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back the last migration and exit")
	flag.Parse()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting SportHub comments API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Error reporting
	if cfg.SentryDSN != "" {
		if err := initSentry(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Sentry")
		}
		defer sentry.Flush(2 * time.Second)
		log.Info().Str("env", cfg.Env).Msg("Sentry enabled")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *migrateDown {
		if err := db.MigrateDown(cfg.Server.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back migration")
		}
		return
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Cool-down store
	limiter, closeLimiter, err := newLimiter(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer closeLimiter()

	// Initialize repositories and services
	repos := repository.New(db)
	m := metrics.New(nil)
	services := service.NewServices(repos, limiter, m, cfg, log)

	// Initialize router
	router := api.NewRouter(services, m, cfg, log, db)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

func initSentry(cfg *config.Config) error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Only the viewer id header is forwarded
			if event.Request != nil {
				event.Request.Cookies = ""
				event.Request.Headers = map[string]string{
					api.UserHeader: event.Request.Headers[api.UserHeader],
				}
			}
			return event
		},
	})
}

// newLimiter picks the Redis cool-down store when enabled so that the
// window holds across instances, and the in-memory one otherwise.
func newLimiter(cfg *config.Config, log zerolog.Logger) (cooldown.Limiter, func(), error) {
	if !cfg.Redis.Enabled {
		log.Info().Dur("window", cfg.Comments.Cooldown).Msg("Using in-memory cooldown")
		return cooldown.NewMemoryLimiter(cfg.Comments.Cooldown), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}

	log.Info().Str("addr", cfg.Redis.Addr).Dur("window", cfg.Comments.Cooldown).Msg("Using Redis cooldown")
	return cooldown.NewRedisLimiter(rdb, cfg.Comments.Cooldown), func() { rdb.Close() }, nil
}
