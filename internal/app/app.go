package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinica-platform/apps/api/internal/archive"
	"github.com/clinica-platform/apps/api/internal/config"
	"github.com/clinica-platform/apps/api/internal/contactimport"
	"github.com/clinica-platform/apps/api/internal/db"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/handlers"
	"github.com/clinica-platform/apps/api/internal/middleware"
	"github.com/clinica-platform/apps/api/internal/outreach"
)

// App holds the HTTP handler and the connections it owns.
type App struct {
	Handler http.Handler
	Pool    *pgxpool.Pool
	redis   *redis.Client
}

// New connects to Postgres (and Redis and the archive bucket when
// configured) and builds the router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{Pool: pool}

	var store archive.Store
	if cfg.ArchiveEnabled() {
		minioStore, err := archive.NewMinioStore(ctx, cfg.ArchiveEndpoint, cfg.ArchiveAccessKey, cfg.ArchiveSecretKey, cfg.ArchiveBucket, cfg.ArchiveUseSSL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect archive: %w", err)
		}
		store = minioStore
		logger.Info("upload_archive_enabled", "endpoint", cfg.ArchiveEndpoint, "bucket", cfg.ArchiveBucket)
	}

	limiter, err := a.rateLimiter(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	handler, err := NewRouter(cfg, NewServer(cfg, pool, store, logger), limiter, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Handler = handler
	return a, nil
}

// NewServer wires the import and outreach services onto one pool.
func NewServer(cfg config.Config, pool *pgxpool.Pool, store archive.Store, logger *slog.Logger) *handlers.Server {
	queries := gen.New(pool)
	tx := db.NewTransactor(pool, queries)

	importer := contactimport.NewImporter(
		func(ctx context.Context, fn func(contactimport.Store) error) error {
			return tx.InTx(ctx, func(q *gen.Queries) error { return fn(q) })
		},
		contactimport.Options{
			MaxRows:       cfg.ImportMaxRows,
			DefaultOrigin: cfg.ImportDefaultOrigin,
			Location:      cfg.Location,
			Logger:        logger,
		},
	)
	outreachSvc := outreach.NewService(
		func(ctx context.Context, fn func(outreach.Store) error) error {
			return tx.InTx(ctx, func(q *gen.Queries) error { return fn(q) })
		},
		logger,
	)
	return handlers.NewServer(cfg, queries, importer, outreachSvc, store, logger)
}

func (a *App) rateLimiter(ctx context.Context, cfg config.Config) (middleware.RateLimiter, error) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, nil
	}
	if cfg.RedisAddr == "" {
		return middleware.NewIPRateLimiterWithMaxEntries(cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitMaxIPs), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	limiter, err := middleware.NewRedisRateLimiter(client, "clinica:ratelimit", cfg.RateLimitPerMinute, time.Minute)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	a.redis = client
	return limiter, nil
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
