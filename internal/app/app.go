package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"Tasker/internal/cache"
	"Tasker/internal/config"
	"Tasker/internal/logging"
	"Tasker/internal/metrics"
	"Tasker/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg     config.Config
	log     *slog.Logger
	db      *pgxpool.Pool
	redis   *redis.Client
	metrics *metrics.Metrics
	router  *gin.Engine
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	if err := runMigrations(cfg.PG.DSN); err != nil {
		a.db.Close()
		return nil, err
	}

	var taskCache *cache.TaskCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.redis = rdb
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	} else {
		log.Info("redis not configured, task cache disabled")
	}

	a.metrics = metrics.New()
	deps, err := NewDeps(cfg, repo.NewPGUserRepo(db), repo.NewPGTaskRepo(db), taskCache, a.metrics)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	if cfg.Admin.Username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		admin, err := deps.Users.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, fmt.Errorf("ensure admin: %w", err)
		}
		log.Info("admin account ready", "user_id", admin.ID, "username", admin.Username)
	}

	a.router = newRouter(cfg, deps, log)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases Redis and the pool. Pool.Close waits for acquired connections,
// so it gives up when ctx is done.
func (a *App) Close(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		var err error
		if a.redis != nil {
			err = a.redis.Close()
		}
		if a.db != nil {
			a.db.Close()
		}
		errc <- err
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return fmt.Errorf("close: %w", ctx.Err())
	}
}

// MetricsHandler serves the Prometheus registry. main mounts it on its own
// listener when METRICS_ADDR is set.
func (a *App) MetricsHandler() http.Handler {
	return a.metrics.Handler()
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// runMigrations applies the migrations embedded in the repo package.
func runMigrations(dsn string) error {
	goose.SetBaseFS(repo.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, repo.MigrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, d Deps, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(log), d.Metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, d)
	return r
}
