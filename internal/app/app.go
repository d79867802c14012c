// Package app wires together the persistent store, cache, queue, HTTP
// surface, and background workers into a single runnable process.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webhookrelay/relay/config"
	"github.com/webhookrelay/relay/internal/cache"
	"github.com/webhookrelay/relay/internal/database"
	"github.com/webhookrelay/relay/internal/domain"
	httpapi "github.com/webhookrelay/relay/internal/http"
	"github.com/webhookrelay/relay/internal/http/middleware"
	"github.com/webhookrelay/relay/internal/queue"
	"github.com/webhookrelay/relay/internal/repository"
	"github.com/webhookrelay/relay/internal/service"
	"github.com/webhookrelay/relay/internal/worker"
	"github.com/webhookrelay/relay/pkg/logger"
)

// AppInterface is the surface cmd/api drives: Initialize wires every
// component, Start launches the HTTP server and background loops, Shutdown
// drains them in reverse order.
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error
}

// App holds every wired component of the running process.
type App struct {
	config *config.Config
	logger logger.Logger

	db  *sql.DB
	rdb *redis.Client

	subRepo domain.SubscriptionRepository
	logRepo domain.DeliveryLogRepository

	cache        *cache.RedisCache
	subCache     *cache.SubscriptionCache
	subscription *service.SubscriptionService

	queue     *queue.RedisQueue
	scheduler *queue.Scheduler

	deliveryWorker  *worker.DeliveryWorker
	retentionPurger *worker.RetentionPurger

	server *http.Server

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	activeRequests int64
	wg             sync.WaitGroup

	opts appOptions
}

// appOptions holds the functional-option-configurable pieces of App, so
// tests can substitute a fake DB/Redis/logger without touching env vars.
type appOptions struct {
	db     *sql.DB
	rdb    *redis.Client
	logger logger.Logger
	config *config.Config
}

// AppOption customizes New.
type AppOption func(*appOptions)

// WithMockDB injects a pre-opened *sql.DB, bypassing config-driven connect.
func WithMockDB(db *sql.DB) AppOption {
	return func(o *appOptions) { o.db = db }
}

// WithMockRedis injects a pre-constructed Redis client, bypassing
// config-driven connect.
func WithMockRedis(rdb *redis.Client) AppOption {
	return func(o *appOptions) { o.rdb = rdb }
}

// WithLogger overrides the default zerolog-backed logger.
func WithLogger(log logger.Logger) AppOption {
	return func(o *appOptions) { o.logger = log }
}

// WithConfig overrides the loaded config, useful for tests.
func WithConfig(cfg *config.Config) AppOption {
	return func(o *appOptions) { o.config = cfg }
}

// New creates an App from options, without wiring anything yet. Call
// Initialize to connect and build every component.
func New(opts ...AppOption) *App {
	o := appOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return &App{opts: o}
}

// Initialize connects to Postgres and Redis, applies the schema, and wires
// every repository, cache, queue, service, worker, and HTTP handler.
func (a *App) Initialize() error {
	if a.opts.config != nil {
		a.config = a.opts.config
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.config = cfg
	}

	if a.opts.logger != nil {
		a.logger = a.opts.logger
	} else {
		a.logger = logger.NewLogger()
	}

	if err := a.initDB(); err != nil {
		return err
	}
	if err := a.initRedis(); err != nil {
		return err
	}

	a.initRepositories()
	a.initServices()
	a.initWorkers()
	a.initHandlers()

	a.shutdownCtx, a.shutdownCancel = context.WithCancel(context.Background())

	return nil
}

func (a *App) initDB() error {
	if a.opts.db != nil {
		a.db = a.opts.db
		return nil
	}

	db, err := sql.Open("postgres", a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := database.GetConnectionPoolSettings(a.config.Environment)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitializeDatabase(db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a.db = db
	return nil
}

func (a *App) initRedis() error {
	if a.opts.rdb != nil {
		a.rdb = a.opts.rdb
		return nil
	}

	opt, err := redis.ParseURL(a.config.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.rdb = rdb
	return nil
}

func (a *App) initRepositories() {
	a.subRepo = repository.NewSubscriptionRepository(a.db)
	a.logRepo = repository.NewDeliveryLogRepository(a.db)
}

func (a *App) initServices() {
	a.cache = cache.NewRedisCache(a.rdb, a.logger)
	a.subCache = cache.NewSubscriptionCache(a.cache, a.subRepo)
	a.subscription = service.NewSubscriptionService(a.subRepo, a.subCache, a.logger)
	a.queue = queue.NewRedisQueue(a.rdb)
	a.scheduler = queue.NewScheduler(a.queue, a.logger)
}

func (a *App) initWorkers() {
	httpClient := &http.Client{Timeout: a.config.Delivery.HTTPTimeout}

	a.deliveryWorker = worker.NewDeliveryWorker(
		a.subCache,
		a.logRepo,
		a.queue,
		httpClient,
		a.logger,
		a.config.Delivery.WorkerCount,
	)

	a.retentionPurger = worker.NewRetentionPurger(
		a.logRepo,
		a.logger,
		a.config.Delivery.PurgeInterval,
		time.Duration(a.config.Delivery.RetentionHours)*time.Hour,
	)
}

func (a *App) initHandlers() {
	subHandler := httpapi.NewSubscriptionHandler(a.subscription, a.logger)
	ingestHandler := httpapi.NewIngestHandler(a.subCache, a.queue, a.logger)
	statusHandler := httpapi.NewStatusHandler(a.logRepo, a.logger)

	mux := httpapi.NewRouter(subHandler, ingestHandler, statusHandler)

	handler := middleware.CORS(a.gracefulShutdownMiddleware(mux))

	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler: handler,
	}
}

// gracefulShutdownMiddleware tracks in-flight requests so Shutdown can wait
// for them to finish, and rejects new requests once shutdown has begun.
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-a.shutdownCtx.Done():
			httpapi.WriteJSONError(w, "server is shutting down", http.StatusServiceUnavailable)
			return
		default:
		}

		atomic.AddInt64(&a.activeRequests, 1)
		a.wg.Add(1)
		defer func() {
			atomic.AddInt64(&a.activeRequests, -1)
			a.wg.Done()
		}()

		next.ServeHTTP(w, r)
	})
}

// Start launches the delivery worker pool, the scheduler, the retention
// purger, and the HTTP server. It blocks until the server stops; callers
// typically run it in its own goroutine.
func (a *App) Start() error {
	a.deliveryWorker.Start(a.shutdownCtx)
	go a.scheduler.Start(a.shutdownCtx)
	go a.retentionPurger.Start(a.shutdownCtx)

	a.logger.WithField("addr", a.server.Addr).Info("http server starting")

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

// Shutdown stops accepting new requests, waits for in-flight requests and
// the delivery worker pool to finish, then closes the database and Redis
// connections. The scheduler and retention purger are stopped by cancelling
// their context; Shutdown does not wait for them to return.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownCancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.WithField("error", err.Error()).Error("error shutting down http server")
	}

	a.deliveryWorker.Stop()

	waitDone := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		a.logger.Warn("shutdown deadline reached before all requests drained")
	}

	return a.cleanupResources()
}

func (a *App) cleanupResources() error {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("error closing redis connection")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("error closing database connection")
		}
	}
	return nil
}

// Logger returns the App's logger, for use by cmd/api during bootstrap
// before Start has launched background loops. It is nil until Initialize
// has run.
func (a *App) Logger() logger.Logger {
	return a.logger
}

// Config returns the App's resolved configuration.
func (a *App) Config() *config.Config {
	return a.config
}
