package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"

	"github.com/avoronov/eventhub/internal/application/category"
	"github.com/avoronov/eventhub/internal/application/compilation"
	"github.com/avoronov/eventhub/internal/application/event"
	"github.com/avoronov/eventhub/internal/application/request"
	"github.com/avoronov/eventhub/internal/application/user"
	"github.com/avoronov/eventhub/internal/audit"
	"github.com/avoronov/eventhub/internal/config"
	rediscache "github.com/avoronov/eventhub/internal/infrastructure/caching/redis"
	"github.com/avoronov/eventhub/internal/infrastructure/db/postgres"
	rabbitpub "github.com/avoronov/eventhub/internal/infrastructure/messaging/rabbitmq"
	"github.com/avoronov/eventhub/internal/infrastructure/stats"
	"github.com/avoronov/eventhub/internal/logger"
	"github.com/avoronov/eventhub/internal/transport/http/handlers"
	authmw "github.com/avoronov/eventhub/internal/transport/http/middleware"
	"github.com/avoronov/eventhub/internal/transport/http/router"
)

// sysClock feeds system time to the application services
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	Pool   *pgxpool.Pool

	Publisher *rabbitpub.Publisher
	Cache     *rediscache.Client
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	u, _ := url.Parse(cfg.DatabaseURL)
	zlog.Info().
		Str("db_user", u.User.Username()).
		Str("db_host", u.Host).
		Str("db_db", u.Path).
		Msg("db config loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		zlog.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	app := NewApp(cfg, pool)
	defer func() {
		if app.Publisher != nil {
			_ = app.Publisher.Close()
		}
		if app.Cache != nil {
			_ = app.Cache.Close()
		}
	}()

	zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal().Err(err).Msg("server crashed")
	}
}

func NewApp(cfg *config.Config, pool *pgxpool.Pool) *App {
	// 1) Infrastructure
	eventRepo := postgres.NewEventRepo(pool)
	requestStore := postgres.NewRequestStore(pool)
	categoryRepo := postgres.NewCategoryRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	compilationRepo := postgres.NewCompilationRepo(pool)

	var rabbit *rabbitpub.Publisher
	var pub event.Publisher = event.NoopPublisher{}

	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		rabbit = p
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")

		worker := postgres.NewOutboxWorker(pool, p)
		worker.Start(context.Background(), cfg.OutboxInterval)
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	var cache *rediscache.Client
	var eventCache event.Cache
	if cfg.RedisURL != "" {
		c, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			zlog.Fatal().Err(err).Msg("redis init failed")
		}
		cache = c
		eventCache = c
		zlog.Info().Msg("redis cache ready")
	} else {
		zlog.Warn().Msg("REDIS_URL empty: event detail caching disabled")
	}

	var statsClient event.StatsClient = event.NoopStats{}
	if cfg.StatsURL != "" {
		statsClient = stats.NewClient(cfg.StatsURL, cfg.StatsTimeout)
	}

	// 2) Application
	clock := sysClock{}
	auditLog := audit.New(zlog.Logger)

	eventSvc := event.New(eventRepo, categoryRepo, userRepo, statsClient, eventCache, pub, clock, cfg.CacheTTLDetails)
	requestSvc := request.New(requestStore, eventRepo, userRepo, auditLog, clock)
	categorySvc := category.New(categoryRepo, clock)
	userSvc := user.New(userRepo, clock)
	compilationSvc := compilation.New(compilationRepo, eventRepo, clock)

	// 3) Transport
	h := router.Handlers{
		Events:       handlers.NewEventsHandler(eventSvc),
		Requests:     handlers.NewRequestsHandler(requestSvc),
		Categories:   handlers.NewCategoriesHandler(categorySvc),
		Users:        handlers.NewUsersHandler(userSvc),
		Compilations: handlers.NewCompilationsHandler(compilationSvc),
		Health:       handlers.NewHealthHandler(),
	}
	auth := authmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)

	// 4) Router
	httpHandler := router.New(h, auth, cfg)

	// 5) Server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &App{
		Config:    cfg,
		Server:    srv,
		Pool:      pool,
		Publisher: rabbit,
		Cache:     cache,
	}
}
