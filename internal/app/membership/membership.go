package membership

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/slwc/membership/internal/cache"
	"github.com/slwc/membership/internal/config"
	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/lib/jwt"
	"github.com/slwc/membership/internal/lib/rabbitmq"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/migrations"
	authservice "github.com/slwc/membership/internal/services/auth"
	certservice "github.com/slwc/membership/internal/services/certificate"
	exportservice "github.com/slwc/membership/internal/services/export"
	instructorservice "github.com/slwc/membership/internal/services/instructor"
	schoolservice "github.com/slwc/membership/internal/services/school"
	statsservice "github.com/slwc/membership/internal/services/stats"
	subscriberservice "github.com/slwc/membership/internal/services/subscriber"
	"github.com/slwc/membership/internal/storage/objectstore"
	"github.com/slwc/membership/internal/storage/repository"
)

// App HTTP-сервис членства со всеми подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает PostgreSQL, Redis, S3 и RabbitMQ и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	version, err := migrations.Run(db.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("database schema is up to date", slog.Uint64("version", uint64(version)))

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := objectstore.New(ctx, cfg.S3)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}

	var publisher subscriberservice.Publisher = rabbitmq.NopPublisher{}
	var conn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			_ = cacheRedis.Close()
			_ = db.Close()
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetRegistrationQueues())
		if err != nil {
			_ = conn.Close()
			_ = cacheRedis.Close()
			_ = db.Close()
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is not set, registration events are not published")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:        authservice.NewAuthService(db, jwtMaker),
		Schools:     schoolservice.NewSchoolService(db, cacheRedis, logger, cfg.PublicBaseURL),
		Subscribers: subscriberservice.NewSubscriberService(db, publisher, logger),
		Instructors: instructorservice.NewInstructorService(db, logger),
		Certificate: certservice.NewCertificateService(store, logger),
		Export:      exportservice.NewExportService(db, logger),
		Stats:       statsservice.NewStatsService(db),
		Health:      db,
		Limiter:     middlewarectx.NewIPRateLimiter(cfg.RatePerSecond, cfg.RateBurst),
		Registry:    registry,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		amqp:   conn,
	}, nil
}

// Run запускает сервер и останавливает его по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
