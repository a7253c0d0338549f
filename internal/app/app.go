package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/application"
	"github.com/Sanalemba991/digiallink-sa/internal/config"
	"github.com/Sanalemba991/digiallink-sa/internal/contact"
	"github.com/Sanalemba991/digiallink-sa/internal/db"
	"github.com/Sanalemba991/digiallink-sa/internal/events"
	"github.com/Sanalemba991/digiallink-sa/internal/health"
	"github.com/Sanalemba991/digiallink-sa/internal/kafka"
	"github.com/Sanalemba991/digiallink-sa/internal/logger"
	"github.com/Sanalemba991/digiallink-sa/internal/messaging"
	"github.com/Sanalemba991/digiallink-sa/internal/metrics"
	"github.com/Sanalemba991/digiallink-sa/internal/middleware"
	"github.com/Sanalemba991/digiallink-sa/internal/resume"
	"github.com/Sanalemba991/digiallink-sa/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	database      *db.Provider
	producer      events.Producer
	meterProvider *sdkmetric.MeterProvider
	healthMetrics *metrics.HealthMetrics
}

// New loads configuration and wires the application. It fails when the
// database uri is missing; the connection itself is opened on first use.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("config loaded", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	return NewWithConfig(ctx, cfg, slogLogger)
}

func NewWithConfig(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger) (*App, error) {
	slogLogger.Info("initializing application")

	meterProvider, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter(ServiceName)
	appMetrics, err := metrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if _, err := metrics.NewRuntimeMetrics(meter); err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	healthMetrics, err := metrics.NewHealthMetrics(meter, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to create health metrics: %w", err)
	}

	database, err := db.NewProvider(cfg.Database, slogLogger,
		db.WithMetrics(appMetrics.DB()),
		db.WithOnConnect(func(ctx context.Context, conn *bun.DB) error {
			if err := db.RunMigrations(ctx, conn, contact.Schema(), application.Schema()); err != nil {
				return err
			}
			return appMetrics.DB().RegisterDB(conn.DB, meter)
		}),
	)
	if err != nil {
		return nil, err
	}

	store, err := newResumeStore(ctx, cfg.Resume, slogLogger)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:        cfg,
		router:        chi.NewRouter(),
		logger:        slogLogger,
		database:      database,
		producer:      newProducer(cfg.Events, appMetrics.Events(), slogLogger),
		meterProvider: meterProvider,
		healthMetrics: healthMetrics,
	}

	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.Recoverer)
	// Applied globally so error and not-found responses carry the headers too
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler(database, slogLogger)
	healthHandler.RegisterRoutes(app.router)

	contactRepo := contact.NewRepository(database, appMetrics.DB())
	contactService := contact.NewService(contactRepo, app.producer, appMetrics, slogLogger)
	contactHandler := contact.NewHandler(contactService, slogLogger)

	applicationRepo := application.NewRepository(database, appMetrics.DB())
	applicationService := application.NewService(applicationRepo, store, app.producer, appMetrics, slogLogger)
	applicationHandler := application.NewHandler(applicationService, slogLogger, cfg.Server.MaxUploadBytes)

	app.router.Route("/api", func(r chi.Router) {
		contactHandler.RegisterRoutes(r)
		applicationHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app, nil
}

func newResumeStore(ctx context.Context, cfg config.ResumeConfig, logger *slog.Logger) (resume.Store, error) {
	switch cfg.Storage {
	case config.ResumeStorageS3:
		store, err := resume.NewS3Store(ctx, cfg.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 resume store: %w", err)
		}
		return store, nil
	default:
		logger.Info("storing resumes inline")
		return resume.NewInlineStore(), nil
	}
}

// newProducer falls back to dropping events when the broker is unavailable;
// submissions never depend on it.
func newProducer(cfg config.EventsConfig, m *metrics.MessagingMetrics, logger *slog.Logger) events.Producer {
	switch cfg.Driver {
	case config.EventsDriverNATS:
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
			return events.Nop{}
		}
		return events.Instrument(producer, "nats", m)
	case config.EventsDriverKafka:
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("failed to initialize kafka producer", "error", err)
			return events.Nop{}
		}
		return events.Instrument(producer, "kafka", m)
	default:
		logger.Info("submission events disabled")
		return events.Nop{}
	}
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartHealthChecks pings the database until ctx is done and logs every
// change in reachability. The first ping also opens the connection.
func (a *App) StartHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	healthy := true
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		start := time.Now()
		err := a.database.Ping(pingCtx)
		cancel()
		a.healthMetrics.RecordDependencyCheck(ctx, "postgres", time.Since(start), err)

		switch {
		case err != nil && healthy:
			a.logger.Warn("database unreachable", "error", err)
			healthy = false
		case err == nil && !healthy:
			a.logger.Info("database reachable")
			healthy = true
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("event producer close error", "error", err)
	}
	if err := a.database.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
