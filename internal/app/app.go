package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"contact-service/internal/config"
	"contact-service/internal/db"
	"contact-service/internal/health"
	"contact-service/internal/httputil"
	"contact-service/internal/logging"
	"contact-service/internal/metrics"
	"contact-service/internal/middleware"
	"contact-service/internal/notify"
	"contact-service/internal/submission"
	"contact-service/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	database      *bun.DB
	notifier      notify.Notifier
	meterProvider *sdkmetric.MeterProvider
}

func New() *App {
	slogLogger := logging.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		meterProvider, err := telemetry.InitMeterProvider(ctx, ServiceName, Version, cfg.Telemetry.Endpoint, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize telemetry", "error", err)
		} else {
			app.meterProvider = meterProvider
		}
	}

	// With telemetry disabled the global meter is a no-op, so this is safe
	// either way.
	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		slogLogger.Warn("failed to initialize metrics", "error", err)
		m = metrics.NewMock()
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	app.database = database

	if err := db.RunMigrations(ctx, database, (*submission.Submission)(nil)); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	app.notifier = buildNotifier(cfg.Notify, slogLogger)

	repo := submission.NewRepository(database, m)
	service := submission.NewService(repo, app.notifier, m, slogLogger)
	handler := submission.NewHandler(service, slogLogger, m)
	healthHandler := health.NewHandler(service, slogLogger)

	// Apply CORS middleware globally; it also answers OPTIONS preflights.
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	app.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health endpoints (no auth required)
	healthHandler.RegisterRoutes(app.router)

	// Public intake, gated by the anon gateway key
	app.router.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearerKey(cfg.Auth.AnonKey, slogLogger))
		handler.RegisterPublicRoutes(r)
	})

	// Admin triage API, gated by the service role key
	app.router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireBearerKey(cfg.Auth.ServiceRoleKey, slogLogger))
		handler.RegisterAdminRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

// buildNotifier wires the configured best-effort sinks. A sink that fails to
// initialize is skipped with a warning; with no sinks the returned notifier
// is nil and the service simply skips the notify step.
func buildNotifier(cfg config.NotifyConfig, logger *slog.Logger) notify.Notifier {
	var sinks []notify.Notifier

	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(cfg.WebhookURL, logger))
	}

	if cfg.NATS.URL != "" {
		natsNotifier, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS notifier", "error", err)
		} else {
			sinks = append(sinks, natsNotifier)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("failed to initialize kafka notifier", "error", err)
		} else {
			sinks = append(sinks, kafkaNotifier)
		}
	}

	switch len(sinks) {
	case 0:
		logger.Info("no notification sink configured, notify step disabled")
		return nil
	case 1:
		return sinks[0]
	default:
		return notify.NewMulti(sinks...)
	}
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
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	err := a.server.Shutdown(ctx)

	if a.notifier != nil {
		if closeErr := a.notifier.Close(); closeErr != nil {
			a.logger.Warn("failed to close notifier", "error", closeErr)
		}
	}
	if shutdownErr := telemetry.Shutdown(ctx, a.meterProvider, a.logger); shutdownErr != nil {
		a.logger.Warn("failed to shut down telemetry", "error", shutdownErr)
	}
	db.Close(a.database)

	return err
}
