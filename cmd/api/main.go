package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadpipeline_backend/internal/adapters/storage"
	"leadpipeline_backend/internal/analytics"
	"leadpipeline_backend/internal/auth"
	"leadpipeline_backend/internal/catalog"
	"leadpipeline_backend/internal/dispatcher"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/internal/http/router"
	"leadpipeline_backend/internal/leads"
	"leadpipeline_backend/internal/notification"
	"leadpipeline_backend/internal/personnel"
	"leadpipeline_backend/internal/scheduler"
	"leadpipeline_backend/migrations"
	"leadpipeline_backend/platform/config"
	"leadpipeline_backend/platform/db"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.GetRunMigrations() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()
	if err := domain.RegisterValidators(val); err != nil {
		panic("failed to register validators: " + err.Error())
	}

	storageSvc := initStorage(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	personnelModule := personnel.NewModule(pool, storageSvc, cfg.GetMinioBucketAvatars(), val, log)
	authModule := auth.NewModule(personnelModule.Repository(), cfg, val, log)
	catalogModule := catalog.NewModule(pool, val, log)
	leadsModule := leads.NewModule(pool, eventBus, catalogModule.Service(), personnelModule.Repository(), val, log)
	analyticsModule := analytics.NewModule(pool, leadsModule.Repository(), personnelModule.Repository(), cfg.GetSnapshotLocation(), val, log)

	notificationModule := notification.New(pool, eventBus, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	if closeEnqueuer := initEmailEnqueuer(cfg, notificationModule, log); closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	// Score recompute and notifications run inline on every lead write
	dispatcher.New(
		leadsModule.ScoringService(),
		leadsModule.Repository(),
		personnelModule.Repository(),
		notificationModule.InAppService(),
		log,
	).Register(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:          cfg,
		Logger:          log,
		Health:          db.NewPoolAdapter(pool),
		EventBus:        eventBus,
		PrincipalLoader: authModule.PrincipalLoader(),
		Modules: []apphttp.Module{
			authModule,
			personnelModule,
			catalogModule,
			leadsModule,
			analyticsModule,
			notificationModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		// async notification handlers (SSE push, e-mail enqueue)
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStorage returns nil when MinIO is not configured; avatar uploads are
// then rejected by the personnel service.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.StorageService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; avatar uploads disabled")
		return nil
	}

	minioSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketAvatars()
	if err := withRetry(ctx, log, "ensure avatars bucket", 5, 2*time.Second, func() error {
		return minioSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "avatarsBucket", bucket)
	return minioSvc
}

func initEmailEnqueuer(cfg config.SchedulerConfig, m *notification.Module, log *logger.Logger) func() {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; assignment emails disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		return nil
	}
	m.SetEmailEnqueuer(client)

	return func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
