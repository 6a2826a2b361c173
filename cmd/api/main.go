package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-case-service/internal/api/http"
	"github.com/spec-kit/support-case-service/internal/api/http/handlers"
	"github.com/spec-kit/support-case-service/internal/auth"
	"github.com/spec-kit/support-case-service/internal/config"
	"github.com/spec-kit/support-case-service/internal/events"
	"github.com/spec-kit/support-case-service/internal/observability"
	"github.com/spec-kit/support-case-service/internal/persistence"
	"github.com/spec-kit/support-case-service/internal/repository"
	"github.com/spec-kit/support-case-service/internal/service"
	"github.com/spec-kit/support-case-service/internal/triage"
	"github.com/spec-kit/support-case-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	requestRepo := repository.NewSupportRequestRepository(pool)
	caseRepo := repository.NewSupportCaseRepository(pool)
	messageRepo := repository.NewSupportMessageRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	auditRecorder := service.NewAuditRecorder(auditRepo, logger)
	classifier := triage.NewKeywordClassifier()

	authService := service.NewAuthService(cfg.Auth, adminRepo, logger)
	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth); err != nil {
		logger.Warn("bootstrap admin failed", zap.Error(err))
	}

	ingestionService := service.NewIngestionService(service.IngestionDependencies{
		RequestRepo: requestRepo,
		CaseRepo:    caseRepo,
		Classifier:  classifier,
		Audit:       auditRecorder,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:    caseRepo,
		MessageRepo: messageRepo,
		AuditRepo:   auditRepo,
		Audit:       auditRecorder,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Retention:   cfg.Retention.RetentionWindow(),
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	scheduler := worker.NewIngestionScheduler(ingestionService, redis, metrics, logger, cfg.Ingestion)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start ingestion scheduler", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), adminRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Admins:         handlers.NewAdminsHandler(authService),
		Cases:          handlers.NewCasesHandler(caseService),
		Ingestion:      handlers.NewIngestionHandler(ingestionService, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	scheduler.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
