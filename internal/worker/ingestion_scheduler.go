package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/config"
	"github.com/spec-kit/support-case-service/internal/observability"
	"github.com/spec-kit/support-case-service/internal/persistence"
	"github.com/spec-kit/support-case-service/internal/service"
)

const ingestionLockKey = "support:ingestion:lock"

// IngestionScheduler periodically runs the auto-create pipeline. A Redis lock
// keeps concurrent process instances from double-scanning; the pipeline
// itself is idempotent, so a missed or duplicate run is safe either way.
type IngestionScheduler struct {
	cron       *cron.Cron
	ingestion  *service.IngestionService
	redis      *persistence.Redis
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.IngestionConfig
	instanceID string
}

// NewIngestionScheduler builds the scheduler.
func NewIngestionScheduler(ingestion *service.IngestionService, redis *persistence.Redis, metrics *observability.Metrics, logger *zap.Logger, cfg config.IngestionConfig) *IngestionScheduler {
	return &IngestionScheduler{
		cron:       cron.New(),
		ingestion:  ingestion,
		redis:      redis,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		instanceID: uuid.NewString(),
	}
}

// Start registers the cron entry and begins scheduling.
func (s *IngestionScheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("ingestion scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("ingestion scheduler started", zap.String("spec", s.cfg.CronSpec))
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (s *IngestionScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *IngestionScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LockTTL())
	defer cancel()

	acquired, err := s.redis.AcquireLock(ctx, ingestionLockKey, s.instanceID, s.cfg.LockTTL())
	if err != nil {
		s.logger.Warn("ingestion lock unavailable, running unguarded", zap.Error(err))
	} else if !acquired {
		s.logger.Debug("ingestion run skipped, lock held elsewhere")
		return
	} else {
		defer func() {
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer releaseCancel()
			if err := s.redis.ReleaseLock(releaseCtx, ingestionLockKey, s.instanceID); err != nil {
				s.logger.Warn("ingestion lock release failed", zap.Error(err))
			}
		}()
	}

	var institutionID *string
	if s.cfg.InstitutionID != "" {
		scope := s.cfg.InstitutionID
		institutionID = &scope
	}

	// System-initiated run: no acting admin on the audit entry.
	report, err := s.ingestion.IngestPending(ctx, nil, institutionID)
	if err != nil {
		s.logger.Error("scheduled ingestion failed", zap.Error(err))
		return
	}
	s.metrics.RecordIngestionRun(report.CasesCreated)
	if report.CasesCreated > 0 {
		s.logger.Info("scheduled ingestion completed", zap.Int("cases_created", report.CasesCreated))
	}
}
