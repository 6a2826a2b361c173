package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/repository"
)

// AuditRecorder appends audit entries on a best-effort basis. A failed append
// is logged and swallowed so it can never mask or roll back the case mutation
// it accompanies.
type AuditRecorder struct {
	repo   repository.AuditLogRepository
	logger *zap.Logger
}

// NewAuditRecorder builds the recorder.
func NewAuditRecorder(repo repository.AuditLogRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, logger: logger}
}

// Record appends the entry, warning on failure.
func (a *AuditRecorder) Record(ctx context.Context, entry *domain.AuditLogEntry) {
	if a == nil || a.repo == nil {
		return
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.Warn("audit append failed",
			zap.String("action_type", entry.ActionType),
			zap.Error(err),
		)
	}
}

// CaseAction records an admin action against a single case.
func (a *AuditRecorder) CaseAction(ctx context.Context, caseID string, adminID *string, actionType string, details map[string]any) {
	a.Record(ctx, &domain.AuditLogEntry{
		CaseID:        &caseID,
		AdminUserID:   adminID,
		ActionType:    actionType,
		ActionDetails: details,
	})
}

// BatchAction records a batch-level action with no single case id.
func (a *AuditRecorder) BatchAction(ctx context.Context, adminID *string, actionType string, details map[string]any) {
	a.Record(ctx, &domain.AuditLogEntry{
		AdminUserID:   adminID,
		ActionType:    actionType,
		ActionDetails: details,
	})
}
