package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/events"
	"github.com/spec-kit/support-case-service/internal/repository"
	apperrors "github.com/spec-kit/support-case-service/pkg/util/errorutil"
)

// CaseService owns the case status lifecycle and assignment rules. A
// counsellor may act on a case only while it is unassigned or already theirs;
// touching an unassigned case claims it in the same atomic write as the
// status change.
type CaseService struct {
	cases      repository.SupportCaseRepository
	messages   repository.SupportMessageRepository
	auditLog   repository.AuditLogRepository
	audit      *AuditRecorder
	dispatcher events.Dispatcher
	logger     *zap.Logger
	retention  time.Duration
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	CaseRepo    repository.SupportCaseRepository
	MessageRepo repository.SupportMessageRepository
	AuditRepo   repository.AuditLogRepository
	Audit       *AuditRecorder
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Retention   time.Duration
}

// CaseListFilter describes counsellor queue filters.
type CaseListFilter struct {
	Statuses   []domain.CaseStatus
	RiskTiers  []domain.RiskTier
	AssignedTo *string
	Unassigned bool
	Limit      int
	Offset     int
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	retention := deps.Retention
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &CaseService{
		cases:      deps.CaseRepo,
		messages:   deps.MessageRepo,
		auditLog:   deps.AuditRepo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		retention:  retention,
	}
}

// SetStatus validates and applies a status transition for the acting
// counsellor. When the case is still unassigned the transition claims it in
// the same conditional update, so the claim and the status value are never
// persisted separately.
func (s *CaseService) SetStatus(ctx context.Context, admin domain.AdminIdentity, caseID string, newStatus domain.CaseStatus) (*domain.SupportCase, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidStatus("unrecognized status value", map[string]any{
			"status": string(newStatus),
		})
	}

	supportCase, err := s.loadScoped(ctx, admin, caseID)
	if err != nil {
		return nil, err
	}
	if supportCase.Status.Terminal() {
		return nil, apperrors.NewInvalidStatus("case is in a terminal status", map[string]any{
			"status": string(supportCase.Status),
		})
	}
	if supportCase.AssignedTo != nil && *supportCase.AssignedTo != admin.ID {
		return nil, apperrors.NewForbidden("case assigned to another counsellor")
	}

	claimed := supportCase.AssignedTo == nil
	priorEffective := supportCase.Status
	if claimed {
		priorEffective = domain.CaseStatusAssigned
	}

	now := time.Now().UTC()
	firstResponse := supportCase.FirstResponseAt == nil

	adminID := admin.ID
	supportCase.AssignedTo = &adminID
	supportCase.Status = newStatus
	if firstResponse {
		supportCase.FirstResponseAt = &now
	}
	if newStatus == domain.CaseStatusClosed {
		completed := now
		expires := completed.Add(s.retention)
		supportCase.CompletedAt = &completed
		supportCase.ExpiresAt = &expires
	}

	ok, err := s.cases.UpdateOwned(ctx, supportCase, admin.ID)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("persistence", err)
	}
	if !ok {
		// Lost the claim race between read and write.
		return nil, apperrors.NewForbidden("case assigned to another counsellor")
	}
	supportCase.UpdatedAt = now

	s.audit.CaseAction(ctx, supportCase.ID, &adminID, domain.CaseAuditAction(newStatus), map[string]any{
		"previous_status": string(priorEffective),
		"new_status":      string(newStatus),
		"claimed":         claimed,
	})

	s.publish(ctx, events.Event{
		Type:   events.EventCaseStatusChanged,
		CaseID: supportCase.ID,
		Actor:  events.AdminActor(admin.ID),
		Payload: events.CaseStatusChangedPayload{
			OldStatus: priorEffective,
			NewStatus: newStatus,
			Claimed:   claimed,
		},
	})
	if firstResponse {
		s.publish(ctx, events.Event{
			Type:   events.EventCaseFirstResponse,
			CaseID: supportCase.ID,
			Actor:  events.AdminActor(admin.ID),
			Payload: events.CaseFirstResponsePayload{
				UserID:  supportCase.UserID,
				AdminID: admin.ID,
			},
		})
	}
	return supportCase, nil
}

// Claim assigns an unassigned case to the acting counsellor via a single
// conditional update. Exactly one of any set of concurrent callers wins; the
// losers get Forbidden. Claiming a case already owned by the caller is a
// no-op returning false.
func (s *CaseService) Claim(ctx context.Context, admin domain.AdminIdentity, caseID string) (bool, error) {
	supportCase, err := s.loadScoped(ctx, admin, caseID)
	if err != nil {
		return false, err
	}
	if supportCase.AssignedTo != nil {
		if *supportCase.AssignedTo == admin.ID {
			return false, nil
		}
		return false, apperrors.NewForbidden("case assigned to another counsellor")
	}

	claimed, err := s.cases.Claim(ctx, caseID, admin.ID)
	if err != nil {
		return false, apperrors.NewUpstreamFailure("persistence", err)
	}
	if !claimed {
		return false, apperrors.NewForbidden("case assigned to another counsellor")
	}

	adminID := admin.ID
	s.audit.CaseAction(ctx, caseID, &adminID, domain.AuditActionCaseClaimed, map[string]any{
		"assigned_to": adminID,
	})
	s.publish(ctx, events.Event{
		Type:    events.EventCaseClaimed,
		CaseID:  caseID,
		Actor:   events.AdminActor(admin.ID),
		Payload: events.CaseClaimedPayload{AdminID: admin.ID},
	})
	return true, nil
}

// GetCase returns a case with its message thread and audit trail.
func (s *CaseService) GetCase(ctx context.Context, admin domain.AdminIdentity, caseID string) (*domain.SupportCase, []domain.SupportMessage, []domain.AuditLogEntry, error) {
	supportCase, err := s.loadScoped(ctx, admin, caseID)
	if err != nil {
		return nil, nil, nil, err
	}
	msgs, err := s.messages.ListByCase(ctx, caseID)
	if err != nil {
		return nil, nil, nil, apperrors.NewUpstreamFailure("persistence", err)
	}
	trail, err := s.auditLog.ListByCase(ctx, caseID)
	if err != nil {
		return nil, nil, nil, apperrors.NewUpstreamFailure("persistence", err)
	}
	return supportCase, msgs, trail, nil
}

// ListCases returns the institution-scoped case queue.
func (s *CaseService) ListCases(ctx context.Context, admin domain.AdminIdentity, filter CaseListFilter) ([]domain.SupportCase, error) {
	institutionID := admin.InstitutionID
	repoFilter := repository.CaseFilter{
		InstitutionID: &institutionID,
		Statuses:      filter.Statuses,
		RiskTiers:     filter.RiskTiers,
		AssignedTo:    filter.AssignedTo,
		Unassigned:    filter.Unassigned,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	result, err := s.cases.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("persistence", err)
	}
	return result, nil
}

// loadScoped fetches a case and hides cases outside the caller's institution.
func (s *CaseService) loadScoped(ctx context.Context, admin domain.AdminIdentity, caseID string) (*domain.SupportCase, error) {
	supportCase, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.NewUpstreamFailure("persistence", err)
	}
	if supportCase.InstitutionID != admin.InstitutionID {
		return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
	}
	return supportCase, nil
}

func (s *CaseService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
