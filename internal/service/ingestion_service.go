package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/events"
	"github.com/spec-kit/support-case-service/internal/repository"
	"github.com/spec-kit/support-case-service/internal/triage"
	apperrors "github.com/spec-kit/support-case-service/pkg/util/errorutil"
)

// IngestionService converts eligible flagged requests into open cases.
// Eligibility requires case_id to still be null, so re-running the pipeline
// never reprocesses a converted request.
type IngestionService struct {
	requests   repository.SupportRequestRepository
	cases      repository.SupportCaseRepository
	classifier triage.Classifier
	audit      *AuditRecorder
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IngestionDependencies bundles collaborators for the pipeline.
type IngestionDependencies struct {
	RequestRepo repository.SupportRequestRepository
	CaseRepo    repository.SupportCaseRepository
	Classifier  triage.Classifier
	Audit       *AuditRecorder
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CreatedCase maps a converted request to its new case.
type CreatedCase struct {
	RequestID string          `json:"request_id"`
	CaseID    string          `json:"case_id"`
	RiskTier  domain.RiskTier `json:"risk_tier"`
}

// IngestReport summarizes one pipeline run.
type IngestReport struct {
	CasesCreated int           `json:"cases_created"`
	Created      []CreatedCase `json:"created"`
}

// NewIngestionService constructs the pipeline.
func NewIngestionService(deps IngestionDependencies) *IngestionService {
	return &IngestionService{
		requests:   deps.RequestRepo,
		cases:      deps.CaseRepo,
		classifier: deps.Classifier,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// IngestPending scans eligible requests oldest-first and converts each into a
// case. A single failed conversion is logged and skipped; the batch always
// runs to completion. actorAdminID is nil for scheduler-initiated runs.
// Returns a report even when nothing was eligible.
func (s *IngestionService) IngestPending(ctx context.Context, actorAdminID *string, institutionID *string) (*IngestReport, error) {
	pending, err := s.requests.ListEligible(ctx, institutionID)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("persistence", err)
	}

	report := &IngestReport{Created: []CreatedCase{}}
	for i := range pending {
		req := &pending[i]
		created, err := s.convert(ctx, req)
		if err != nil {
			s.logger.Warn("request conversion failed",
				zap.String("request_id", req.ID),
				zap.Error(err),
			)
			continue
		}
		report.Created = append(report.Created, *created)
	}
	report.CasesCreated = len(report.Created)

	s.audit.BatchAction(ctx, actorAdminID, domain.AuditActionAutoCreateCases, map[string]any{
		"cases_created": report.CasesCreated,
		"created":       report.Created,
	})
	return report, nil
}

func (s *IngestionService) convert(ctx context.Context, req *domain.SupportRequest) (*CreatedCase, error) {
	tier := s.classifier.Tier(req.ContextExcerpt)

	supportCase := &domain.SupportCase{
		UserID:           req.UserID,
		InstitutionID:    req.InstitutionID,
		Status:           domain.CaseStatusOpen,
		RequestedChannel: domain.ChannelAutoFlagged,
		RiskTier:         tier,
		AssignedTo:       nil,
	}
	if req.ConsentRecordID != nil {
		supportCase.ConsentRecordID = *req.ConsentRecordID
	}
	if req.ConsentVersion != nil {
		supportCase.ConsentVersion = *req.ConsentVersion
	}
	if req.ConsentTimestamp != nil {
		supportCase.ConsentTimestamp = *req.ConsentTimestamp
	}

	if err := s.cases.CreateFromRequest(ctx, supportCase, req.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventCaseCreated,
		CaseID: supportCase.ID,
		Actor:  events.SystemActor(),
		Payload: events.CaseCreatedPayload{
			RequestID:     req.ID,
			UserID:        supportCase.UserID,
			InstitutionID: supportCase.InstitutionID,
			RiskTier:      tier,
		},
	})

	return &CreatedCase{
		RequestID: req.ID,
		CaseID:    supportCase.ID,
		RiskTier:  tier,
	}, nil
}

func (s *IngestionService) publish(ctx context.Context, event events.Event) {
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
