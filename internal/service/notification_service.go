package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/config"
	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/events"
)

// NotificationService turns domain events into outbound notifications.
// Student-facing delivery is owned by the platform notification system; this
// service emits the trigger records and sends the counsellor escalation email
// for critical-tier cases. Delivery failures are logged, never propagated.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCaseCreated, n.handleCaseCreated)
	n.dispatcher.Subscribe(events.EventCaseFirstResponse, n.handleFirstResponse)
	n.dispatcher.Subscribe(events.EventCaseStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleCaseCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CaseCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("CaseCreated",
		zap.String("case_id", event.CaseID),
		zap.Int("risk_tier", int(payload.RiskTier)),
	)
	if payload.RiskTier == domain.RiskTierCritical {
		n.sendEscalationEmail(event.CaseID, payload)
	}
	return nil
}

func (n *NotificationService) handleFirstResponse(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CaseFirstResponsePayload)
	if !ok {
		return nil
	}
	n.Notify(ctx, payload.UserID, "case_first_response", map[string]any{
		"case_id": event.CaseID,
	})
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseStatusChanged",
		zap.String("case_id", event.CaseID),
		zap.Any("payload", event.Payload),
	)
	return nil
}

// Notify emits a student-facing notification trigger. The platform delivery
// pipeline picks these up; this core only records the trigger.
func (n *NotificationService) Notify(ctx context.Context, userID, notificationType string, details map[string]any) {
	n.logger.Info("notification trigger",
		zap.String("user_id", userID),
		zap.String("type", notificationType),
		zap.Any("context", details),
	)
}

func (n *NotificationService) sendEscalationEmail(caseID string, payload events.CaseCreatedPayload) {
	if n.cfg.EscalationEmail == "" {
		return
	}
	if n.cfg.SendGridAPIKey == "" {
		n.logger.Info("escalation email skipped, no sendgrid key",
			zap.String("case_id", caseID),
		)
		return
	}

	from := mail.NewEmail("Wellbeing Support", n.cfg.EmailFrom)
	to := mail.NewEmail("Duty Counsellor", n.cfg.EscalationEmail)
	subject := "Critical-tier support case created"
	body := fmt.Sprintf("A tier-3 support case (%s) was opened for institution %s and needs urgent triage.", caseID, payload.InstitutionID)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(n.cfg.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		n.logger.Warn("escalation email failed", zap.String("case_id", caseID), zap.Error(err))
		return
	}
	if resp.StatusCode >= 400 {
		n.logger.Warn("escalation email rejected",
			zap.String("case_id", caseID),
			zap.Int("status", resp.StatusCode),
		)
	}
}
