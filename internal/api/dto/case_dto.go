package dto

import (
	"time"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// UpdateCaseStatusRequest carries a status transition.
type UpdateCaseStatusRequest struct {
	Status string `json:"status"`
}

// CaseSummary is the list-view projection of a case.
type CaseSummary struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	InstitutionID    string            `json:"institution_id"`
	Status           domain.CaseStatus `json:"status"`
	RequestedChannel string            `json:"requested_channel"`
	RiskTier         domain.RiskTier   `json:"risk_tier"`
	AssignedTo       *string           `json:"assigned_to,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// CaseDetailResponse is the full case view with thread and audit trail.
type CaseDetailResponse struct {
	CaseSummary
	ConsentRecordID  string              `json:"consent_record_id"`
	ConsentVersion   string              `json:"consent_version"`
	ConsentTimestamp time.Time           `json:"consent_timestamp"`
	FirstResponseAt  *time.Time          `json:"first_response_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	ExpiresAt        *time.Time          `json:"expires_at,omitempty"`
	ReviewNotes      *string             `json:"review_notes,omitempty"`
	Messages         []MessageResponse   `json:"messages"`
	AuditTrail       []AuditEntryPayload `json:"audit_trail"`
}

// MessageResponse is a single thread message.
type MessageResponse struct {
	ID               string                   `json:"id"`
	SenderType       domain.MessageSenderType `json:"sender_type"`
	Body             string                   `json:"body"`
	ContainsHighRisk bool                     `json:"contains_high_risk"`
	CreatedAt        time.Time                `json:"created_at"`
}

// AuditEntryPayload is one audit trail record.
type AuditEntryPayload struct {
	ID            string         `json:"id"`
	AdminUserID   *string        `json:"admin_user_id,omitempty"`
	ActionType    string         `json:"action_type"`
	ActionDetails map[string]any `json:"action_details"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ClaimResponse reports the outcome of a direct claim.
type ClaimResponse struct {
	Claimed bool `json:"claimed"`
}
