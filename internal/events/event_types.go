package events

import (
	"time"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated       EventType = "case_created"
	EventCaseClaimed       EventType = "case_claimed"
	EventCaseStatusChanged EventType = "case_status_changed"
	EventCaseFirstResponse EventType = "case_first_response"
)

// Actor encapsulates who triggered an event. AdminID is nil for
// system-initiated actions such as scheduled ingestion runs.
type Actor struct {
	AdminID *string `json:"admin_id,omitempty"`
}

// SystemActor is the actor for scheduler-driven actions.
func SystemActor() Actor {
	return Actor{}
}

// AdminActor wraps a counsellor identity.
func AdminActor(adminID string) Actor {
	return Actor{AdminID: &adminID}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	RequestID     string          `json:"request_id"`
	UserID        string          `json:"user_id"`
	InstitutionID string          `json:"institution_id"`
	RiskTier      domain.RiskTier `json:"risk_tier"`
}

// CaseClaimedPayload payload.
type CaseClaimedPayload struct {
	AdminID string `json:"admin_id"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
	Claimed   bool              `json:"claimed,omitempty"`
}

// CaseFirstResponsePayload payload. Fired once per case, on the first
// successful counsellor action, to trigger the student-facing notification.
type CaseFirstResponsePayload struct {
	UserID  string `json:"user_id"`
	AdminID string `json:"admin_id"`
}
