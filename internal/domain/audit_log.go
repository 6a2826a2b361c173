package domain

import "time"

// Audit action tags. Status transitions use "case_" + the new status value.
const (
	AuditActionCaseClaimed     = "case_claimed"
	AuditActionAutoCreateCases = "auto_create_cases_from_requests"
)

// CaseAuditAction returns the audit tag for a status transition.
func CaseAuditAction(status CaseStatus) string {
	return "case_" + string(status)
}

// AuditLogEntry is an append-only record of an administrative action.
// AdminUserID is nil for system-initiated actions (scheduled ingestion runs);
// CaseID is nil for batch-level entries. Entries are never updated or deleted.
type AuditLogEntry struct {
	ID            string
	CaseID        *string
	AdminUserID   *string
	ActionType    string
	ActionDetails map[string]any
	CreatedAt     time.Time
}
