package domain

import "time"

// SupportRequest is a flagged user interaction awaiting triage. Requests are
// created by the upstream risk-detection system and only ever mutated here by
// the ingestion pipeline, which sets CaseID and ReviewedAt once.
type SupportRequest struct {
	ID               string
	UserID           string
	InstitutionID    string
	ConsentRecordID  *string
	ConsentVersion   *string
	ConsentTimestamp *time.Time
	ContextExcerpt   string
	ContainsHighRisk bool
	CaseID           *string
	CreatedAt        time.Time
	ReviewedAt       *time.Time
}

// Eligible reports whether the request may be converted into a case:
// high-risk, consented, and not already converted.
func (r *SupportRequest) Eligible() bool {
	return r.ContainsHighRisk && r.CaseID == nil && r.ConsentRecordID != nil
}
