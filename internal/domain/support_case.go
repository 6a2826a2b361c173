package domain

import "time"

// CaseStatus enumerates lifecycle states for support cases.
type CaseStatus string

const (
	CaseStatusOpen      CaseStatus = "open"
	CaseStatusAssigned  CaseStatus = "assigned"
	CaseStatusScheduled CaseStatus = "scheduled"
	CaseStatusCompleted CaseStatus = "completed"
	CaseStatusClosed    CaseStatus = "closed"
	CaseStatusWithdrawn CaseStatus = "withdrawn"
)

// Valid reports whether the status is a member of the legal set.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusAssigned, CaseStatusScheduled,
		CaseStatusCompleted, CaseStatusClosed, CaseStatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are expected.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusClosed || s == CaseStatusWithdrawn
}

// RiskTier is the 1-3 severity classification assigned once at case creation.
type RiskTier int

const (
	RiskTierLow      RiskTier = 1
	RiskTierElevated RiskTier = 2
	RiskTierCritical RiskTier = 3
)

// RequestedChannel identifies how a case entered the system.
type RequestedChannel string

const (
	ChannelAutoFlagged RequestedChannel = "auto_flagged"
)

// SupportCase is a unit of human-handled follow-up on a flagged interaction.
// AssignedTo is nil or exactly one counsellor; the risk tier never changes
// after creation.
type SupportCase struct {
	ID               string
	UserID           string
	InstitutionID    string
	Status           CaseStatus
	RequestedChannel RequestedChannel
	RiskTier         RiskTier
	AssignedTo       *string
	ConsentRecordID  string
	ConsentVersion   string
	ConsentTimestamp time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	FirstResponseAt  *time.Time
	CompletedAt      *time.Time
	ExpiresAt        *time.Time
	ReviewNotes      *string
}
