package domain

import "time"

// AdminUser models a counsellor account able to work support cases.
type AdminUser struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	InstitutionID string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AdminIdentity is the authenticated caller's identity and institution scope,
// resolved by the auth layer.
type AdminIdentity struct {
	ID            string
	InstitutionID string
}

// Identity derives the caller identity from a stored admin record.
func (a *AdminUser) Identity() AdminIdentity {
	return AdminIdentity{ID: a.ID, InstitutionID: a.InstitutionID}
}
