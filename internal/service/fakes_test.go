package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/repository"
)

// fakeStore backs the in-memory repositories used by service tests. Claim and
// UpdateOwned hold the mutex across their check-and-set so they behave like
// the single-statement conditional updates of the real repositories.
type fakeStore struct {
	mu       sync.Mutex
	requests map[string]*domain.SupportRequest
	cases    map[string]*domain.SupportCase
	messages map[string][]domain.SupportMessage
	audit    []domain.AuditLogEntry
	nextID   int

	failConversions map[string]bool
	failAudit       bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:        make(map[string]*domain.SupportRequest),
		cases:           make(map[string]*domain.SupportCase),
		messages:        make(map[string][]domain.SupportMessage),
		failConversions: make(map[string]bool),
	}
}

func (s *fakeStore) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) addRequest(req domain.SupportRequest) *domain.SupportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		req.ID = s.genID("req")
	}
	if req.CreatedAt.IsZero() {
		// sequential adds get strictly increasing creation times
		req.CreatedAt = time.Unix(1700000000, 0).Add(time.Duration(len(s.requests)) * time.Minute)
	}
	copied := req
	s.requests[req.ID] = &copied
	return &copied
}

func (s *fakeStore) addCase(supportCase domain.SupportCase) *domain.SupportCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if supportCase.ID == "" {
		supportCase.ID = s.genID("case")
	}
	now := time.Now()
	if supportCase.CreatedAt.IsZero() {
		supportCase.CreatedAt = now
	}
	supportCase.UpdatedAt = now
	copied := supportCase
	s.cases[supportCase.ID] = &copied
	return &copied
}

func (s *fakeStore) auditEntries(actionType string) []domain.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.AuditLogEntry
	for _, entry := range s.audit {
		if entry.ActionType == actionType {
			result = append(result, entry)
		}
	}
	return result
}

type fakeRequestRepo struct{ store *fakeStore }

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.SupportRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) ListEligible(_ context.Context, institutionID *string) ([]domain.SupportRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.SupportRequest
	for _, req := range r.store.requests {
		if !req.Eligible() {
			continue
		}
		if institutionID != nil && req.InstitutionID != *institutionID {
			continue
		}
		result = append(result, *req)
	}
	// oldest first
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt.Before(result[i].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

type fakeCaseRepo struct{ store *fakeStore }

func (r *fakeCaseRepo) CreateFromRequest(_ context.Context, supportCase *domain.SupportCase, requestID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failConversions[requestID] {
		return fmt.Errorf("write failed for %s", requestID)
	}
	req, ok := r.store.requests[requestID]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.CaseID != nil {
		return fmt.Errorf("request %s already converted", requestID)
	}
	supportCase.ID = r.store.genID("case")
	now := time.Now()
	supportCase.CreatedAt = now
	supportCase.UpdatedAt = now
	copied := *supportCase
	r.store.cases[supportCase.ID] = &copied
	req.CaseID = &copied.ID
	reviewed := now
	req.ReviewedAt = &reviewed
	return nil
}

func (r *fakeCaseRepo) GetByID(_ context.Context, id string) (*domain.SupportCase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	supportCase, ok := r.store.cases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *supportCase
	return &copied, nil
}

func (r *fakeCaseRepo) ListWithFilter(_ context.Context, filter repository.CaseFilter) ([]domain.SupportCase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.SupportCase
	for _, supportCase := range r.store.cases {
		if filter.InstitutionID != nil && supportCase.InstitutionID != *filter.InstitutionID {
			continue
		}
		if filter.Unassigned && supportCase.AssignedTo != nil {
			continue
		}
		if filter.AssignedTo != nil && (supportCase.AssignedTo == nil || *supportCase.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, supportCase.Status) {
			continue
		}
		if len(filter.RiskTiers) > 0 && !containsTier(filter.RiskTiers, supportCase.RiskTier) {
			continue
		}
		result = append(result, *supportCase)
	}
	return result, nil
}

func (r *fakeCaseRepo) Claim(_ context.Context, caseID, adminID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	supportCase, ok := r.store.cases[caseID]
	if !ok || supportCase.AssignedTo != nil {
		return false, nil
	}
	owner := adminID
	supportCase.AssignedTo = &owner
	supportCase.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeCaseRepo) UpdateOwned(_ context.Context, supportCase *domain.SupportCase, adminID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.cases[supportCase.ID]
	if !ok {
		return false, nil
	}
	if stored.AssignedTo != nil && *stored.AssignedTo != adminID {
		return false, nil
	}
	owner := adminID
	stored.AssignedTo = &owner
	stored.Status = supportCase.Status
	stored.FirstResponseAt = supportCase.FirstResponseAt
	stored.CompletedAt = supportCase.CompletedAt
	stored.ExpiresAt = supportCase.ExpiresAt
	stored.ReviewNotes = supportCase.ReviewNotes
	stored.UpdatedAt = time.Now()
	return true, nil
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) ListByCase(_ context.Context, caseID string) ([]domain.SupportMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]domain.SupportMessage{}, r.store.messages[caseID]...), nil
}

type fakeAuditRepo struct{ store *fakeStore }

func (r *fakeAuditRepo) Append(_ context.Context, entry *domain.AuditLogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failAudit {
		return fmt.Errorf("audit store down")
	}
	entry.ID = r.store.genID("audit")
	entry.CreatedAt = time.Now()
	r.store.audit = append(r.store.audit, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByCase(_ context.Context, caseID string) ([]domain.AuditLogEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.AuditLogEntry
	for _, entry := range r.store.audit {
		if entry.CaseID != nil && *entry.CaseID == caseID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func containsStatus(statuses []domain.CaseStatus, status domain.CaseStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsTier(tiers []domain.RiskTier, tier domain.RiskTier) bool {
	for _, candidate := range tiers {
		if candidate == tier {
			return true
		}
	}
	return false
}
