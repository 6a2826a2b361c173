package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/events"
	"github.com/spec-kit/support-case-service/internal/triage"
)

func newIngestionFixture(store *fakeStore) *IngestionService {
	logger := zap.NewNop()
	return NewIngestionService(IngestionDependencies{
		RequestRepo: &fakeRequestRepo{store: store},
		CaseRepo:    &fakeCaseRepo{store: store},
		Classifier:  triage.NewKeywordClassifier(),
		Audit:       NewAuditRecorder(&fakeAuditRepo{store: store}, logger),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      logger,
	})
}

func eligibleRequest(institutionID, excerpt string) domain.SupportRequest {
	consent := "consent-1"
	version := "v2"
	ts := time.Now().Add(-time.Hour)
	return domain.SupportRequest{
		UserID:           "user-1",
		InstitutionID:    institutionID,
		ConsentRecordID:  &consent,
		ConsentVersion:   &version,
		ConsentTimestamp: &ts,
		ContextExcerpt:   excerpt,
		ContainsHighRisk: true,
	}
}

func TestIngestPendingConvertsEligibleRequests(t *testing.T) {
	store := newFakeStore()
	svc := newIngestionFixture(store)

	r1 := store.addRequest(eligibleRequest("inst-1", "I want to kill myself"))
	r2 := store.addRequest(eligibleRequest("inst-1", "thinking about self-harm lately"))
	r3 := store.addRequest(eligibleRequest("inst-1", "feeling a bit low"))

	actor := "admin-1"
	report, err := svc.IngestPending(context.Background(), &actor, nil)
	require.NoError(t, err)
	require.Equal(t, 3, report.CasesCreated)
	require.Len(t, report.Created, 3)

	// oldest-first processing order
	require.Equal(t, r1.ID, report.Created[0].RequestID)
	require.Equal(t, r2.ID, report.Created[1].RequestID)
	require.Equal(t, r3.ID, report.Created[2].RequestID)

	tiersByRequest := map[string]domain.RiskTier{}
	for _, created := range report.Created {
		tiersByRequest[created.RequestID] = created.RiskTier
		supportCase := store.cases[created.CaseID]
		require.NotNil(t, supportCase)
		require.Equal(t, domain.CaseStatusOpen, supportCase.Status)
		require.Equal(t, domain.ChannelAutoFlagged, supportCase.RequestedChannel)
		require.Nil(t, supportCase.AssignedTo)
		require.Equal(t, "consent-1", supportCase.ConsentRecordID)
	}
	require.Equal(t, domain.RiskTierCritical, tiersByRequest[r1.ID])
	require.Equal(t, domain.RiskTierElevated, tiersByRequest[r2.ID])
	require.Equal(t, domain.RiskTierLow, tiersByRequest[r3.ID])

	// source requests are linked back
	require.NotNil(t, store.requests[r1.ID].CaseID)
	require.NotNil(t, store.requests[r1.ID].ReviewedAt)

	entries := store.auditEntries(domain.AuditActionAutoCreateCases)
	require.Len(t, entries, 1)
	require.Equal(t, &actor, entries[0].AdminUserID)
	require.Equal(t, 3, entries[0].ActionDetails["cases_created"])
}

func TestIngestPendingIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newIngestionFixture(store)
	store.addRequest(eligibleRequest("inst-1", "suicide"))

	first, err := svc.IngestPending(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, first.CasesCreated)

	second, err := svc.IngestPending(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, second.CasesCreated)
	require.Empty(t, second.Created)
	require.Len(t, store.cases, 1)
}

func TestIngestPendingSkipsIneligibleRequests(t *testing.T) {
	store := newFakeStore()
	svc := newIngestionFixture(store)

	noConsent := eligibleRequest("inst-1", "suicide")
	noConsent.ConsentRecordID = nil
	store.addRequest(noConsent)

	notRisky := eligibleRequest("inst-1", "hello")
	notRisky.ContainsHighRisk = false
	store.addRequest(notRisky)

	report, err := svc.IngestPending(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, report.CasesCreated)
	require.Empty(t, store.cases)

	// a zero-conversion run still writes the batch audit entry
	require.Len(t, store.auditEntries(domain.AuditActionAutoCreateCases), 1)
}

func TestIngestPendingIsolatesPerRequestFailures(t *testing.T) {
	store := newFakeStore()
	svc := newIngestionFixture(store)

	bad := store.addRequest(eligibleRequest("inst-1", "suicide"))
	good := store.addRequest(eligibleRequest("inst-1", "self-harm"))
	store.failConversions[bad.ID] = true

	report, err := svc.IngestPending(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.CasesCreated)
	require.Equal(t, good.ID, report.Created[0].RequestID)

	// the failed request stays eligible for the next run
	require.Nil(t, store.requests[bad.ID].CaseID)
	delete(store.failConversions, bad.ID)

	retry, err := svc.IngestPending(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, retry.CasesCreated)
	require.Equal(t, bad.ID, retry.Created[0].RequestID)
}

func TestIngestPendingScopesByInstitution(t *testing.T) {
	store := newFakeStore()
	svc := newIngestionFixture(store)

	store.addRequest(eligibleRequest("inst-1", "suicide"))
	store.addRequest(eligibleRequest("inst-2", "suicide"))

	scope := "inst-1"
	report, err := svc.IngestPending(context.Background(), nil, &scope)
	require.NoError(t, err)
	require.Equal(t, 1, report.CasesCreated)
	for _, supportCase := range store.cases {
		require.Equal(t, "inst-1", supportCase.InstitutionID)
	}
}

func TestIngestPendingSurvivesAuditFailure(t *testing.T) {
	store := newFakeStore()
	svc := newIngestionFixture(store)
	store.addRequest(eligibleRequest("inst-1", "suicide"))
	store.failAudit = true

	report, err := svc.IngestPending(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.CasesCreated)
	require.Len(t, store.cases, 1)
}
