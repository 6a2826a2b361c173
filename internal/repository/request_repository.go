package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// SupportRequestRepository encapsulates flagged-request persistence. Requests
// are written by the upstream risk-detection system; this service only reads
// them and links them to cases.
type SupportRequestRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SupportRequest, error)
	ListEligible(ctx context.Context, institutionID *string) ([]domain.SupportRequest, error)
}

type supportRequestRepository struct {
	pool *pgxpool.Pool
}

// NewSupportRequestRepository instantiates the repository.
func NewSupportRequestRepository(pool *pgxpool.Pool) SupportRequestRepository {
	return &supportRequestRepository{pool: pool}
}

const requestColumns = `id, user_id, institution_id, consent_record_id, consent_version, consent_timestamp,
               context_excerpt, contains_high_risk, case_id, created_at, reviewed_at`

func (r *supportRequestRepository) GetByID(ctx context.Context, id string) (*domain.SupportRequest, error) {
	const query = `
        SELECT ` + requestColumns + `
        FROM support_requests WHERE id=$1`
	var req domain.SupportRequest
	if err := scanRequest(r.pool.QueryRow(ctx, query, id), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListEligible returns requests matching the conversion predicate, oldest
// first so the earliest-flagged requests are triaged first.
func (r *supportRequestRepository) ListEligible(ctx context.Context, institutionID *string) ([]domain.SupportRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM support_requests
        WHERE contains_high_risk = TRUE AND case_id IS NULL AND consent_record_id IS NOT NULL`
	args := []any{}
	if institutionID != nil {
		args = append(args, *institutionID)
		query += " AND institution_id=$1"
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportRequest
	for rows.Next() {
		var req domain.SupportRequest
		if err := scanRequest(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func scanRequest(row pgx.Row, req *domain.SupportRequest) error {
	return row.Scan(
		&req.ID,
		&req.UserID,
		&req.InstitutionID,
		&req.ConsentRecordID,
		&req.ConsentVersion,
		&req.ConsentTimestamp,
		&req.ContextExcerpt,
		&req.ContainsHighRisk,
		&req.CaseID,
		&req.CreatedAt,
		&req.ReviewedAt,
	)
}
