package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// CaseFilter captures counsellor queue search parameters.
type CaseFilter struct {
	InstitutionID *string
	UserID        *string
	Statuses      []domain.CaseStatus
	RiskTiers     []domain.RiskTier
	AssignedTo    *string
	Unassigned    bool
	Limit         int
	Offset        int
}

// SupportCaseRepository encapsulates case persistence. Claim and UpdateOwned
// are conditional single-statement updates so concurrent counsellors can
// never silently overwrite each other's ownership.
type SupportCaseRepository interface {
	CreateFromRequest(ctx context.Context, supportCase *domain.SupportCase, requestID string) error
	GetByID(ctx context.Context, id string) (*domain.SupportCase, error)
	ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.SupportCase, error)
	Claim(ctx context.Context, caseID, adminID string) (bool, error)
	UpdateOwned(ctx context.Context, supportCase *domain.SupportCase, adminID string) (bool, error)
}

type supportCaseRepository struct {
	pool *pgxpool.Pool
}

// NewSupportCaseRepository instantiates the repository.
func NewSupportCaseRepository(pool *pgxpool.Pool) SupportCaseRepository {
	return &supportCaseRepository{pool: pool}
}

const caseColumns = `id, user_id, institution_id, status, requested_channel, risk_tier, assigned_to,
               consent_record_id, consent_version, consent_timestamp, created_at, updated_at,
               first_response_at, completed_at, expires_at, review_notes`

// CreateFromRequest inserts the case and links the source request back to it
// in one transaction. The request link is guarded by case_id IS NULL, so a
// request converted concurrently by another run aborts this conversion
// instead of producing a duplicate case.
func (r *supportCaseRepository) CreateFromRequest(ctx context.Context, supportCase *domain.SupportCase, requestID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertCase = `
        INSERT INTO support_cases (user_id, institution_id, status, requested_channel, risk_tier,
            assigned_to, consent_record_id, consent_version, consent_timestamp)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertCase,
		supportCase.UserID,
		supportCase.InstitutionID,
		supportCase.Status,
		supportCase.RequestedChannel,
		supportCase.RiskTier,
		supportCase.AssignedTo,
		supportCase.ConsentRecordID,
		supportCase.ConsentVersion,
		supportCase.ConsentTimestamp,
	).Scan(&supportCase.ID, &supportCase.CreatedAt, &supportCase.UpdatedAt); err != nil {
		return err
	}

	const linkRequest = `
        UPDATE support_requests SET case_id=$1, reviewed_at=NOW()
        WHERE id=$2 AND case_id IS NULL`
	cmd, err := tx.Exec(ctx, linkRequest, supportCase.ID, requestID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("request %s already converted", requestID)
	}

	return tx.Commit(ctx)
}

func (r *supportCaseRepository) GetByID(ctx context.Context, id string) (*domain.SupportCase, error) {
	const query = `
        SELECT ` + caseColumns + `
        FROM support_cases WHERE id=$1`
	var supportCase domain.SupportCase
	if err := scanCase(r.pool.QueryRow(ctx, query, id), &supportCase); err != nil {
		return nil, err
	}
	return &supportCase, nil
}

func (r *supportCaseRepository) ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.SupportCase, error) {
	base := `SELECT ` + caseColumns + ` FROM support_cases`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InstitutionID != nil {
		args = append(args, *filter.InstitutionID)
		clauses = append(clauses, fmt.Sprintf("institution_id=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.RiskTiers) > 0 {
		placeholders := make([]string, len(filter.RiskTiers))
		for i, tier := range filter.RiskTiers {
			args = append(args, tier)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("risk_tier IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY risk_tier DESC, created_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportCase
	for rows.Next() {
		var supportCase domain.SupportCase
		if err := scanCase(rows, &supportCase); err != nil {
			return nil, err
		}
		result = append(result, supportCase)
	}
	return result, rows.Err()
}

// Claim performs the atomic conditional ownership update. It succeeds for at
// most one caller per case; a concurrent loser sees false.
func (r *supportCaseRepository) Claim(ctx context.Context, caseID, adminID string) (bool, error) {
	const query = `
        UPDATE support_cases SET assigned_to=$1, updated_at=NOW()
        WHERE id=$2 AND assigned_to IS NULL`
	cmd, err := r.pool.Exec(ctx, query, adminID, caseID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// UpdateOwned persists status and derived fields, claiming the case for
// adminID in the same statement when it is still unassigned. Zero rows means
// the case vanished or another counsellor owns it.
func (r *supportCaseRepository) UpdateOwned(ctx context.Context, supportCase *domain.SupportCase, adminID string) (bool, error) {
	const query = `
        UPDATE support_cases
        SET assigned_to=$1, status=$2, first_response_at=$3, completed_at=$4, expires_at=$5,
            review_notes=$6, updated_at=NOW()
        WHERE id=$7 AND (assigned_to IS NULL OR assigned_to=$1)`
	cmd, err := r.pool.Exec(ctx, query,
		adminID,
		supportCase.Status,
		supportCase.FirstResponseAt,
		supportCase.CompletedAt,
		supportCase.ExpiresAt,
		supportCase.ReviewNotes,
		supportCase.ID,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanCase(row pgx.Row, supportCase *domain.SupportCase) error {
	return row.Scan(
		&supportCase.ID,
		&supportCase.UserID,
		&supportCase.InstitutionID,
		&supportCase.Status,
		&supportCase.RequestedChannel,
		&supportCase.RiskTier,
		&supportCase.AssignedTo,
		&supportCase.ConsentRecordID,
		&supportCase.ConsentVersion,
		&supportCase.ConsentTimestamp,
		&supportCase.CreatedAt,
		&supportCase.UpdatedAt,
		&supportCase.FirstResponseAt,
		&supportCase.CompletedAt,
		&supportCase.ExpiresAt,
		&supportCase.ReviewNotes,
	)
}
