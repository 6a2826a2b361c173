package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// AuditLogRepository stores administrative action records. The table is
// append-only: no update or delete surface exists.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByCase(ctx context.Context, caseID string) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds the repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_log (case_id, admin_user_id, action_type, action_details)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.CaseID,
		entry.AdminUserID,
		entry.ActionType,
		entry.ActionDetails,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByCase(ctx context.Context, caseID string) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, case_id, admin_user_id, action_type, action_details, created_at
        FROM audit_log WHERE case_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.CaseID,
			&entry.AdminUserID,
			&entry.ActionType,
			&entry.ActionDetails,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
