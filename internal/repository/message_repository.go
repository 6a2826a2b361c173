package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// SupportMessageRepository reads case threads. The messaging subsystem owns
// writes; this service never mutates messages.
type SupportMessageRepository interface {
	ListByCase(ctx context.Context, caseID string) ([]domain.SupportMessage, error)
}

type supportMessageRepository struct {
	pool *pgxpool.Pool
}

// NewSupportMessageRepository instantiates the repository.
func NewSupportMessageRepository(pool *pgxpool.Pool) SupportMessageRepository {
	return &supportMessageRepository{pool: pool}
}

func (r *supportMessageRepository) ListByCase(ctx context.Context, caseID string) ([]domain.SupportMessage, error) {
	const query = `
        SELECT id, case_id, sender_type, body, contains_high_risk, created_at
        FROM support_messages WHERE case_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportMessage
	for rows.Next() {
		var msg domain.SupportMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.CaseID,
			&msg.SenderType,
			&msg.Body,
			&msg.ContainsHighRisk,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
