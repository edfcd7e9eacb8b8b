package querylog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karenlo/mapchat/internal/domain/assistant"
)

// PostgresRepository persists query records in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append inserts one query record.
func (r *PostgresRepository) Append(ctx context.Context, rec assistant.QueryRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_query_logs (id, conversation_id, query, category, follow_up, result_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.ConversationID, rec.Query, rec.Category, rec.FollowUp, rec.ResultCount, rec.CreatedAt)
	return err
}

// ListByConversation returns records ordered by creation time.
func (r *PostgresRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]assistant.QueryRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, query, category, follow_up, result_count, created_at
		FROM chat_query_logs
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]assistant.QueryRecord, 0)
	for rows.Next() {
		var rec assistant.QueryRecord
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &rec.Query, &rec.Category, &rec.FollowUp, &rec.ResultCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ assistant.QueryLogRepository = (*PostgresRepository)(nil)
