package querylog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/karenlo/mapchat/internal/domain/assistant"
)

// MemoryRepository stores query records in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]assistant.QueryRecord
}

// NewMemoryRepository constructs the in-memory query log.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[uuid.UUID][]assistant.QueryRecord),
	}
}

// Append stores one query record.
func (r *MemoryRepository) Append(_ context.Context, rec assistant.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ConversationID] = append(r.records[rec.ConversationID], rec)
	return nil
}

// ListByConversation returns records in append order.
func (r *MemoryRepository) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]assistant.QueryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]assistant.QueryRecord(nil), r.records[conversationID]...), nil
}

var _ assistant.QueryLogRepository = (*MemoryRepository)(nil)
