package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConversationStore holds conversation state for the lifetime of a client
// session. Implementations only need whole-snapshot semantics; turn
// serialization is the service's job.
type ConversationStore interface {
	Save(ctx context.Context, conv Conversation) error
	Get(ctx context.Context, id uuid.UUID) (Conversation, bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QueryRecord captures one submitted query for later inspection.
type QueryRecord struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	Query          string    `json:"query"`
	Category       string    `json:"category"`
	FollowUp       bool      `json:"followUp"`
	ResultCount    int       `json:"resultCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QueryLogRepository records submitted queries. Appends are best effort and
// must never fail a turn.
type QueryLogRepository interface {
	Append(ctx context.Context, rec QueryRecord) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]QueryRecord, error)
}
