package convstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/karenlo/mapchat/internal/domain/assistant"
)

// MemoryStore keeps conversations in process memory. This is the default
// store and matches the ephemeral, per-session lifetime of a conversation.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]assistant.Conversation
}

// NewMemoryStore constructs the in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[uuid.UUID]assistant.Conversation),
	}
}

// Save stores a conversation snapshot.
func (s *MemoryStore) Save(_ context.Context, conv assistant.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.Messages = append([]assistant.ChatMessage(nil), conv.Messages...)
	s.conversations[conv.ID] = conv
	return nil
}

// Get returns the conversation snapshot for id.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (assistant.Conversation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return assistant.Conversation{}, false, nil
	}
	conv.Messages = append([]assistant.ChatMessage(nil), conv.Messages...)
	return conv, true, nil
}

// Delete drops a conversation.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
	return nil
}

var _ assistant.ConversationStore = (*MemoryStore)(nil)
