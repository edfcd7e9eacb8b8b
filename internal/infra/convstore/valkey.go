package convstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/karenlo/mapchat/internal/domain/assistant"
)

// ValkeyStore keeps conversation snapshots in a Valkey-compatible database
// with a TTL, so abandoned sessions age out on their own. Conversations stay
// ephemeral; the TTL refreshes on every save.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a conversation store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "conv"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

// Save serializes the whole conversation snapshot under its key.
func (s *ValkeyStore) Save(ctx context.Context, conv assistant.Conversation) error {
	payload, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(conv.ID)).Value(string(payload))
	var cmd valkey.Completed
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// Get loads and deserializes the conversation snapshot.
func (s *ValkeyStore) Get(ctx context.Context, id uuid.UUID) (assistant.Conversation, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.key(id)).Build())
	payload, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return assistant.Conversation{}, false, nil
		}
		return assistant.Conversation{}, false, err
	}
	var conv assistant.Conversation
	if err := json.Unmarshal([]byte(payload), &conv); err != nil {
		return assistant.Conversation{}, false, err
	}
	return conv, true, nil
}

// Delete removes the conversation key.
func (s *ValkeyStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key(id)).Build()).Error()
}

func (s *ValkeyStore) key(id uuid.UUID) string {
	return s.prefix + ":" + id.String()
}

var _ assistant.ConversationStore = (*ValkeyStore)(nil)
