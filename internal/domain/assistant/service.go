package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/karenlo/mapchat/pkg/errors"
)

// Service orchestrates conversation turns: it owns the append-only turn log
// and dispatches each submission through the interpreter, synthesizer and
// filter chain.
type Service interface {
	StartConversation(ctx context.Context, loc Location) (Conversation, error)
	Conversation(ctx context.Context, id uuid.UUID) (Conversation, error)
	SubmitQuery(ctx context.Context, id uuid.UUID, text string) (ChatMessage, error)
	History(ctx context.Context, id uuid.UUID) ([]ChatMessage, error)
	Latest(ctx context.Context, id uuid.UUID) (LatestSnapshot, error)
	QueryHistory(ctx context.Context, id uuid.UUID) ([]QueryRecord, error)
}

type service struct {
	cfg         Config
	interpreter *Interpreter
	synthesizer *Synthesizer
	store       ConversationStore
	queryLog    QueryLogRepository
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.Mutex
	inTurn map[uuid.UUID]struct{}
}

// NewService wires up the turn orchestrator.
func NewService(cfg Config, interpreter *Interpreter, synthesizer *Synthesizer, store ConversationStore, queryLog QueryLogRepository, logger *slog.Logger) Service {
	return &service{
		cfg:         cfg,
		interpreter: interpreter,
		synthesizer: synthesizer,
		store:       store,
		queryLog:    queryLog,
		logger:      logger.With("component", "assistant.service"),
		now:         time.Now,
		inTurn:      make(map[uuid.UUID]struct{}),
	}
}

func (s *service) StartConversation(ctx context.Context, loc Location) (Conversation, error) {
	now := s.now()
	conv := Conversation{
		ID:        uuid.New(),
		Location:  loc,
		Messages:  []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, conv); err != nil {
		return Conversation{}, apperrors.Wrap("storage_error", "failed to persist conversation", err)
	}
	s.logger.Info("conversation started", "conversationId", conv.ID, "latitude", loc.Latitude, "longitude", loc.Longitude)
	return conv, nil
}

func (s *service) Conversation(ctx context.Context, id uuid.UUID) (Conversation, error) {
	conv, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Conversation{}, apperrors.Wrap("storage_error", "failed to load conversation", err)
	}
	if !ok {
		return Conversation{}, apperrors.Wrap("not_found", "conversation not found", nil)
	}
	return conv, nil
}

// SubmitQuery runs one full turn. The turn always yields exactly one ai
// message: interpreter failures degrade inside Interpret, and anything that
// still escapes is absorbed by the last-resort fallback so both paths are
// indistinguishable to the caller.
func (s *service) SubmitQuery(ctx context.Context, id uuid.UUID, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, apperrors.Wrap("invalid_input", "query text cannot be empty", nil)
	}

	if !s.beginTurn(id) {
		return ChatMessage{}, apperrors.Wrap("turn_in_progress", "a turn is already being processed for this conversation", nil)
	}
	defer s.endTurn(id)

	conv, err := s.Conversation(ctx, id)
	if err != nil {
		return ChatMessage{}, err
	}

	// Snapshot taken before any turn is appended: the previous turn's
	// results stay the most recent ai entry for this interpretation.
	snapshot := append([]ChatMessage(nil), conv.Messages...)

	userMsg := s.newMessage(&conv, MessageTypeUser, text)
	conv.Messages = append(conv.Messages, userMsg)

	reply, results, suggestions, followUp, category := s.runTurn(ctx, text, conv.Location, snapshot)

	aiMsg := s.newMessage(&conv, MessageTypeAI, reply)
	aiMsg.Results = results
	aiMsg.Suggestions = suggestions
	aiMsg.Context = &MessageContext{SearchQuery: text, ResultCount: len(results)}
	conv.Messages = append(conv.Messages, aiMsg)
	conv.UpdatedAt = s.now()

	if err := s.store.Save(ctx, conv); err != nil {
		return ChatMessage{}, apperrors.Wrap("storage_error", "failed to persist conversation turn", err)
	}

	s.recordQuery(ctx, conv.ID, text, category, followUp, len(results))
	s.logger.Info("turn completed", "conversationId", conv.ID, "followUp", followUp, "category", category, "results", len(results))
	return aiMsg, nil
}

// runTurn executes interpret + synthesize with a last-resort recovery: a
// panic anywhere in the chain degrades to the fixed fallback shape instead
// of failing the turn.
func (s *service) runTurn(ctx context.Context, text string, loc Location, snapshot []ChatMessage) (reply string, results []PlaceResult, suggestions []string, followUp bool, category string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("turn processing panicked, using last-resort fallback", "panic", fmt.Sprint(r))
			fb := FallbackInterpretation()
			reply = fb.Reply
			results = nil
			suggestions = fb.Suggestions
			followUp = false
			category = fb.Params.Category
		}
	}()

	interp := s.interpreter.Interpret(ctx, text, loc, snapshot)
	results = s.synthesizer.Synthesize(interp.Params, loc, snapshot, interp.FollowUp)
	return interp.Reply, results, interp.Suggestions, interp.FollowUp, interp.Params.Category
}

func (s *service) History(ctx context.Context, id uuid.UUID) ([]ChatMessage, error) {
	conv, err := s.Conversation(ctx, id)
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// Latest exposes the results and suggestions of the most recent ai turn;
// both are empty when no ai turn exists yet.
func (s *service) Latest(ctx context.Context, id uuid.UUID) (LatestSnapshot, error) {
	conv, err := s.Conversation(ctx, id)
	if err != nil {
		return LatestSnapshot{}, err
	}
	snapshot := LatestSnapshot{Results: []PlaceResult{}, Suggestions: []string{}}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Type != MessageTypeAI {
			continue
		}
		if conv.Messages[i].Results != nil {
			snapshot.Results = conv.Messages[i].Results
		}
		if conv.Messages[i].Suggestions != nil {
			snapshot.Suggestions = conv.Messages[i].Suggestions
		}
		break
	}
	return snapshot, nil
}

func (s *service) QueryHistory(ctx context.Context, id uuid.UUID) ([]QueryRecord, error) {
	if _, err := s.Conversation(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.queryLog.ListByConversation(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load query history", err)
	}
	return records, nil
}

func (s *service) beginTurn(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inTurn[id]; busy {
		return false
	}
	s.inTurn[id] = struct{}{}
	return true
}

func (s *service) endTurn(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inTurn, id)
}

func (s *service) newMessage(conv *Conversation, msgType, content string) ChatMessage {
	conv.NextSeq++
	return ChatMessage{
		ID:        fmt.Sprintf("%s_%d", msgType, conv.NextSeq),
		Type:      msgType,
		Content:   content,
		Timestamp: s.now(),
	}
}

func (s *service) recordQuery(ctx context.Context, convID uuid.UUID, text, category string, followUp bool, resultCount int) {
	rec := QueryRecord{
		ID:             uuid.New(),
		ConversationID: convID,
		Query:          text,
		Category:       category,
		FollowUp:       followUp,
		ResultCount:    resultCount,
		CreatedAt:      s.now(),
	}
	if err := s.queryLog.Append(ctx, rec); err != nil {
		s.logger.Warn("query log append failed", "conversationId", convID, "error", err)
	}
}
