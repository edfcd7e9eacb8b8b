package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/karenlo/mapchat/internal/infra/llm/chatgpt"
)

// ChatClient is the slice of the LLM client the interpreter needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Interpretation is the structured outcome of one interpretation call.
type Interpretation struct {
	Reply       string
	Params      SearchFilters
	Suggestions []string
	FollowUp    bool
}

// Radius policy for structured intent.
const (
	radiusDefault = 1000
	radiusMin     = 500
	radiusMax     = 5000
)

const fallbackReply = "I'm having trouble processing your request right now. Let me try to help you find some nearby places."

func fallbackSuggestions() []string {
	return []string{"Show me restaurants nearby", "Find coffee shops", "Where are the parks?"}
}

// FallbackInterpretation is the fixed recovery tuple returned whenever the
// backend is unavailable or its output fails to parse. The orchestrator's
// last-resort path produces the same user-visible shape.
func FallbackInterpretation() Interpretation {
	return Interpretation{
		Reply: fallbackReply,
		Params: SearchFilters{
			Category:  "general",
			Radius:    radiusDefault,
			Keywords:  []string{},
			PartySize: 1,
		},
		Suggestions: fallbackSuggestions(),
		FollowUp:    false,
	}
}

// Interpreter turns a free-text query plus conversation context into
// structured search parameters via the LLM backend.
type Interpreter struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

// NewInterpreter wires up the query interpreter.
func NewInterpreter(cfg Config, client ChatClient, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "assistant.interpreter"),
	}
}

// Interpret never fails: any transport error, timeout or malformed backend
// response degrades to the fixed fallback tuple.
func (i *Interpreter) Interpret(ctx context.Context, query string, userLocation Location, history []ChatMessage) Interpretation {
	if i.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.cfg.RequestTimeout)
		defer cancel()
	}

	messages := []chatgpt.Message{
		{Role: "system", Content: i.buildSystemPrompt()},
		{Role: "user", Content: i.buildUserPrompt(query, userLocation, history)},
	}

	completion, err := i.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       i.cfg.Model,
		Messages:    messages,
		Temperature: i.cfg.Temperature,
	})
	if err != nil {
		i.logger.Warn("interpretation backend call failed, using fallback", "error", err)
		return FallbackInterpretation()
	}
	if len(completion.Choices) == 0 {
		i.logger.Warn("interpretation backend returned no choices, using fallback")
		return FallbackInterpretation()
	}
	if usage := completion.Usage.Metrics(); !usage.IsZero() {
		i.logger.Debug("interpretation token usage",
			"promptTokens", usage.PromptTokens,
			"completionTokens", usage.CompletionTokens,
			"totalTokens", usage.TotalTokens)
	}

	parsed, err := parseInterpretation(completion.Choices[0].Message.Content)
	if err != nil {
		i.logger.Warn("interpretation response malformed, using fallback", "error", err)
		return FallbackInterpretation()
	}
	return parsed
}

func (i *Interpreter) buildSystemPrompt() string {
	base := "You are a helpful location-based assistant. Be conversational, reference prior results when the user is refining them, and infer budget, party size, time constraints and preferences from free text. Set isFollowUp to true only when the user is narrowing down the previous result set rather than starting a new search."
	enforcer := ` Respond ONLY with valid minified JSON using this shape: {"response":string,"searchParams":{"category":string,"radius":number,"keywords":string[],"filters":{"openNow":boolean|null,"priceLevel":number|null,"budget":number|null,"partySize":number|null,"specificRequirements":string[]}},"suggestions":string[],"isFollowUp":boolean}. category is a short type like restaurant, coffee, park or shopping; radius is meters between 500 and 5000; suggestions must contain exactly 3 realistic follow-up questions. Never return plain text or other fields.`
	return base + enforcer
}

func (i *Interpreter) buildUserPrompt(query string, userLocation Location, history []ChatMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user is at coordinates (%f, %f).\n", userLocation.Latitude, userLocation.Longitude)
	if contextBlock := BuildContext(history, i.cfg.ContextTurns); contextBlock != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nUser query: %q", query)
	return b.String()
}

type interpretationWire struct {
	Response     string `json:"response"`
	SearchParams struct {
		Category string   `json:"category"`
		Radius   float64  `json:"radius"`
		Keywords []string `json:"keywords"`
		Filters  struct {
			OpenNow              *bool    `json:"openNow"`
			PriceLevel           *float64 `json:"priceLevel"`
			Budget               *float64 `json:"budget"`
			PartySize            *float64 `json:"partySize"`
			SpecificRequirements []string `json:"specificRequirements"`
		} `json:"filters"`
	} `json:"searchParams"`
	Suggestions []string `json:"suggestions"`
	IsFollowUp  bool     `json:"isFollowUp"`
}

// parseInterpretation classifies the raw model output as well-formed or
// malformed before any field is trusted.
func parseInterpretation(raw string) (Interpretation, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire interpretationWire
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return Interpretation{}, err
	}
	if strings.TrimSpace(wire.Response) == "" {
		return Interpretation{}, errors.New("response missing")
	}

	params := SearchFilters{
		Category:             normalizeCategory(wire.SearchParams.Category),
		Radius:               clampRadius(int(wire.SearchParams.Radius)),
		Keywords:             normalizeList(wire.SearchParams.Keywords),
		OpenNow:              wire.SearchParams.Filters.OpenNow,
		SpecificRequirements: normalizeList(wire.SearchParams.Filters.SpecificRequirements),
		PartySize:            1,
	}
	if lvl := wire.SearchParams.Filters.PriceLevel; lvl != nil {
		if v := int(*lvl); v >= 1 && v <= 4 {
			params.PriceLevel = v
		}
	}
	if budget := wire.SearchParams.Filters.Budget; budget != nil && *budget > 0 {
		params.Budget = *budget
	}
	if party := wire.SearchParams.Filters.PartySize; party != nil && int(*party) > 1 {
		params.PartySize = int(*party)
	}

	suggestions := normalizeList(wire.Suggestions)
	if len(suggestions) == 0 {
		suggestions = fallbackSuggestions()
	}

	return Interpretation{
		Reply:       strings.TrimSpace(wire.Response),
		Params:      params,
		Suggestions: suggestions,
		FollowUp:    wire.IsFollowUp,
	}, nil
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "general"
	}
	return category
}

func clampRadius(radius int) int {
	switch {
	case radius == 0:
		return radiusDefault
	case radius < radiusMin:
		return radiusMin
	case radius > radiusMax:
		return radiusMax
	default:
		return radius
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, clean)
	}
	return out
}
