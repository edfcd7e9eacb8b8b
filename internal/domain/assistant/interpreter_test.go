package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/karenlo/mapchat/internal/infra/llm/chatgpt"
)

type stubChatClient struct {
	response    string
	err         error
	lastRequest chatgpt.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	var resp chatgpt.ChatCompletionResponse
	resp.Choices = []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: s.response}}}
	return resp, nil
}

func testInterpreterConfig() Config {
	return Config{
		Model:          "gpt-4o-mini",
		Temperature:    0.3,
		RequestTimeout: time.Second,
		MaxResults:     6,
		ContextTurns:   4,
		City:           "New York, NY",
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const wellFormedResponse = `{
	"response": "Here are some coffee shops near you!",
	"searchParams": {
		"category": "Coffee",
		"radius": 1500,
		"keywords": ["espresso", "latte", "espresso"],
		"filters": {
			"openNow": true,
			"priceLevel": 2,
			"budget": 40,
			"partySize": 2,
			"specificRequirements": ["bubble tea"]
		}
	},
	"suggestions": ["Which ones have wifi?", "Any open late?", "Show me bakeries instead"],
	"isFollowUp": false
}`

func TestInterpretWellFormedResponse(t *testing.T) {
	client := &stubChatClient{response: wellFormedResponse}
	interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

	got := interpreter.Interpret(context.Background(), "coffee near me", Location{Latitude: 40.7589, Longitude: -73.9851}, nil)

	require.Equal(t, "Here are some coffee shops near you!", got.Reply)
	require.Equal(t, "coffee", got.Params.Category)
	require.Equal(t, 1500, got.Params.Radius)
	require.Equal(t, []string{"espresso", "latte"}, got.Params.Keywords)
	require.Equal(t, 2, got.Params.PriceLevel)
	require.Equal(t, 40.0, got.Params.Budget)
	require.Equal(t, 2, got.Params.PartySize)
	require.Equal(t, []string{"bubble tea"}, got.Params.SpecificRequirements)
	require.Len(t, got.Suggestions, 3)
	require.False(t, got.FollowUp)
}

func TestInterpretStripsCodeFences(t *testing.T) {
	client := &stubChatClient{response: "```json\n" + wellFormedResponse + "\n```"}
	interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

	got := interpreter.Interpret(context.Background(), "coffee near me", Location{}, nil)
	require.Equal(t, "Here are some coffee shops near you!", got.Reply)
	require.Equal(t, "coffee", got.Params.Category)
}

func TestInterpretTransportErrorFallsBack(t *testing.T) {
	client := &stubChatClient{err: errors.New("connection refused")}
	interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

	got := interpreter.Interpret(context.Background(), "coffee near me", Location{}, nil)
	require.Equal(t, FallbackInterpretation(), got)
}

func TestInterpretMalformedResponseFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "plain text", response: "Sure, here are some coffee shops!"},
		{name: "empty response field", response: `{"response":"  ","searchParams":{}}`},
		{name: "truncated json", response: `{"response":"hi","searchParams":{`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := &stubChatClient{response: tt.response}
			interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

			got := interpreter.Interpret(context.Background(), "coffee near me", Location{}, nil)
			require.Equal(t, FallbackInterpretation(), got)
		})
	}
}

func TestInterpretNoChoicesFallsBack(t *testing.T) {
	interpreter := NewInterpreter(testInterpreterConfig(), emptyChatClient{}, newTestLogger())

	got := interpreter.Interpret(context.Background(), "coffee near me", Location{}, nil)
	require.Equal(t, FallbackInterpretation(), got)
}

type emptyChatClient struct{}

func (emptyChatClient) CreateChatCompletion(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	return chatgpt.ChatCompletionResponse{}, nil
}

func TestInterpretClampsRadius(t *testing.T) {
	tests := []struct {
		name   string
		radius string
		want   int
	}{
		{name: "zero defaults", radius: "0", want: radiusDefault},
		{name: "below min", radius: "100", want: radiusMin},
		{name: "above max", radius: "20000", want: radiusMax},
		{name: "in range", radius: "2500", want: 2500},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			response := `{"response":"ok","searchParams":{"category":"park","radius":` + tt.radius + `,"keywords":[],"filters":{"specificRequirements":[]}},"suggestions":["a","b","c"],"isFollowUp":false}`
			client := &stubChatClient{response: response}
			interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

			got := interpreter.Interpret(context.Background(), "parks", Location{}, nil)
			require.Equal(t, tt.want, got.Params.Radius)
		})
	}
}

func TestInterpretOmitsContextForFreshConversation(t *testing.T) {
	client := &stubChatClient{response: wellFormedResponse}
	interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

	interpreter.Interpret(context.Background(), "coffee near me", Location{Latitude: 40.7589, Longitude: -73.9851}, nil)

	require.Len(t, client.lastRequest.Messages, 2)
	userPrompt := client.lastRequest.Messages[1].Content
	require.NotContains(t, userPrompt, "Conversation so far:")
	require.Contains(t, userPrompt, `User query: "coffee near me"`)
}

func TestInterpretIncludesContextForOngoingConversation(t *testing.T) {
	client := &stubChatClient{response: wellFormedResponse}
	interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

	history := []ChatMessage{
		{ID: "user_1", Type: MessageTypeUser, Content: "restaurants near me"},
		{ID: "ai_2", Type: MessageTypeAI, Content: "Here you go", Results: []PlaceResult{{Name: "The Local Spot"}}},
	}
	interpreter.Interpret(context.Background(), "cheaper options", Location{}, history)

	userPrompt := client.lastRequest.Messages[1].Content
	require.Contains(t, userPrompt, "Conversation so far:")
	require.Contains(t, userPrompt, `User asked: "restaurants near me"`)
	require.Contains(t, userPrompt, "The Local Spot")
}

func TestInterpretSuppliesDefaultSuggestions(t *testing.T) {
	response := `{"response":"ok","searchParams":{"category":"","radius":0,"keywords":[],"filters":{"specificRequirements":[]}},"suggestions":[],"isFollowUp":false}`
	client := &stubChatClient{response: response}
	interpreter := NewInterpreter(testInterpreterConfig(), client, newTestLogger())

	got := interpreter.Interpret(context.Background(), "anything nearby", Location{}, nil)
	require.Equal(t, fallbackSuggestions(), got.Suggestions)
	require.Equal(t, "general", got.Params.Category)
}

func TestParseInterpretationRejectsPriceLevelOutOfRange(t *testing.T) {
	response := `{"response":"ok","searchParams":{"category":"restaurant","radius":1000,"keywords":[],"filters":{"priceLevel":9,"specificRequirements":[]}},"suggestions":["a","b","c"],"isFollowUp":false}`
	got, err := parseInterpretation(response)
	require.NoError(t, err)
	require.Zero(t, got.Params.PriceLevel)
}

func TestParseInterpretationTrimsWhitespaceReply(t *testing.T) {
	response := "\n  " + strings.TrimSpace(wellFormedResponse) + "  \n"
	got, err := parseInterpretation(response)
	require.NoError(t, err)
	require.Equal(t, "Here are some coffee shops near you!", got.Reply)
}
