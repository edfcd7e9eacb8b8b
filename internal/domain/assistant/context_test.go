package assistant

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildContextEmptyHistory(t *testing.T) {
	require.Equal(t, "", BuildContext(nil, 4))
	require.Equal(t, "", BuildContext([]ChatMessage{}, 4))
}

func TestBuildContextQuotesUserTurns(t *testing.T) {
	history := []ChatMessage{
		{ID: "user_1", Type: MessageTypeUser, Content: "find sushi near me"},
	}
	got := BuildContext(history, 4)
	require.Equal(t, `User asked: "find sushi near me"`, got)
}

func TestBuildContextWindowsLastFourTurns(t *testing.T) {
	history := make([]ChatMessage, 0, 6)
	for i := 1; i <= 6; i++ {
		history = append(history, ChatMessage{
			ID:      fmt.Sprintf("user_%d", i),
			Type:    MessageTypeUser,
			Content: fmt.Sprintf("query %d", i),
		})
	}

	got := BuildContext(history, 4)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	// Oldest-first within the window.
	require.Equal(t, `User asked: "query 3"`, lines[0])
	require.Equal(t, `User asked: "query 6"`, lines[3])
	require.NotContains(t, got, "query 1")
	require.NotContains(t, got, "query 2")
}

func TestBuildContextSummarizesAITurns(t *testing.T) {
	results := []PlaceResult{
		{Name: "Italian Bistro", Category: "restaurant"},
		{Name: "Sushi House", Category: "restaurant"},
		{Name: "Local Diner", Category: "restaurant"},
		{Name: "Mediterranean Grill", Category: "restaurant"},
	}
	history := []ChatMessage{
		{ID: "ai_1", Type: MessageTypeAI, Content: "Here you go", Results: results},
	}

	got := BuildContext(history, 4)
	require.Equal(t, "Assistant showed 4 restaurant results: Italian Bistro, Sushi House, Local Diner...", got)
}

func TestBuildContextSkipsAITurnsWithoutResults(t *testing.T) {
	history := []ChatMessage{
		{ID: "user_1", Type: MessageTypeUser, Content: "anything open?"},
		{ID: "ai_2", Type: MessageTypeAI, Content: "Sorry, nothing found"},
	}
	got := BuildContext(history, 4)
	require.Equal(t, `User asked: "anything open?"`, got)
}

func TestBuildContextNoEllipsisForThreeOrFewer(t *testing.T) {
	results := []PlaceResult{
		{Name: "Central Park", Category: "park"},
		{Name: "Riverside Gardens", Category: "park"},
	}
	history := []ChatMessage{
		{ID: "ai_1", Type: MessageTypeAI, Results: results},
	}
	got := BuildContext(history, 4)
	require.Equal(t, "Assistant showed 2 park results: Central Park, Riverside Gardens", got)
}
