package assistant

import (
	"fmt"
	"strings"
)

const defaultContextTurns = 4

// BuildContext condenses the tail of the conversation into a compact textual
// summary used to ground the next interpretation request. It considers at
// most the given number of trailing turns (oldest-first within that window)
// and returns the empty string for an empty history; callers must then omit
// the context block entirely.
func BuildContext(history []ChatMessage, turns int) string {
	if len(history) == 0 {
		return ""
	}
	if turns <= 0 {
		turns = defaultContextTurns
	}
	start := len(history) - turns
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, turns)
	for _, msg := range history[start:] {
		switch msg.Type {
		case MessageTypeUser:
			lines = append(lines, fmt.Sprintf("User asked: %q", msg.Content))
		case MessageTypeAI:
			if len(msg.Results) == 0 {
				continue
			}
			lines = append(lines, summarizeResults(msg.Results))
		}
	}
	return strings.Join(lines, "\n")
}

func summarizeResults(results []PlaceResult) string {
	names := make([]string, 0, 3)
	for _, r := range results {
		if len(names) == 3 {
			break
		}
		names = append(names, r.Name)
	}
	joined := strings.Join(names, ", ")
	if len(results) > 3 {
		joined += "..."
	}
	return fmt.Sprintf("Assistant showed %d %s results: %s", len(results), results[0].Category, joined)
}
