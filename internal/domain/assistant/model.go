package assistant

import (
	"time"

	"github.com/google/uuid"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchFilters is the structured intent extracted from one user turn.
// Zero values mean "not set" for the optional fields.
type SearchFilters struct {
	Radius               int      `json:"radius"`
	Category             string   `json:"category"`
	Keywords             []string `json:"keywords"`
	PriceLevel           int      `json:"priceLevel,omitempty"`
	OpenNow              *bool    `json:"openNow,omitempty"`
	Budget               float64  `json:"budget,omitempty"`
	PartySize            int      `json:"partySize,omitempty"`
	SpecificRequirements []string `json:"specificRequirements,omitempty"`
}

// Place open/closed states.
const (
	StatusOpen        = "open"
	StatusClosed      = "closed"
	StatusClosingSoon = "closing_soon"
)

// PlaceResult is a single synthesized place candidate. ClosingHour keeps the
// 24-hour closing time alongside the display string so the open-late
// predicate does not have to re-parse Hours for freshly generated candidates.
type PlaceResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rating      float64  `json:"rating"`
	Address     string   `json:"address"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Position    Location `json:"position"`
	Distance    int      `json:"distance"`
	Description string   `json:"description"`
	PriceLevel  int      `json:"priceLevel,omitempty"`
	Hours       string   `json:"hours,omitempty"`
	ClosingHour int      `json:"closingHour,omitempty"`
}

// Message types for conversation turns.
const (
	MessageTypeUser = "user"
	MessageTypeAI   = "ai"
)

// ChatMessage is one turn in the conversation log. Turns are append-only and
// never mutated after creation.
type ChatMessage struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Content     string          `json:"content"`
	Timestamp   time.Time       `json:"timestamp"`
	Results     []PlaceResult   `json:"results,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Context     *MessageContext `json:"context,omitempty"`
}

// MessageContext echoes the query that produced an ai turn.
type MessageContext struct {
	SearchQuery string `json:"searchQuery,omitempty"`
	ResultCount int    `json:"resultCount"`
}

// Conversation owns the ordered turn log for one client session. NextSeq is
// persisted so message IDs stay monotonic across store round-trips.
type Conversation struct {
	ID        uuid.UUID     `json:"id"`
	Location  Location      `json:"location"`
	Messages  []ChatMessage `json:"messages"`
	NextSeq   int64         `json:"nextSeq"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// LatestSnapshot is what presentation collaborators read after each turn:
// the results and suggestions of the most recent ai message.
type LatestSnapshot struct {
	Results     []PlaceResult `json:"results"`
	Suggestions []string      `json:"suggestions"`
}

// Config carries the tunables for the assistant domain.
type Config struct {
	Model          string
	Temperature    float32
	RequestTimeout time.Duration
	MaxResults     int
	ContextTurns   int
	City           string
}
