package assistant

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
)

var categoryTemplates = map[string][]string{
	"restaurant": {"Italian Bistro", "Sushi House", "Local Diner", "Mediterranean Grill", "Garden Brasserie", "Harbor Steakhouse"},
	"coffee":     {"The Daily Grind", "Artisan Coffee Co.", "Corner Cafe", "Roasters & Co.", "Morning Ritual", "Steam & Bean"},
	"park":       {"Central Park", "Riverside Gardens", "Community Green", "Oak Tree Park", "Meadowline Commons", "Willow Creek Trail"},
	"shopping":   {"Fashion Plaza", "Local Market", "Boutique Store", "Department Store", "Artisan Arcade", "Harborside Mall"},
	"general":    {"Popular Spot", "Local Favorite", "Community Hub", "City Center", "Hidden Gem", "Neighborhood Classic"},
}

// positionJitter is the full width of the square patch results are scattered
// over, centered on the user location.
const positionJitter = 0.01

// Synthesizer produces place candidates for a turn: either by filtering the
// previous turn's results (follow-up) or by generating a fresh set from the
// category templates. All randomness flows through the injected source so
// tests can pin it.
type Synthesizer struct {
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
}

// NewSynthesizer wires up the result synthesizer.
func NewSynthesizer(cfg Config, rng *rand.Rand, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		cfg:    cfg,
		rng:    rng,
		logger: logger.With("component", "assistant.synthesizer"),
	}
}

// Synthesize returns the candidate set for the current turn. The follow-up
// path only applies when the history actually holds a prior ai turn with
// results; otherwise generation falls through to the fresh path.
func (s *Synthesizer) Synthesize(params SearchFilters, userLocation Location, history []ChatMessage, followUp bool) []PlaceResult {
	if followUp {
		if previous := latestResults(history); len(previous) > 0 {
			filtered := FilterResults(previous, params)
			s.logger.Debug("follow-up filtering applied", "candidates", len(previous), "kept", len(filtered))
			return filtered
		}
	}

	fresh := s.generate(params, userLocation)
	// Generation only biases candidates toward the requirements; the filter
	// pass decides what survives.
	return FilterResults(fresh, params)
}

func (s *Synthesizer) generate(params SearchFilters, userLocation Location) []PlaceResult {
	names := categoryTemplates[normalizeCategory(params.Category)]
	if len(names) == 0 {
		names = categoryTemplates["general"]
	}
	limit := s.cfg.MaxResults
	if limit <= 0 || limit > len(names) {
		limit = len(names)
	}

	category := normalizeCategory(params.Category)
	results := make([]PlaceResult, 0, limit)
	for idx, name := range names[:limit] {
		results = append(results, s.generatePlace(idx, name, category, params, userLocation))
	}
	return results
}

func (s *Synthesizer) generatePlace(idx int, name, category string, params SearchFilters, userLocation Location) PlaceResult {
	party := params.PartySize
	if party < 1 {
		party = 1
	}

	priceLevel := s.rng.Intn(4) + 1
	estimatedCost := float64(priceLevel * perHeadUnitCost * party)
	withinBudget := params.Budget <= 0 || estimatedCost <= params.Budget

	// Within-budget places draw their rating from a higher band.
	var rating float64
	if withinBudget {
		rating = 4.2 + s.rng.Float64()*0.8
	} else {
		rating = 3.5 + s.rng.Float64()*0.8
	}
	rating = math.Round(rating*10) / 10

	status := StatusOpen
	switch roll := s.rng.Float64(); {
	case roll < 0.7:
	case roll < 0.85:
		status = StatusClosingSoon
	default:
		status = StatusClosed
	}

	closingHour := s.pickClosingHour()
	openLate := closingHour > openLateCutoff

	wantsBubbleTea := hasRequirement(params, requirementBubbleTea)
	bubbleTeaMatch := wantsBubbleTea && (nameHintsBubbleTea(name) || s.rng.Float64() < 0.4)

	return PlaceResult{
		ID:       fmt.Sprintf("place_%d", idx),
		Name:     name,
		Rating:   rating,
		Address:  fmt.Sprintf("%d Main Street, %s", 100+idx*50, s.cfg.City),
		Status:   status,
		Category: category,
		Position: Location{
			Latitude:  userLocation.Latitude + (s.rng.Float64()-0.5)*positionJitter,
			Longitude: userLocation.Longitude + (s.rng.Float64()-0.5)*positionJitter,
		},
		Distance:    100 + s.rng.Intn(1000),
		Description: buildDescription(category, params.Budget, party, withinBudget, bubbleTeaMatch, openLate),
		PriceLevel:  priceLevel,
		Hours:       formatClosing(closingHour),
		ClosingHour: closingHour,
	}
}

// pickClosingHour draws a closing time in [17, 24], skewed toward late
// evening by keeping the later of two draws.
func (s *Synthesizer) pickClosingHour() int {
	first := 17 + s.rng.Intn(8)
	second := 17 + s.rng.Intn(8)
	if second > first {
		return second
	}
	return first
}

func nameHintsBubbleTea(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "tea") || strings.Contains(lower, "bubble")
}

func buildDescription(category string, budget float64, party int, withinBudget, bubbleTeaMatch, openLate bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A great %s spot in your area with excellent reviews.", category)
	if bubbleTeaMatch {
		b.WriteString(" Known for its bubble tea menu.")
	}
	if budget > 0 {
		if withinBudget {
			fmt.Fprintf(&b, " Fits a budget of about $%.0f for %d.", budget, party)
		} else {
			b.WriteString(" On the pricier side for your budget.")
		}
	} else if party > 2 {
		fmt.Fprintf(&b, " Comfortable for a group of %d.", party)
	}
	if openLate {
		b.WriteString(" Open late into the evening.")
	}
	return b.String()
}

func formatClosing(hour int) string {
	switch {
	case hour >= 24:
		return "Open until 12:00 AM"
	case hour > 12:
		return fmt.Sprintf("Open until %d:00 PM", hour-12)
	case hour == 12:
		return "Open until 12:00 PM"
	default:
		return fmt.Sprintf("Open until %d:00 AM", hour)
	}
}

// latestResults scans the history newest-to-oldest for the most recent ai
// turn that carries a non-empty result set.
func latestResults(history []ChatMessage) []PlaceResult {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type == MessageTypeAI && len(history[i].Results) > 0 {
			return history[i].Results
		}
	}
	return nil
}
