package assistant

import (
	"strconv"
	"strings"
)

// Fixed filtering policy. The per-level per-head cost and the default price
// level are constants of the product, not derived values.
const (
	perHeadUnitCost   = 10
	defaultPriceLevel = 2
	openLateCutoff    = 21
)

// Requirement tags the filter understands. Anything else is ignored.
const (
	requirementBubbleTea = "bubble tea"
	requirementOpenLate  = "open late"
)

// FilterResults applies the budget and specific-requirement predicates to a
// candidate set. It is order-preserving and purely predicate-based; a
// candidate survives only when every recognized predicate passes.
func FilterResults(candidates []PlaceResult, params SearchFilters) []PlaceResult {
	out := make([]PlaceResult, 0, len(candidates))
	for _, candidate := range candidates {
		if !affordable(candidate, params) {
			continue
		}
		if hasRequirement(params, requirementBubbleTea) && !mentionsBubbleTea(candidate) {
			continue
		}
		if hasRequirement(params, requirementOpenLate) && !closesLate(candidate) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func affordable(r PlaceResult, params SearchFilters) bool {
	if params.Budget <= 0 {
		return true
	}
	level := r.PriceLevel
	if level == 0 {
		level = defaultPriceLevel
	}
	party := params.PartySize
	if party < 1 {
		party = 1
	}
	return float64(level*perHeadUnitCost*party) <= params.Budget
}

func hasRequirement(params SearchFilters, tag string) bool {
	for _, req := range params.SpecificRequirements {
		if strings.EqualFold(strings.TrimSpace(req), tag) {
			return true
		}
	}
	return false
}

func mentionsBubbleTea(r PlaceResult) bool {
	return strings.Contains(strings.ToLower(r.Description), requirementBubbleTea)
}

// closesLate reports whether the candidate stays open past 9 PM. Fresh
// candidates carry the synthesized 24-hour closing time; carried-over
// candidates without one fall back to the leading numeral of the Hours
// string.
func closesLate(r PlaceResult) bool {
	hour := r.ClosingHour
	if hour == 0 {
		hour = leadingNumber(r.Hours)
	}
	return hour > openLateCutoff
}

func leadingNumber(s string) int {
	start := -1
	for i, ch := range s {
		if ch >= '0' && ch <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, _ := strconv.Atoi(s[start:i])
			return n
		}
	}
	if start != -1 {
		n, _ := strconv.Atoi(s[start:])
		return n
	}
	return 0
}
