package core

import (
	"strings"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

// DefaultFuzzyCutoff is the minimum similarity for a fuzzy header match.
const DefaultFuzzyCutoff = 0.6

// dateMarker forces any header containing it onto redemption_date.
const dateMarker = "date"

// NormalizeHeader trims, lowercases and replaces spaces with underscores.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// HeaderMatcher resolves raw headers to canonical fields.
type HeaderMatcher struct {
	cutoff float64
	scorer Scorer
}

// NewHeaderMatcher creates a matcher. A nil scorer selects GestaltScorer.
func NewHeaderMatcher(cutoff float64, scorer Scorer) *HeaderMatcher {
	if scorer == nil {
		scorer = GestaltScorer{}
	}
	return &HeaderMatcher{cutoff: cutoff, scorer: scorer}
}

// Match resolves every header independently. The result has one entry per
// header in input order, duplicates included.
func (m *HeaderMatcher) Match(headers []string) []HeaderMatch {
	out := make([]HeaderMatch, len(headers))
	for i, h := range headers {
		out[i] = m.matchOne(h)
		out[i].Index = i
	}
	return out
}

func (m *HeaderMatcher) matchOne(raw string) HeaderMatch {
	norm := NormalizeHeader(raw)
	hm := HeaderMatch{Raw: raw, Normalized: norm, Field: -1}

	// Any mention of a date wins over every other rule.
	if strings.Contains(norm, dateMarker) {
		hm.Field = schema.RedemptionDate
		hm.Kind = MatchForcedDate
		hm.Score = 1
		return hm
	}

	if f, ok := schema.Lookup(norm); ok {
		hm.Field = f
		hm.Kind = MatchExact
		hm.Score = 1
		return hm
	}

	best, bestScore := schema.Field(-1), 0.0
	bestName := ""
	for _, spec := range schema.RedemptionFieldSpecs {
		candidate := NormalizeHeader(spec.Name)
		score := m.scorer.Score(candidate, norm)
		if score < m.cutoff {
			continue
		}
		// Equal scores go to the lexicographically greater name so the
		// choice never depends on schema order.
		if !best.Valid() || score > bestScore || (score == bestScore && candidate > bestName) {
			best, bestScore, bestName = spec.Field, score, candidate
		}
	}
	if best.Valid() {
		hm.Field = best
		hm.Kind = MatchFuzzy
		hm.Score = bestScore
	}
	return hm
}
