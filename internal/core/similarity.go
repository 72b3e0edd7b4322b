package core

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Scorer rates how similar two normalized headers are, from 0 (nothing in
// common) to 1 (identical).
type Scorer interface {
	Score(a, b string) float64
}

// Scorer names accepted by ScorerByName.
const (
	ScorerGestalt     = "gestalt"
	ScorerLevenshtein = "levenshtein"
)

// ScorerByName returns the scorer registered under name. An empty name
// selects the gestalt scorer.
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScorerGestalt:
		return GestaltScorer{}, nil
	case ScorerLevenshtein:
		return LevenshteinScorer{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity scorer %q", name)
	}
}

// GestaltScorer implements Ratcliff/Obershelp pattern matching: the ratio
// 2*M/T where M is the number of characters in matching blocks and T the
// total length of both strings. Blocks are found by taking the longest common
// substring and recursing on both sides of it.
type GestaltScorer struct{}

// Score returns the gestalt similarity ratio of a and b.
func (GestaltScorer) Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := matchingRunes(ra, rb, 0, len(ra), 0, len(rb))
	return 2 * float64(m) / float64(total)
}

// matchingRunes counts runes in matching blocks within a[alo:ahi], b[blo:bhi].
func matchingRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, k := longestMatch(a, b, alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return k +
		matchingRunes(a, b, alo, i, blo, j) +
		matchingRunes(a, b, i+k, ahi, j+k, bhi)
}

// longestMatch finds the longest common run of a[alo:ahi] and b[blo:bhi].
// Among equally long runs the one starting earliest in a wins, then earliest
// in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, best int) {
	besti, bestj = alo, blo
	width := bhi - blo + 1
	prev := make([]int, width)
	cur := make([]int, width)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				cur[j-blo+1] = 0
				continue
			}
			k := prev[j-blo] + 1
			cur[j-blo+1] = k
			if k > best {
				besti, bestj, best = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, best
}

// LevenshteinScorer scores by normalized edit distance:
// 1 - distance/max(len(a), len(b)).
type LevenshteinScorer struct{}

// Score returns the normalized Levenshtein similarity of a and b.
func (LevenshteinScorer) Score(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
