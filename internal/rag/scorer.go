package rag

import (
	"strings"
	"unicode"
)

// Term scoring policy: each distinct query term contributes 2 points per
// whole-word occurrence, capped at 10 so one repeated term cannot dominate
// the ranking. Chunks carrying a structural section keyword get a flat +3.
const (
	termScoreStep   = 2
	termScoreCap    = 10
	structuralBonus = 3
	minTermLen      = 3
)

var structuralKeywords = map[string]bool{
	"introduction": true,
	"abstract":     true,
	"conclusion":   true,
	"results":      true,
	"methods":      true,
	"background":   true,
}

func isTermBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// QueryTerms tokenizes a query into distinct lowercase search terms. Short
// tokens (stop-word territory) are dropped.
func QueryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), isTermBoundary)
	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTermLen || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// ScoreChunk computes the lexical relevance of a chunk against the query
// terms. 0 means no match; callers discard such chunks.
func ScoreChunk(chunkText string, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	words := strings.FieldsFunc(strings.ToLower(chunkText), isTermBoundary)
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	score := 0
	for _, term := range terms {
		if occ := counts[term]; occ > 0 {
			pts := occ * termScoreStep
			if pts > termScoreCap {
				pts = termScoreCap
			}
			score += pts
		}
	}
	if hasStructuralKeyword(counts) {
		score += structuralBonus
	}
	return score
}

func hasStructuralKeyword(counts map[string]int) bool {
	for kw := range structuralKeywords {
		if counts[kw] > 0 {
			return true
		}
	}
	return false
}
