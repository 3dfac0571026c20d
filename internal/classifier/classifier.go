package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/cargaflow/carga-agent/internal/models"
)

// Classifier maps a free-text question to an Intent. Implementations never
// surface errors to the caller; a failed primary path degrades to a default
// intent instead.
type Classifier interface {
	Classify(ctx context.Context, question string) models.Intent
}

// identifierPatterns is the deterministic fallback chain, in fixed priority
// order: code-like tokens, long numeric runs, letter-prefixed alphanumerics,
// digit-prefixed alphanumerics.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z]+-\d+\b`),
	regexp.MustCompile(`\b\d{6,}\b`),
	regexp.MustCompile(`\b[A-Z]{2,}\d+\b`),
	regexp.MustCompile(`\b\d+[A-Z]+\b`),
}

// IdentifierCandidates extracts identifier-looking tokens from the question,
// one group per pattern, in pattern priority order. The caller tries each
// candidate against the store and stops at the first one that yields rows.
func IdentifierCandidates(question string) [][]string {
	upper := strings.ToUpper(question)

	groups := make([][]string, 0, len(identifierPatterns))
	for _, pattern := range identifierPatterns {
		if matches := pattern.FindAllString(upper, -1); len(matches) > 0 {
			groups = append(groups, matches)
		}
	}
	return groups
}

// TokenCandidates is the last resort: individual whitespace-delimited
// alphanumeric tokens longer than 2 characters, in question order.
func TokenCandidates(question string) []string {
	var tokens []string
	for _, word := range strings.Fields(question) {
		if len(word) > 2 && isAlphanumeric(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return s != ""
}

// DefaultIntent is the terminal fallback: treat the whole question as an
// identifier search.
func DefaultIntent(question string) models.Intent {
	return models.Intent{
		SearchType: models.SearchByIdentifier,
		Identifier: question,
		Purpose:    "busca_geral",
	}
}
