// Package analyze produces structured code reviews from raw source text
package analyze

import "context"

// Result is one analysis outcome, ready to be persisted as a review
type Result struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Security    []string `json:"security"`
	Performance []string `json:"performance"`
	Suggestions []string `json:"suggestions"`
}

// Analyzer reviews a snippet of code in the given language.
// Implementations must be safe for concurrent use
type Analyzer interface {
	Review(ctx context.Context, language, code string) (Result, error)
}
