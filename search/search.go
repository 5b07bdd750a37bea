// Package search performs substring search with line-context extraction
// over previously extracted document text.
package search

import (
	"fmt"
	"strings"
)

// DefaultMaxResults caps how many matches a result carries.
const DefaultMaxResults = 10

// Options contains search parameters.
type Options struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

// Result contains search results. TotalMatches counts every matching line;
// Matches holds at most MaxResults of them, with Omitted recording the rest.
type Result struct {
	Query        string  `json:"query"`
	TotalMatches int     `json:"total_matches"`
	Returned     int     `json:"returned"`
	Omitted      int     `json:"omitted,omitempty"`
	Matches      []Match `json:"matches"`
}

// Match is a single matching line with its immediate neighbors as context.
type Match struct {
	Line    int    `json:"line"`
	Context string `json:"context"`
}

// Search scans text line by line for the query as a substring. Matching is
// case-insensitive unless requested otherwise; context is always reported
// from the original text. Line numbers are 1-indexed.
func Search(text string, opts Options) *Result {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	result := &Result{Query: opts.Query, Matches: []Match{}}
	if opts.Query == "" {
		return result
	}

	lines := strings.Split(text, "\n")
	haystack := lines
	needle := opts.Query
	if !opts.CaseSensitive {
		haystack = make([]string, len(lines))
		for i, line := range lines {
			haystack[i] = strings.ToLower(line)
		}
		needle = strings.ToLower(needle)
	}

	for i, line := range haystack {
		if !strings.Contains(line, needle) {
			continue
		}
		result.TotalMatches++
		if len(result.Matches) < opts.MaxResults {
			result.Matches = append(result.Matches, Match{
				Line:    i + 1,
				Context: contextWindow(lines, i),
			})
		}
	}

	result.Returned = len(result.Matches)
	result.Omitted = result.TotalMatches - result.Returned
	return result
}

// contextWindow joins the matching line with its neighbors (one before,
// one after) into a single space-separated string.
func contextWindow(lines []string, i int) string {
	start := i - 1
	if start < 0 {
		start = 0
	}
	end := i + 2
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], " ")
}

// FormatResult renders a result as the text payload returned to callers.
// No matches is an explicit message, never an empty string.
func FormatResult(path string, r *Result) string {
	if r.TotalMatches == 0 {
		return fmt.Sprintf("No matches found for '%s' in %s", r.Query, path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for '%s' in %s:\n\n", r.TotalMatches, r.Query, path)

	parts := make([]string, 0, len(r.Matches))
	for _, match := range r.Matches {
		parts = append(parts, fmt.Sprintf("Line %d: %s", match.Line, match.Context))
	}
	b.WriteString(strings.Join(parts, "\n\n"))

	if r.Omitted > 0 {
		fmt.Fprintf(&b, "\n\n[Showing first %d of %d matches]", r.Returned, r.TotalMatches)
	}

	return b.String()
}
