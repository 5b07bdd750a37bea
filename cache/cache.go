// Package cache holds extraction results in two tiers: a bounded in-process
// map keyed by (path, page selection) for the current run, and persistent
// sibling text files addressed by the document's content hash for OCR
// results that should survive restarts.
package cache

import "fmt"

// Key renders the in-memory cache key for a path and page selection. The
// page list is part of the key verbatim, so the same document requested
// with different page subsets caches separately.
func Key(path string, pages []int) string {
	return fmt.Sprintf("%s:%v", path, pages)
}
