package content

// NormalizePages resolves a requested page list against a document's page
// count. Pages are 1-indexed. Duplicates are dropped while preserving the
// order of the request; out-of-range pages are silently filtered. A nil or
// empty request returns nil, which callers treat as "all pages". A request
// whose pages all filter out returns an empty non-nil slice: the caller
// asked for specific pages and none of them exist, which must yield zero
// pages, never the whole document.
func NormalizePages(pages []int, total int) []int {
	if len(pages) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(pages))
	normalized := make([]int, 0, len(pages))
	for _, page := range pages {
		if page < 1 || page > total {
			continue
		}
		if seen[page] {
			continue
		}
		seen[page] = true
		normalized = append(normalized, page)
	}

	return normalized
}

// AllPages returns the full 1..total page list.
func AllPages(total int) []int {
	if total <= 0 {
		return nil
	}
	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
