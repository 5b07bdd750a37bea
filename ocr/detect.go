package ocr

import "strings"

// HasText reports whether sampled per-page text is dense enough to trust the
// document's embedded text layer. Whitespace is stripped before counting;
// the average character count per sampled page must exceed minCharsPerPage.
func HasText(samples []string, minCharsPerPage int) bool {
	if len(samples) == 0 {
		return false
	}

	total := 0
	for _, sample := range samples {
		total += len(strings.TrimSpace(sample))
	}

	avg := float64(total) / float64(len(samples))
	return avg > float64(minCharsPerPage)
}
