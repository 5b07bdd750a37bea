package content

// TruncationNotice is appended to output that was cut at the presentation
// boundary. Cached text is never truncated; only what the caller sees.
const TruncationNotice = "\n\n[Content truncated - file is very long. Use the pages parameter to read specific pages]"

// TruncateResult contains the truncation result.
type TruncateResult struct {
	Content       string `json:"content"`
	Truncated     bool   `json:"truncated"`
	ReturnedChars int    `json:"returned_chars"`
	TotalChars    int    `json:"total_chars"`
}

// Truncate cuts text at limit characters and appends the truncation notice.
// Text at or under the limit passes through unchanged. A non-positive limit
// disables truncation.
func Truncate(text string, limit int) *TruncateResult {
	totalChars := len(text)

	if limit <= 0 || totalChars <= limit {
		return &TruncateResult{
			Content:       text,
			Truncated:     false,
			ReturnedChars: totalChars,
			TotalChars:    totalChars,
		}
	}

	return &TruncateResult{
		Content:       text[:limit] + TruncationNotice,
		Truncated:     true,
		ReturnedChars: limit,
		TotalChars:    totalChars,
	}
}
