package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTruncateUnderLimit verifies short text passes through untouched.
func TestTruncateUnderLimit(t *testing.T) {
	result := Truncate("short text", 100)

	assert.False(t, result.Truncated)
	assert.Equal(t, "short text", result.Content)
	assert.Equal(t, 10, result.TotalChars)
	assert.Equal(t, 10, result.ReturnedChars)
}

// TestTruncateOverLimit verifies long text is cut and carries the notice.
func TestTruncateOverLimit(t *testing.T) {
	text := strings.Repeat("a", 200)
	result := Truncate(text, 50)

	assert.True(t, result.Truncated)
	assert.True(t, strings.HasPrefix(result.Content, strings.Repeat("a", 50)))
	assert.True(t, strings.HasSuffix(result.Content, TruncationNotice))
	assert.Equal(t, 200, result.TotalChars)
	assert.Equal(t, 50, result.ReturnedChars)
}

// TestTruncateExactLimit verifies text exactly at the limit is not truncated.
func TestTruncateExactLimit(t *testing.T) {
	text := strings.Repeat("b", 50)
	result := Truncate(text, 50)

	assert.False(t, result.Truncated)
	assert.Equal(t, text, result.Content)
}

// TestTruncateDisabled verifies a non-positive limit disables truncation.
func TestTruncateDisabled(t *testing.T) {
	text := strings.Repeat("c", 500)

	assert.False(t, Truncate(text, 0).Truncated)
	assert.False(t, Truncate(text, -1).Truncated)
}
