package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRenderBlocks verifies page markers for direct, OCR, and failed pages.
func TestRenderBlocks(t *testing.T) {
	blocks := []Block{
		{Page: 1, Method: MethodDirect, Text: "first page"},
		{Page: 2, Method: MethodOCR, Text: "second page"},
		{Page: 3, Method: MethodOCR, Err: errors.New("tesseract exited with status 1")},
	}

	rendered := RenderBlocks(blocks)

	assert.Contains(t, rendered, "--- Page 1 ---\nfirst page\n")
	assert.Contains(t, rendered, "--- Page 2 (OCR) ---\nsecond page\n")
	assert.Contains(t, rendered, "--- Page 3 (OCR Error) ---\nError extracting text: tesseract exited with status 1\n")
}

// TestRenderBlocksOrder verifies blocks render in the order they were produced.
func TestRenderBlocksOrder(t *testing.T) {
	blocks := []Block{
		{Page: 4, Method: MethodDirect, Text: "d"},
		{Page: 2, Method: MethodDirect, Text: "b"},
	}

	rendered := RenderBlocks(blocks)

	posFour := strings.Index(rendered, "--- Page 4 ---")
	posTwo := strings.Index(rendered, "--- Page 2 ---")
	assert.GreaterOrEqual(t, posFour, 0)
	assert.Greater(t, posTwo, posFour)
}

// TestRenderBlocksEmpty verifies no blocks render as an empty string.
func TestRenderBlocksEmpty(t *testing.T) {
	assert.Equal(t, "", RenderBlocks(nil))
}
