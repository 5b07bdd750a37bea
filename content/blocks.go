package content

import (
	"fmt"
	"strings"
)

// Method identifies how a page's text was produced.
type Method string

const (
	// MethodDirect means the text came from the PDF's embedded text layer.
	MethodDirect Method = "direct"
	// MethodOCR means the text was recognized from a rasterized page image.
	MethodOCR Method = "ocr"
)

// Block is one page's worth of extracted text. A block with a non-nil Err
// represents a page whose OCR pass failed; it still renders as a placeholder
// so output never silently drops a requested page.
type Block struct {
	Page   int
	Method Method
	Text   string
	Err    error
}

// RenderBlocks joins page blocks into a single text blob with page-boundary
// markers, in the order the blocks were produced.
func RenderBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, renderBlock(block))
	}
	return strings.Join(parts, "\n")
}

func renderBlock(block Block) string {
	if block.Err != nil {
		return fmt.Sprintf("--- Page %d (OCR Error) ---\nError extracting text: %s\n", block.Page, block.Err)
	}
	if block.Method == MethodOCR {
		return fmt.Sprintf("--- Page %d (OCR) ---\n%s\n", block.Page, block.Text)
	}
	return fmt.Sprintf("--- Page %d ---\n%s\n", block.Page, block.Text)
}
