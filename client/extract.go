package client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pdfshelf/pdfshelf/cache"
	"github.com/pdfshelf/pdfshelf/content"
	"github.com/pdfshelf/pdfshelf/pdf"
)

// CachedOCRNotice prefixes text served from the persistent OCR tier.
const CachedOCRNotice = "[Using cached OCR text]\n\n"

// ExtractOptions controls a single extraction request.
type ExtractOptions struct {
	// Pages selects specific 1-indexed pages. Nil means the whole document.
	Pages []int
	// ForceOCR bypasses both cache tiers and the text layer entirely.
	ForceOCR bool
}

// Result is the outcome of an extraction. Text is always the full
// untruncated text; truncation happens at the presentation boundary.
type Result struct {
	Path       string
	Text       string
	Method     content.Method
	CacheState string
	Scanned    Classification
}

// FallbackError reports that direct extraction failed and the OCR fallback
// failed too. Both causes are preserved.
type FallbackError struct {
	DirectErr error
	OCRErr    error
}

// Error names both underlying failures.
func (e *FallbackError) Error() string {
	return fmt.Sprintf("both direct extraction and OCR failed. Direct error: %v, OCR error: %v", e.DirectErr, e.OCRErr)
}

// Unwrap exposes both causes for errors.Is and errors.As.
func (e *FallbackError) Unwrap() []error {
	return []error{e.DirectErr, e.OCRErr}
}

// Extract produces the text of a document. The request flows through:
// path guard, persistent cache (whole-document only), in-memory cache,
// scan classification, then direct extraction or OCR with an OCR fallback
// when direct extraction fails. Results are written back to both tiers;
// the persistent tier only holds whole-document OCR text.
func (c *Client) Extract(ctx context.Context, path string, opts ExtractOptions) (*Result, error) {
	abs, err := c.guard.Resolve(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", pdf.ErrNotFound, abs)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	c.logger.Debug("extract started", "path", abs, "pages", opts.Pages, "force_ocr", opts.ForceOCR)

	wholeDoc := len(opts.Pages) == 0

	if !opts.ForceOCR {
		if wholeDoc && c.disk != nil {
			text, err := c.disk.Load(abs)
			if err != nil {
				c.logger.Warn("persistent cache read failed", "path", abs, "error", err)
			} else if text != "" {
				c.logger.Debug("cache hit (disk)", "path", abs)
				return &Result{
					Path:       abs,
					Text:       CachedOCRNotice + text,
					Method:     content.MethodOCR,
					CacheState: "disk",
					Scanned:    ClassScanned,
				}, nil
			}
		}

		if entry, ok := c.memory.Get(abs, opts.Pages); ok {
			c.logger.Debug("cache hit (memory)", "path", abs)
			return &Result{
				Path:       abs,
				Text:       entry.Text,
				Method:     content.Method(entry.Method),
				CacheState: "memory",
				Scanned:    Classification(entry.Scanned),
			}, nil
		}
	}

	resolved := c.config.GetConfigForPath(abs)
	cls, total := c.classify(abs, resolved.Extract)
	engine := c.engineFor(resolved.OCR)

	var blocks []content.Block
	if opts.ForceOCR || cls == ClassScanned {
		blocks, err = engine.ExtractPages(ctx, abs, opts.Pages, total)
		if err != nil {
			return nil, fmt.Errorf("failed to OCR %s: %w", abs, err)
		}
	} else {
		blocks, err = c.extractDirect(abs, opts.Pages)
		if err != nil {
			c.logger.Warn("direct extraction failed, trying OCR", "path", abs, "error", err)
			ocrBlocks, ocrErr := engine.ExtractPages(ctx, abs, opts.Pages, total)
			if ocrErr != nil {
				return nil, &FallbackError{DirectErr: err, OCRErr: ocrErr}
			}
			blocks = ocrBlocks
		}
	}

	text := content.RenderBlocks(blocks)
	method := blockMethod(blocks)

	c.memory.Set(abs, opts.Pages, cache.Entry{
		Text:    text,
		Method:  string(method),
		Scanned: string(cls),
	})
	if wholeDoc && method == content.MethodOCR && c.disk != nil {
		if err := c.disk.Store(abs, text); err != nil {
			c.logger.Warn("persistent cache write failed", "path", abs, "error", err)
		}
	}

	c.logger.Info("extract completed", "path", abs, "method", method, "pages", len(blocks), "chars", len(text))

	return &Result{
		Path:       abs,
		Text:       text,
		Method:     method,
		CacheState: "miss",
		Scanned:    cls,
	}, nil
}

// IsNotFound reports whether err is a missing-document failure.
func IsNotFound(err error) bool {
	return errors.Is(err, pdf.ErrNotFound)
}

// extractDirect reads the selected pages from the document's text layer.
func (c *Client) extractDirect(path string, pages []int) ([]content.Block, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return doc.ExtractPages(pages)
}

// blockMethod reduces per-block methods to the result-level method.
func blockMethod(blocks []content.Block) content.Method {
	if len(blocks) == 0 {
		return content.MethodDirect
	}

	first := blocks[0].Method
	for _, block := range blocks[1:] {
		if block.Method != first {
			return "mixed"
		}
	}
	return first
}
