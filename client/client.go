// Package client orchestrates PDF text extraction: path confinement, the
// two cache tiers, scan classification, and the direct-then-OCR pipeline.
package client

import (
	"context"
	"fmt"

	"github.com/pdfshelf/pdfshelf/cache"
	"github.com/pdfshelf/pdfshelf/config"
	"github.com/pdfshelf/pdfshelf/content"
	"github.com/pdfshelf/pdfshelf/library"
	"github.com/pdfshelf/pdfshelf/logger"
	"github.com/pdfshelf/pdfshelf/ocr"
	"github.com/pdfshelf/pdfshelf/pathguard"
	"github.com/pdfshelf/pdfshelf/pdf"
	"github.com/pdfshelf/pdfshelf/ratelimit"
	"github.com/pdfshelf/pdfshelf/search"
)

// Engine is the OCR backend the client falls back to. It is satisfied by
// *ocr.Engine; tests substitute a fake.
type Engine interface {
	Available() error
	ExtractPages(ctx context.Context, path string, pages []int, total int) ([]content.Block, error)
}

// Client coordinates all components behind the document operations.
type Client struct {
	config  *config.Config
	guard   *pathguard.Guard
	engine  Engine
	memory  *cache.Memory
	disk    *cache.Disk
	limiter *ratelimit.Limiter
	logger  logger.Logger
}

// Classification is the scan-detection verdict for a document.
type Classification string

const (
	// ClassText means the embedded text layer is dense enough to trust.
	ClassText Classification = "text"
	// ClassScanned means the document is effectively a scanned image.
	ClassScanned Classification = "scanned"
	// ClassUnknown means sampling failed; the extraction chain decides.
	ClassUnknown Classification = "unknown"
)

// DocumentInfo is one entry of the enriched directory listing.
type DocumentInfo struct {
	Path        string         `json:"path"`
	SizeMB      float64        `json:"size_mb"`
	Scanned     Classification `json:"scanned"`
	HasOCRCache bool           `json:"has_ocr_cache"`
}

// New creates a Client from the given configuration.
func New(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.New()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	guard, err := pathguard.New(cfg.Paths.AllowedRoots)
	if err != nil {
		return nil, fmt.Errorf("failed to build path guard: %w", err)
	}

	c := &Client{
		config:  cfg,
		guard:   guard,
		memory:  cache.NewMemory(cfg.Default.Cache.GetCapacity()),
		limiter: ratelimit.New(cfg.Default.OCR.GetMaxConcurrent(), cfg.Default.OCR.PagesPerSecond),
		logger:  logger.Noop(),
	}

	if cfg.Default.Cache.DiskEnabled() {
		c.disk = cache.NewDisk()
	}

	return c, nil
}

// NewFromFile creates a Client by loading configuration from a YAML file.
func NewFromFile(path string) (*Client, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return New(cfg)
}

// WithLogger sets the logger for the client.
func (c *Client) WithLogger(log logger.Logger) *Client {
	c.logger = log
	return c
}

// WithEngine sets a fixed OCR engine, bypassing per-document engine
// construction. Used by tests and by callers with a preconfigured engine.
func (c *Client) WithEngine(engine Engine) *Client {
	c.engine = engine
	return c
}

// Guard returns the client's path guard.
func (c *Client) Guard() *pathguard.Guard {
	return c.guard
}

// Config returns the client's configuration. Presentation layers use it to
// resolve per-document output limits.
func (c *Client) Config() *config.Config {
	return c.config
}

// List enumerates PDFs under the given directory, or under every allowed
// root when dir is empty. Each entry is enriched with its size, scan
// classification, and whether a persistent OCR cache entry exists.
// Classification failures degrade to ClassUnknown rather than aborting
// the listing.
func (c *Client) List(ctx context.Context, dir string) ([]DocumentInfo, error) {
	dirs := c.guard.Roots()
	if dir != "" {
		resolved, err := c.guard.Resolve(dir)
		if err != nil {
			return nil, err
		}
		dirs = []string{resolved}
	}

	entries, err := library.List(dirs)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	infos := make([]DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resolved := c.config.GetConfigForPath(entry.Path)
		cls, _ := c.classify(entry.Path, resolved.Extract)

		hasCache := false
		if c.disk != nil {
			hasCache = c.disk.Exists(entry.Path)
		}

		infos = append(infos, DocumentInfo{
			Path:        entry.Path,
			SizeMB:      library.SizeMB(entry.Size),
			Scanned:     cls,
			HasOCRCache: hasCache,
		})
	}

	c.logger.Debug("listed documents", "dirs", dirs, "count", len(infos))
	return infos, nil
}

// Search extracts (or retrieves cached) whole-document text and runs a
// line-based substring search over it. The search always sees the full
// untruncated text, so terms beyond any presentation truncation boundary
// are still found.
func (c *Client) Search(ctx context.Context, path, term string, caseSensitive bool) (*search.Result, error) {
	result, err := c.Extract(ctx, path, ExtractOptions{})
	if err != nil {
		return nil, err
	}

	return search.Search(result.Text, search.Options{
		Query:         term,
		CaseSensitive: caseSensitive,
	}), nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.memory.Clear()
	return nil
}

// classify samples the document's direct text to decide whether it needs
// OCR. Sampling failure reports ClassUnknown so the caller falls through
// to the extract-then-OCR-fallback chain instead of hard-failing.
func (c *Client) classify(path string, extractCfg config.ExtractConfig) (Classification, int) {
	doc, err := pdf.Open(path)
	if err != nil {
		return ClassUnknown, 0
	}
	defer doc.Close()

	total := doc.NumPages()
	if total == 0 {
		return ClassUnknown, 0
	}

	samples := doc.SampleText(extractCfg.GetSamplePages())
	if ocr.HasText(samples, extractCfg.GetMinCharsPerPage()) {
		return ClassText, total
	}
	return ClassScanned, total
}

// engineFor returns the OCR engine for a document, honoring per-root
// configuration overrides unless a fixed engine was injected.
func (c *Client) engineFor(ocrCfg config.OCRConfig) Engine {
	if c.engine != nil {
		return c.engine
	}
	return ocr.New(
		ocr.WithBinaries(ocrCfg.GetPDFToPPMBin(), ocrCfg.GetTesseractBin()),
		ocr.WithLanguage(ocrCfg.GetLanguages()),
		ocr.WithDPI(ocrCfg.GetDPI()),
		ocr.WithTimeout(ocrCfg.GetTimeout()),
		ocr.WithLimiter(c.limiter),
		ocr.WithLogger(c.logger),
	)
}
