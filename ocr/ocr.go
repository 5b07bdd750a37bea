// Package ocr recovers text from PDFs without a usable text layer. Pages are
// rasterized with pdftoppm and recognized with tesseract, one image per page.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdfshelf/pdfshelf/content"
	"github.com/pdfshelf/pdfshelf/logger"
	"github.com/pdfshelf/pdfshelf/ratelimit"
)

// ErrUnavailable is returned when the OCR toolchain cannot be invoked at all.
// It is distinct from a per-page recognition failure, which degrades to a
// placeholder block instead.
var ErrUnavailable = errors.New("ocr toolchain is not available")

// lookPath is a seam for tests.
var lookPath = exec.LookPath

// Engine rasterizes PDF pages and runs OCR over the images.
type Engine struct {
	pdftoppmBin  string
	tesseractBin string
	language     string
	dpi          int
	timeout      time.Duration
	runner       Runner
	limiter      *ratelimit.Limiter
	logger       logger.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithBinaries sets the pdftoppm and tesseract binary names or paths.
func WithBinaries(pdftoppm, tesseract string) Option {
	return func(e *Engine) {
		if pdftoppm != "" {
			e.pdftoppmBin = pdftoppm
		}
		if tesseract != "" {
			e.tesseractBin = tesseract
		}
	}
}

// WithLanguage sets the tesseract language stack (e.g. "eng" or "eng+deu").
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		if lang != "" {
			e.language = lang
		}
	}
}

// WithDPI sets the rasterization resolution.
func WithDPI(dpi int) Option {
	return func(e *Engine) {
		if dpi > 0 {
			e.dpi = dpi
		}
	}
}

// WithTimeout sets a per-document deadline for the whole OCR pass.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithRunner sets the command runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithLimiter sets the page-job limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(e *Engine) {
		e.limiter = l
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an OCR Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		pdftoppmBin:  "pdftoppm",
		tesseractBin: "tesseract",
		language:     "eng",
		dpi:          300,
		limiter:      ratelimit.New(4, 0),
		logger:       logger.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = execRunner{logger: e.logger}
	}
	return e
}

// Available reports whether the OCR toolchain can be invoked.
func (e *Engine) Available() error {
	if _, err := lookPath(e.pdftoppmBin); err != nil {
		return fmt.Errorf("%w: %s not found", ErrUnavailable, e.pdftoppmBin)
	}
	if _, err := lookPath(e.tesseractBin); err != nil {
		return fmt.Errorf("%w: %s not found", ErrUnavailable, e.tesseractBin)
	}
	return nil
}

// ExtractPages rasterizes the selected pages and runs OCR over each image.
// A nil page list means the whole document; total is the document's page
// count when known (0 otherwise). Each produced image is mapped back to its
// true page number, so a non-contiguous request keeps correct labels. A
// single page's recognition failure yields a placeholder block; only
// whole-document failures (toolchain missing, rasterization failed) return
// an error.
func (e *Engine) ExtractPages(ctx context.Context, path string, pages []int, total int) ([]content.Block, error) {
	if err := e.Available(); err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	selected := pages
	if total > 0 {
		selected = content.NormalizePages(pages, total)
	}
	if len(pages) > 0 && len(selected) == 0 {
		// Specific pages were requested and none exist in the document.
		return []content.Block{}, nil
	}

	e.logger.Debug("ocr started", "path", path, "pages", selected, "dpi", e.dpi, "lang", e.language)

	images, err := e.rasterize(ctx, path, selected)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(images.dir)

	if selected == nil {
		selected = images.pageNumbers()
	}

	blocks := e.recognizePages(ctx, images, selected)

	e.logger.Info("ocr completed", "path", path, "pages", len(blocks))
	return blocks, nil
}

// pageImages maps true page numbers to their rasterized image files.
type pageImages struct {
	dir    string
	byPage map[int]string
}

// pageNumbers returns the produced page numbers in ascending order.
func (p pageImages) pageNumbers() []int {
	nums := make([]int, 0, len(p.byPage))
	for num := range p.byPage {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

// rasterize runs pdftoppm over the document, limited to the min..max window
// of the selected pages when a subset was requested.
func (e *Engine) rasterize(ctx context.Context, path string, selected []int) (pageImages, error) {
	tmpDir, err := os.MkdirTemp("", "pdfshelf-ocr-*")
	if err != nil {
		return pageImages{}, fmt.Errorf("failed to create temp dir: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(e.dpi), "-png"}

	firstPage := 0
	if len(selected) > 0 {
		first, last := selected[0], selected[0]
		for _, page := range selected[1:] {
			if page < first {
				first = page
			}
			if page > last {
				last = page
			}
		}
		firstPage = first
		args = append(args, "-f", strconv.Itoa(first), "-l", strconv.Itoa(last))
	}
	args = append(args, path, prefix)

	_, stderr, err := e.runner.Run(ctx, e.pdftoppmBin, args...)
	if err != nil {
		os.RemoveAll(tmpDir)
		return pageImages{}, fmt.Errorf("pdftoppm failed for %s: %w (%s)", path, err, truncateStderr(strings.TrimSpace(string(stderr)), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		os.RemoveAll(tmpDir)
		return pageImages{}, fmt.Errorf("pdftoppm produced no images for %s", path)
	}

	return pageImages{dir: tmpDir, byPage: indexImages(matches, firstPage)}, nil
}

// indexImages builds the page-number-to-image map. pdftoppm encodes the page
// number in each file name (page-1.png, zero-padded for longer documents);
// that number is authoritative. Files whose suffix cannot be parsed fall
// back to positional order from the window's first page.
func indexImages(matches []string, firstPage int) map[int]string {
	if firstPage < 1 {
		firstPage = 1
	}

	byPage := make(map[int]string, len(matches))
	for i, img := range matches {
		name := strings.TrimSuffix(filepath.Base(img), ".png")
		idx := strings.LastIndex(name, "-")
		if idx >= 0 {
			if num, err := strconv.Atoi(name[idx+1:]); err == nil {
				byPage[num] = img
				continue
			}
		}
		byPage[firstPage+i] = img
	}
	return byPage
}

// recognizePages runs tesseract over each selected page's image on parallel
// workers bounded by the limiter, then returns the blocks in request order.
func (e *Engine) recognizePages(ctx context.Context, images pageImages, selected []int) []content.Block {
	blocks := make([]content.Block, len(selected))

	var wg sync.WaitGroup
	for i, pageNum := range selected {
		wg.Add(1)
		go func(i, pageNum int) {
			defer wg.Done()
			blocks[i] = e.recognizePage(ctx, images, pageNum)
		}(i, pageNum)
	}
	wg.Wait()

	return blocks
}

func (e *Engine) recognizePage(ctx context.Context, images pageImages, pageNum int) content.Block {
	block := content.Block{Page: pageNum, Method: content.MethodOCR}

	img, ok := images.byPage[pageNum]
	if !ok {
		block.Err = fmt.Errorf("no image produced for page %d", pageNum)
		return block
	}

	if err := e.limiter.Wait(ctx); err != nil {
		block.Err = err
		return block
	}
	defer e.limiter.Release()

	stdout, stderr, err := e.runner.Run(ctx, e.tesseractBin, img, "stdout", "-l", e.language)
	if err != nil {
		block.Err = fmt.Errorf("%v (%s)", err, truncateStderr(strings.TrimSpace(string(stderr)), 256))
		return block
	}

	block.Text = string(stdout)
	return block
}
