// Package pdf reads text from a PDF's embedded content layer, page by page.
package pdf

import (
	"errors"
	"fmt"
	"os"

	ldpdf "github.com/ledongthuc/pdf"

	"github.com/pdfshelf/pdfshelf/content"
)

// ErrNotFound is returned when the document path does not exist.
var ErrNotFound = errors.New("pdf file not found")

// ErrInvalid is returned when the file cannot be opened as a valid PDF.
var ErrInvalid = errors.New("not a valid pdf file")

// Document is an open PDF ready for per-page text extraction.
type Document struct {
	path   string
	file   *os.File
	reader *ldpdf.Reader
}

// Open opens the PDF at path. It returns ErrNotFound when the path does not
// exist and ErrInvalid when the file cannot be parsed as a PDF.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	file, reader, err := ldpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	return &Document{
		path:   path,
		file:   file,
		reader: reader,
	}, nil
}

// Path returns the path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the document's page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// ExtractPages reads the text layer of the selected pages, in request order.
// A nil page list means all pages. Out-of-range and duplicate pages are
// filtered by content.NormalizePages before reading; a request whose pages
// are all out of range yields zero blocks.
func (d *Document) ExtractPages(pages []int) ([]content.Block, error) {
	total := d.reader.NumPage()

	selected := content.NormalizePages(pages, total)
	if selected == nil {
		selected = content.AllPages(total)
	}

	blocks := make([]content.Block, 0, len(selected))
	for _, pageNum := range selected {
		text, err := d.pageText(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d of %s: %w", pageNum, d.path, err)
		}
		blocks = append(blocks, content.Block{
			Page:   pageNum,
			Method: content.MethodDirect,
			Text:   text,
		})
	}

	return blocks, nil
}

// SampleText reads the direct text of up to k pages from the start of the
// document, for scan classification. Per-page read errors contribute an
// empty sample rather than failing the whole sampling pass.
func (d *Document) SampleText(k int) []string {
	total := d.reader.NumPage()
	if k > total {
		k = total
	}

	samples := make([]string, 0, k)
	for pageNum := 1; pageNum <= k; pageNum++ {
		text, err := d.pageText(pageNum)
		if err != nil {
			text = ""
		}
		samples = append(samples, text)
	}
	return samples
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}

func (d *Document) pageText(pageNum int) (string, error) {
	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
