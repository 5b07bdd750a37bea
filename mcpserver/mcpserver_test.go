package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfshelf/pdfshelf/client"
	"github.com/pdfshelf/pdfshelf/config"
	"github.com/pdfshelf/pdfshelf/content"
)

// fakeEngine satisfies client.Engine with canned OCR output.
type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Available() error { return nil }

func (f *fakeEngine) ExtractPages(ctx context.Context, path string, pages []int, total int) ([]content.Block, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []content.Block{{Page: 1, Method: content.MethodOCR, Text: f.text}}, nil
}

func newTestServer(t *testing.T, root string, engine *fakeEngine) *Server {
	t.Helper()

	cfg := config.New()
	cfg.Paths.AllowedRoots = []string{root}
	cfg.Default.Cache.DisableDisk = true

	c, err := client.New(cfg)
	require.NoError(t, err)

	return New(c.WithEngine(engine), nil)
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not a real pdf"), 0o644))
	return path
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

// TestReadPDF verifies the rendered payload and structured output.
func TestReadPDF(t *testing.T) {
	root := t.TempDir()
	path := writePDF(t, root, "doc.pdf")
	s := newTestServer(t, root, &fakeEngine{text: "hello from ocr"})

	result, output, err := s.handleReadPDF(context.Background(), nil, ReadPDFInput{Path: path})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := textContent(t, result)
	assert.True(t, strings.HasPrefix(payload, fmt.Sprintf("Content from PDF file: %s\n\n", path)))
	assert.Contains(t, payload, "hello from ocr")
	assert.Equal(t, "ocr", output.Method)
	assert.False(t, output.Truncated)
}

// TestReadPDFTruncates verifies long output is cut with the notice while the
// total size is still reported.
func TestReadPDFTruncates(t *testing.T) {
	root := t.TempDir()
	path := writePDF(t, root, "doc.pdf")
	s := newTestServer(t, root, &fakeEngine{text: strings.Repeat("a", 20000)})

	result, output, err := s.handleReadPDF(context.Background(), nil, ReadPDFInput{Path: path})
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.True(t, output.Truncated)
	assert.Greater(t, output.TotalChars, 15000)
	assert.Contains(t, output.Content, content.TruncationNotice)
}

// TestSearchBeyondTruncationBoundary verifies truncation only shapes the
// read payload: the cached text stays full, so a later search still finds
// terms past the cut.
func TestSearchBeyondTruncationBoundary(t *testing.T) {
	root := t.TempDir()
	path := writePDF(t, root, "doc.pdf")
	longText := strings.Repeat("filler line\n", 2000) + "the sentinel appears here"
	s := newTestServer(t, root, &fakeEngine{text: longText})

	result, output, err := s.handleReadPDF(context.Background(), nil, ReadPDFInput{Path: path})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.True(t, output.Truncated)
	assert.NotContains(t, output.Content, "sentinel")

	searchResult, searchOutput, err := s.handleSearchPDF(context.Background(), nil, SearchPDFInput{Path: path, Query: "sentinel"})
	require.NoError(t, err)
	require.False(t, searchResult.IsError)
	assert.Equal(t, 1, searchOutput.TotalMatches)
	assert.Contains(t, textContent(t, searchResult), "the sentinel appears here")
}

// TestReadPDFRejectsNonPositivePages verifies zero and negative page numbers
// are refused before any extraction work happens.
func TestReadPDFRejectsNonPositivePages(t *testing.T) {
	root := t.TempDir()
	path := writePDF(t, root, "doc.pdf")
	s := newTestServer(t, root, &fakeEngine{text: "x"})

	for _, pages := range [][]int{{0}, {-1}, {1, 0, 2}} {
		result, _, err := s.handleReadPDF(context.Background(), nil, ReadPDFInput{Path: path, Pages: pages})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "pages must be positive")
	}
}

// TestReadPDFErrors verifies failures surface as tool errors, not protocol
// faults.
func TestReadPDFErrors(t *testing.T) {
	root := t.TempDir()
	s := newTestServer(t, root, &fakeEngine{text: "x"})

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "outside allowed roots",
			path: "/not/allowed/doc.pdf",
			want: "Access denied",
		},
		{
			name: "missing file",
			path: filepath.Join(root, "missing.pdf"),
			want: "File not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleReadPDF(context.Background(), nil, ReadPDFInput{Path: tt.path})
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, textContent(t, result), tt.want)
		})
	}
}

// TestListPDFs verifies the bullet listing and the empty-directory message.
func TestListPDFs(t *testing.T) {
	root := t.TempDir()
	writePDF(t, root, "a.pdf")
	writePDF(t, root, "b.pdf")
	s := newTestServer(t, root, &fakeEngine{text: "x"})

	result, output, err := s.handleListPDFs(context.Background(), nil, ListPDFsInput{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := textContent(t, result)
	assert.Contains(t, payload, "Found 2 PDF files:")
	assert.Contains(t, payload, "• "+filepath.Join(root, "a.pdf"))
	assert.Contains(t, payload, "[Unknown type]")
	assert.Equal(t, 2, output.Count)
}

// TestListPDFsEmpty verifies an empty library yields a friendly message.
func TestListPDFsEmpty(t *testing.T) {
	s := newTestServer(t, t.TempDir(), &fakeEngine{text: "x"})

	result, output, err := s.handleListPDFs(context.Background(), nil, ListPDFsInput{})
	require.NoError(t, err)
	assert.Equal(t, "No PDF files found in the allowed directories", textContent(t, result))
	assert.Equal(t, 0, output.Count)
}

// TestListPDFsOutsideRoots verifies confinement applies to listings.
func TestListPDFsOutsideRoots(t *testing.T) {
	s := newTestServer(t, t.TempDir(), &fakeEngine{text: "x"})

	result, _, err := s.handleListPDFs(context.Background(), nil, ListPDFsInput{Directory: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Access denied")
}

// TestSearchPDF verifies match rendering through the search formatter.
func TestSearchPDF(t *testing.T) {
	root := t.TempDir()
	path := writePDF(t, root, "doc.pdf")
	s := newTestServer(t, root, &fakeEngine{text: "alpha\nthe needle is here\nomega"})

	result, output, err := s.handleSearchPDF(context.Background(), nil, SearchPDFInput{Path: path, Query: "needle"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := textContent(t, result)
	assert.Contains(t, payload, fmt.Sprintf("Found 1 matches for 'needle' in %s:", path))
	assert.Contains(t, payload, "the needle is here")
	assert.Equal(t, 1, output.TotalMatches)
}

// TestSearchPDFNoMatches verifies the explicit no-match message.
func TestSearchPDFNoMatches(t *testing.T) {
	root := t.TempDir()
	path := writePDF(t, root, "doc.pdf")
	s := newTestServer(t, root, &fakeEngine{text: "nothing relevant"})

	result, output, err := s.handleSearchPDF(context.Background(), nil, SearchPDFInput{Path: path, Query: "zebra"})
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "No matches found for 'zebra'")
	assert.Equal(t, 0, output.TotalMatches)
}

// TestClassLabels verifies every classification renders a label.
func TestClassLabels(t *testing.T) {
	assert.Equal(t, "[Scanned PDF]", classLabel(client.ClassScanned))
	assert.Equal(t, "[Text PDF]", classLabel(client.ClassText))
	assert.Equal(t, "[Unknown type]", classLabel(client.ClassUnknown))
}
