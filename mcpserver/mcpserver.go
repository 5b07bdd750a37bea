// Package mcpserver exposes the document operations as MCP tools over the
// stdio and streamable HTTP transports.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdfshelf/pdfshelf/client"
	"github.com/pdfshelf/pdfshelf/content"
	"github.com/pdfshelf/pdfshelf/logger"
	"github.com/pdfshelf/pdfshelf/ocr"
	"github.com/pdfshelf/pdfshelf/pathguard"
	"github.com/pdfshelf/pdfshelf/pdf"
	"github.com/pdfshelf/pdfshelf/search"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server wires the extraction client into an MCP tool server.
type Server struct {
	client *client.Client
	server *mcp.Server
	logger logger.Logger
}

// New creates an MCP server around the given client.
func New(c *client.Client, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}

	impl := &mcp.Implementation{
		Name:    "pdfshelf",
		Version: Version,
	}

	s := &Server{
		client: c,
		server: mcp.NewServer(impl, nil),
		logger: log,
	}

	s.registerTools()
	return s
}

// Run serves MCP over stdio. It blocks until the context is cancelled or the
// transport closes.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler so the MCP surface can be
// mounted alongside the REST API.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// ReadPDFInput is the input schema for the read_pdf tool.
type ReadPDFInput struct {
	Path     string `json:"path" jsonschema:"path to the PDF file"`
	Pages    []int  `json:"pages,omitempty" jsonschema:"specific 1-indexed pages to read (default all pages)"`
	ForceOCR bool   `json:"force_ocr,omitempty" jsonschema:"skip the text layer and run OCR"`
}

// ReadPDFOutput is the output schema for the read_pdf tool.
type ReadPDFOutput struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	Method     string `json:"method"`
	CacheState string `json:"cache_state"`
	Truncated  bool   `json:"truncated"`
	TotalChars int    `json:"total_chars"`
}

// ListPDFsInput is the input schema for the list_pdfs tool.
type ListPDFsInput struct {
	Directory string `json:"directory,omitempty" jsonschema:"directory to list (default all allowed directories)"`
}

// ListPDFsOutput is the output schema for the list_pdfs tool.
type ListPDFsOutput struct {
	Documents []client.DocumentInfo `json:"documents"`
	Count     int                   `json:"count"`
}

// SearchPDFInput is the input schema for the search_pdf tool.
type SearchPDFInput struct {
	Path          string `json:"path" jsonschema:"path to the PDF file"`
	Query         string `json:"query" jsonschema:"text to search for"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"match case exactly (default false)"`
}

// SearchPDFOutput is the output schema for the search_pdf tool.
type SearchPDFOutput struct {
	Query        string `json:"query"`
	TotalMatches int    `json:"total_matches"`
	Returned     int    `json:"returned"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_pdf",
		Description: "Read text from a PDF file, running OCR on scanned documents",
	}, s.handleReadPDF)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_pdfs",
		Description: "List PDF files in the allowed directories",
	}, s.handleListPDFs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_pdf",
		Description: "Search for text within a PDF file",
	}, s.handleSearchPDF)
}

func (s *Server) handleReadPDF(ctx context.Context, _ *mcp.CallToolRequest, input ReadPDFInput) (*mcp.CallToolResult, ReadPDFOutput, error) {
	for _, page := range input.Pages {
		if page < 1 {
			return errorResult("Error: pages must be positive 1-indexed page numbers, got %d", page), ReadPDFOutput{}, nil
		}
	}

	result, err := s.client.Extract(ctx, input.Path, client.ExtractOptions{
		Pages:    input.Pages,
		ForceOCR: input.ForceOCR,
	})
	if err != nil {
		s.logger.Warn("read_pdf failed", "path", input.Path, "error", err)
		return errorResult("%s", readErrorMessage(input.Path, err)), ReadPDFOutput{}, nil
	}

	pathCfg := s.client.Config().GetConfigForPath(result.Path)
	limit := pathCfg.Extract.GetTruncateChars()
	truncated := content.Truncate(result.Text, limit)

	output := ReadPDFOutput{
		Path:       result.Path,
		Content:    truncated.Content,
		Method:     string(result.Method),
		CacheState: result.CacheState,
		Truncated:  truncated.Truncated,
		TotalChars: truncated.TotalChars,
	}

	payload := fmt.Sprintf("Content from PDF file: %s\n\n%s", result.Path, truncated.Content)
	return textResult(payload), output, nil
}

func (s *Server) handleListPDFs(ctx context.Context, _ *mcp.CallToolRequest, input ListPDFsInput) (*mcp.CallToolResult, ListPDFsOutput, error) {
	infos, err := s.client.List(ctx, input.Directory)
	if err != nil {
		s.logger.Warn("list_pdfs failed", "directory", input.Directory, "error", err)
		if errors.Is(err, pathguard.ErrNotAllowed) {
			return errorResult("Error: Access denied. %s is outside the allowed directories", input.Directory), ListPDFsOutput{}, nil
		}
		return errorResult("Error listing PDF files: %v", err), ListPDFsOutput{}, nil
	}

	output := ListPDFsOutput{Documents: infos, Count: len(infos)}
	return textResult(formatListing(infos)), output, nil
}

func (s *Server) handleSearchPDF(ctx context.Context, _ *mcp.CallToolRequest, input SearchPDFInput) (*mcp.CallToolResult, SearchPDFOutput, error) {
	result, err := s.client.Search(ctx, input.Path, input.Query, input.CaseSensitive)
	if err != nil {
		s.logger.Warn("search_pdf failed", "path", input.Path, "error", err)
		return errorResult("%s", readErrorMessage(input.Path, err)), SearchPDFOutput{}, nil
	}

	output := SearchPDFOutput{
		Query:        result.Query,
		TotalMatches: result.TotalMatches,
		Returned:     result.Returned,
	}
	return textResult(search.FormatResult(input.Path, result)), output, nil
}

// readErrorMessage maps extraction failures to tool-facing messages.
func readErrorMessage(path string, err error) string {
	switch {
	case errors.Is(err, pathguard.ErrNotAllowed):
		return fmt.Sprintf("Error: Access denied. %s is outside the allowed directories", path)
	case errors.Is(err, pdf.ErrNotFound):
		return fmt.Sprintf("Error: File not found: %s", path)
	case errors.Is(err, ocr.ErrUnavailable):
		return "Error: OCR tools are not installed. Install poppler-utils and tesseract-ocr to read scanned PDFs"
	default:
		return fmt.Sprintf("Error reading PDF: %v", err)
	}
}

// formatListing renders the directory listing as bullet lines.
func formatListing(infos []client.DocumentInfo) string {
	if len(infos) == 0 {
		return "No PDF files found in the allowed directories"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d PDF files:\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(&b, "\n• %s (%.1f MB) %s", info.Path, info.SizeMB, classLabel(info.Scanned))
		if info.HasOCRCache {
			b.WriteString(" [OCR cached]")
		}
	}
	return b.String()
}

func classLabel(cls client.Classification) string {
	switch cls {
	case client.ClassScanned:
		return "[Scanned PDF]"
	case client.ClassText:
		return "[Text PDF]"
	default:
		return "[Unknown type]"
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}
