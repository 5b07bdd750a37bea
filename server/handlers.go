package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdfshelf/pdfshelf/client"
	"github.com/pdfshelf/pdfshelf/content"
	"github.com/pdfshelf/pdfshelf/ocr"
	"github.com/pdfshelf/pdfshelf/pathguard"
	"github.com/pdfshelf/pdfshelf/pdf"
	"github.com/pdfshelf/pdfshelf/search"
)

// ExtractRequest represents a request to extract text from a document.
type ExtractRequest struct {
	Path     string `json:"path"`
	Pages    []int  `json:"pages,omitempty"`
	ForceOCR bool   `json:"force_ocr,omitempty"`
	MaxChars int    `json:"max_chars,omitempty"`
}

// Metadata contains metadata about the extracted content.
type Metadata struct {
	Path          string `json:"path"`
	Method        string `json:"method"`
	CacheState    string `json:"cache_state"`
	Scanned       string `json:"scanned,omitempty"`
	Truncated     bool   `json:"truncated"`
	ReturnedChars int    `json:"returned_chars"`
	TotalChars    int    `json:"total_chars"`
}

// ExtractResponse represents the response from an extract request.
type ExtractResponse struct {
	Metadata Metadata `json:"metadata"`
	Content  string   `json:"content"`
}

// DocumentsResponse lists the PDF documents visible to the service.
type DocumentsResponse struct {
	Documents []client.DocumentInfo `json:"documents"`
	Count     int                   `json:"count"`
}

// SearchRequest represents a request to search within a document.
type SearchRequest struct {
	Path          string `json:"path"`
	Query         string `json:"query"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

// SearchResponse represents the response from a search request.
type SearchResponse struct {
	Path string `json:"path"`
	*search.Result
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// handleExtract handles POST /v1/extract requests.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("failed to decode request", "error", err)
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validateExtractRequest(&req); err != nil {
		s.logger.Error("invalid request", "error", err)
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("extract request", "path", req.Path, "pages", req.Pages, "force_ocr", req.ForceOCR)

	result, err := s.client.Extract(ctx, req.Path, client.ExtractOptions{
		Pages:    req.Pages,
		ForceOCR: req.ForceOCR,
	})
	if err != nil {
		s.logger.Error("extract failed", "path", req.Path, "error", err)
		s.sendError(w, fmt.Sprintf("failed to extract %s: %v", req.Path, err), statusForError(err))
		return
	}

	limit := req.MaxChars
	if limit == 0 {
		pathCfg := s.client.Config().GetConfigForPath(result.Path)
		limit = pathCfg.Extract.GetTruncateChars()
	}
	truncated := content.Truncate(result.Text, limit)

	s.sendJSON(w, &ExtractResponse{
		Metadata: Metadata{
			Path:          result.Path,
			Method:        string(result.Method),
			CacheState:    result.CacheState,
			Scanned:       string(result.Scanned),
			Truncated:     truncated.Truncated,
			ReturnedChars: truncated.ReturnedChars,
			TotalChars:    truncated.TotalChars,
		},
		Content: truncated.Content,
	}, http.StatusOK)
}

// handleDocuments handles GET /v1/documents requests. The optional dir query
// parameter narrows the listing to one directory.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")

	infos, err := s.client.List(r.Context(), dir)
	if err != nil {
		s.logger.Error("list failed", "dir", dir, "error", err)
		s.sendError(w, fmt.Sprintf("failed to list documents: %v", err), statusForError(err))
		return
	}

	s.sendJSON(w, &DocumentsResponse{Documents: infos, Count: len(infos)}, http.StatusOK)
}

// handleSearch handles POST /v1/search requests.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("failed to decode request", "error", err)
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Path == "" {
		s.sendError(w, "path is required", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		s.sendError(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := s.client.Search(r.Context(), req.Path, req.Query, req.CaseSensitive)
	if err != nil {
		s.logger.Error("search failed", "path", req.Path, "error", err)
		s.sendError(w, fmt.Sprintf("failed to search %s: %v", req.Path, err), statusForError(err))
		return
	}

	s.sendJSON(w, &SearchResponse{Path: req.Path, Result: result}, http.StatusOK)
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	s.sendJSON(w, health, http.StatusOK)
}

func validateExtractRequest(req *ExtractRequest) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if req.Path == "" {
		return fmt.Errorf("path is required")
	}
	for _, page := range req.Pages {
		if page < 1 {
			return fmt.Errorf("pages must be positive 1-indexed page numbers")
		}
	}
	if req.MaxChars < 0 {
		return fmt.Errorf("max_chars must be non-negative")
	}
	return nil
}

// statusForError maps client failures to HTTP status codes.
func statusForError(err error) int {
	var fbErr *client.FallbackError

	switch {
	case errors.Is(err, pathguard.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, pdf.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ocr.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &fbErr), errors.Is(err, pdf.ErrInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, ErrorResponse{
		Error:      message,
		StatusCode: statusCode,
	}, statusCode)
}
