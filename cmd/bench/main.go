package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	api "github.com/pdfshelf/pdfshelf/server"
)

const (
	defaultServerURL = "http://localhost:8080"
)

type BenchmarkResult struct {
	Metadata      api.Metadata  `json:"metadata"`
	TimeTaken     time.Duration `json:"time_taken_ms"`
	ContentLength int           `json:"content_length"`
	RequestTime   string        `json:"request_time"`
	Content       string        `json:"content,omitempty"`
}

func main() {
	serverURL := flag.String("server", defaultServerURL, "Server URL")
	path := flag.String("path", "", "PDF file path to extract (required)")
	pages := flag.String("pages", "", "Comma-separated 1-indexed pages (default all)")
	forceOCR := flag.Bool("force-ocr", false, "Skip the text layer and run OCR")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	showContent := flag.Bool("content", false, "Include extracted content in output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "PDFShelf Benchmark Tool - Extract PDFs with timing\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "    %s -path /docs/report.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "    %s -path /docs/scan.pdf -pages 1,2,5 -force-ocr -json\n", os.Args[0])
	}

	flag.Parse()

	if *path == "" {
		fmt.Fprintf(os.Stderr, "Error: -path flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	pageList, err := parsePages(*pages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := benchmarkExtract(*serverURL, *path, pageList, *forceOCR)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*showContent {
		result.Content = ""
	}

	if *jsonOutput {
		outputJSON(result)
	} else {
		outputHuman(result)
	}
}

func parsePages(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	pages := make([]int, 0, len(parts))
	for _, part := range parts {
		page, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func benchmarkExtract(serverURL, path string, pages []int, forceOCR bool) (*BenchmarkResult, error) {
	reqBody := api.ExtractRequest{
		Path:     path,
		Pages:    pages,
		ForceOCR: forceOCR,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := serverURL + "/v1/extract"

	start := time.Now()
	resp, err := http.Post(endpoint, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to extract: %w", err)
	}
	defer resp.Body.Close()

	timeTaken := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var extractResp api.ExtractResponse
	if err := json.Unmarshal(body, &extractResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &BenchmarkResult{
		Metadata:      extractResp.Metadata,
		TimeTaken:     timeTaken,
		ContentLength: len(extractResp.Content),
		RequestTime:   time.Now().Format(time.RFC3339),
		Content:       extractResp.Content,
	}, nil
}

func outputJSON(result *BenchmarkResult) {
	output := map[string]interface{}{
		"time_taken_ms":  result.TimeTaken.Milliseconds(),
		"request_time":   result.RequestTime,
		"metadata":       result.Metadata,
		"content_length": result.ContentLength,
	}
	if result.Content != "" {
		output["content"] = result.Content
	}

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(jsonData))
}

func outputHuman(result *BenchmarkResult) {
	fmt.Println("=== PDFShelf Extract Benchmark Results ===")
	fmt.Println()
	fmt.Printf("Path:             %s\n", result.Metadata.Path)
	fmt.Printf("Method:           %s\n", result.Metadata.Method)
	fmt.Printf("Cache State:      %s\n", result.Metadata.CacheState)

	if result.Metadata.Scanned != "" {
		fmt.Printf("Classification:   %s\n", result.Metadata.Scanned)
	}

	fmt.Printf("Total Chars:      %d\n", result.Metadata.TotalChars)
	fmt.Printf("Returned Chars:   %d\n", result.Metadata.ReturnedChars)
	fmt.Printf("Content Length:   %d bytes\n", result.ContentLength)

	if result.Metadata.Truncated {
		fmt.Println("Truncated:        yes")
	}

	fmt.Println()
	fmt.Printf("Time Taken:       %v\n", result.TimeTaken)
	fmt.Printf("Request Time:     %s\n", result.RequestTime)

	if result.Content != "" {
		fmt.Println()
		fmt.Println("=== Content ===")
		fmt.Println()
		fmt.Printf("%s\n", result.Content)
	}
}
