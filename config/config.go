package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v2"
)

// Config represents the top-level configuration for the PDF text service.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Default DefaultConfig `yaml:"default"`
	Roots   []RootConfig  `yaml:"roots"`
}

// New returns a new Config with sensible defaults and no allowed roots.
func New() *Config {
	return &Config{
		Default: DefaultConfig{},
		Roots:   []RootConfig{},
	}
}

// PathsConfig defines where documents may be read from.
type PathsConfig struct {
	AllowedRoots []string `yaml:"allowed_roots"`
}

// DefaultConfig contains settings applied to all documents unless a root override matches.
type DefaultConfig struct {
	Extract ExtractConfig `yaml:"extract"`
	OCR     OCRConfig     `yaml:"ocr"`
	Cache   CacheConfig   `yaml:"cache"`
}

// RootConfig overrides settings for documents under a matching directory.
type RootConfig struct {
	Pattern string         `yaml:"pattern"`
	Extract *ExtractConfig `yaml:"extract,omitempty"`
	OCR     *OCRConfig     `yaml:"ocr,omitempty"`
}

// ResolvedConfig is the final merged configuration for a specific document path.
type ResolvedConfig struct {
	Extract ExtractConfig
	OCR     OCRConfig
	Cache   CacheConfig
}

// GetConfigForPath returns the merged configuration for a document path.
func (c *Config) GetConfigForPath(path string) ResolvedConfig {
	resolved := ResolvedConfig{
		Extract: c.Default.Extract,
		OCR:     c.Default.OCR,
		Cache:   c.Default.Cache,
	}
	for _, root := range c.Roots {
		if matchRoot(path, root.Pattern) {
			if root.Extract != nil {
				resolved.Extract = mergeExtract(resolved.Extract, *root.Extract)
			}
			if root.OCR != nil {
				resolved.OCR = mergeOCR(resolved.OCR, *root.OCR)
			}
		}
	}
	return resolved
}

// ExtractConfig defines scan detection and output shaping.
type ExtractConfig struct {
	SamplePages     int `yaml:"sample_pages,omitempty"`
	MinCharsPerPage int `yaml:"min_chars_per_page,omitempty"`
	TruncateChars   int `yaml:"truncate_chars,omitempty"`
}

// GetSamplePages returns the scan-detection sample size with a default of 3.
func (e *ExtractConfig) GetSamplePages() int {
	if e.SamplePages > 0 {
		return e.SamplePages
	}
	return 3
}

// GetMinCharsPerPage returns the text-density threshold with a default of 50.
func (e *ExtractConfig) GetMinCharsPerPage() int {
	if e.MinCharsPerPage > 0 {
		return e.MinCharsPerPage
	}
	return 50
}

// GetTruncateChars returns the output truncation limit with a default of 15000.
func (e *ExtractConfig) GetTruncateChars() int {
	if e.TruncateChars > 0 {
		return e.TruncateChars
	}
	return 15000
}

// OCRConfig defines how pages are rasterized and recognized.
type OCRConfig struct {
	Languages      string        `yaml:"languages,omitempty"`
	DPI            int           `yaml:"dpi,omitempty"`
	PDFToPPMBin    string        `yaml:"pdftoppm_bin,omitempty"`
	TesseractBin   string        `yaml:"tesseract_bin,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	MaxConcurrent  int           `yaml:"max_concurrent,omitempty"`
	PagesPerSecond float64       `yaml:"pages_per_second,omitempty"`
}

// GetLanguages returns the tesseract language stack with a default of "eng".
func (o *OCRConfig) GetLanguages() string {
	if o.Languages != "" {
		return o.Languages
	}
	return "eng"
}

// GetDPI returns the rasterization resolution with a default of 300.
func (o *OCRConfig) GetDPI() int {
	if o.DPI > 0 {
		return o.DPI
	}
	return 300
}

// GetPDFToPPMBin returns the pdftoppm binary name with a default of "pdftoppm".
func (o *OCRConfig) GetPDFToPPMBin() string {
	if o.PDFToPPMBin != "" {
		return o.PDFToPPMBin
	}
	return "pdftoppm"
}

// GetTesseractBin returns the tesseract binary name with a default of "tesseract".
func (o *OCRConfig) GetTesseractBin() string {
	if o.TesseractBin != "" {
		return o.TesseractBin
	}
	return "tesseract"
}

// GetMaxConcurrent returns the per-request OCR worker bound with a default of 4.
func (o *OCRConfig) GetMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return 4
}

// GetTimeout returns the per-document OCR deadline (0 means none).
func (o *OCRConfig) GetTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 0
}

// CacheConfig defines the in-memory extraction cache and the persistent OCR tier.
type CacheConfig struct {
	Capacity    int  `yaml:"capacity,omitempty"`
	DisableDisk bool `yaml:"disable_disk,omitempty"`
}

// GetCapacity returns the in-memory cache capacity with a default of 10.
func (c *CacheConfig) GetCapacity() int {
	if c.Capacity > 0 {
		return c.Capacity
	}
	return 10
}

// DiskEnabled returns whether persistent OCR cache files are written and read.
func (c *CacheConfig) DiskEnabled() bool {
	return !c.DisableDisk
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for errors and conflicts.
func (c *Config) Validate() error {
	if len(c.Paths.AllowedRoots) == 0 {
		return fmt.Errorf("paths.allowed_roots: at least one root directory is required")
	}
	for i, root := range c.Paths.AllowedRoots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("paths.allowed_roots[%d]: root cannot be empty", i)
		}
	}

	if err := validateExtract("default", c.Default.Extract); err != nil {
		return err
	}
	if err := validateOCR("default", c.Default.OCR); err != nil {
		return err
	}
	if c.Default.Cache.Capacity < 0 {
		return fmt.Errorf("default.cache: capacity cannot be negative")
	}

	for i, root := range c.Roots {
		if root.Pattern == "" {
			return fmt.Errorf("roots[%d]: pattern cannot be empty", i)
		}

		rootCtx := fmt.Sprintf("roots[%d](%s)", i, root.Pattern)

		if root.Extract != nil {
			if err := validateExtract(rootCtx, *root.Extract); err != nil {
				return err
			}
		}
		if root.OCR != nil {
			if err := validateOCR(rootCtx, *root.OCR); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateExtract(ctx string, e ExtractConfig) error {
	if e.SamplePages < 0 {
		return fmt.Errorf("%s.extract: sample_pages cannot be negative", ctx)
	}
	if e.MinCharsPerPage < 0 {
		return fmt.Errorf("%s.extract: min_chars_per_page cannot be negative", ctx)
	}
	if e.TruncateChars < 0 {
		return fmt.Errorf("%s.extract: truncate_chars cannot be negative", ctx)
	}
	return nil
}

func validateOCR(ctx string, o OCRConfig) error {
	if o.DPI < 0 {
		return fmt.Errorf("%s.ocr: dpi cannot be negative", ctx)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%s.ocr: timeout cannot be negative", ctx)
	}
	if o.MaxConcurrent < 0 {
		return fmt.Errorf("%s.ocr: max_concurrent cannot be negative", ctx)
	}
	if o.PagesPerSecond < 0 {
		return fmt.Errorf("%s.ocr: pages_per_second cannot be negative", ctx)
	}
	return nil
}

// matchRoot reports whether path sits at or under the pattern directory.
// Both sides are cleaned; the boundary is a path separator, so /docs does
// not match /docs-archive.
func matchRoot(path, pattern string) bool {
	cleanPath := filepath.Clean(path)
	cleanPattern := filepath.Clean(pattern)

	if cleanPath == cleanPattern {
		return true
	}
	return strings.HasPrefix(cleanPath, cleanPattern+string(filepath.Separator))
}

func mergeExtract(base, override ExtractConfig) ExtractConfig {
	result := base

	if override.SamplePages != 0 {
		result.SamplePages = override.SamplePages
	}
	if override.MinCharsPerPage != 0 {
		result.MinCharsPerPage = override.MinCharsPerPage
	}
	if override.TruncateChars != 0 {
		result.TruncateChars = override.TruncateChars
	}

	return result
}

func mergeOCR(base, override OCRConfig) OCRConfig {
	result := base

	if override.Languages != "" {
		result.Languages = override.Languages
	}
	if override.DPI != 0 {
		result.DPI = override.DPI
	}
	if override.PDFToPPMBin != "" {
		result.PDFToPPMBin = override.PDFToPPMBin
	}
	if override.TesseractBin != "" {
		result.TesseractBin = override.TesseractBin
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.MaxConcurrent != 0 {
		result.MaxConcurrent = override.MaxConcurrent
	}
	if override.PagesPerSecond != 0 {
		result.PagesPerSecond = override.PagesPerSecond
	}

	return result
}
