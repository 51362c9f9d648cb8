package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docforge/internal/markdown"
	"github.com/dgallion1/docforge/internal/pdfmd"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64
	RequestTimeout time.Duration

	// Job state
	JobTTL time.Duration

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int
	DefaultMinChunk     int

	// Markdown
	MarkdownEngine string

	// PDF
	PDFFallbackPdftotext bool
	HeuristicsFile       string

	// Per-threshold overrides; zero keeps the file or built-in value.
	PDFLabelMax    int
	PDFHeadingMin  int
	PDFHeadingMax  int
	PDFRepeatRatio float64
	PDFLongLine    int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCFORGE_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 60*time.Second),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 1500),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 200),
		DefaultMinChunk:     envInt("DEFAULT_MIN_CHUNK", 100),

		MarkdownEngine: envOr("MARKDOWN_ENGINE", string(markdown.EngineHeuristic)),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		HeuristicsFile:       os.Getenv("HEURISTICS_FILE"),

		PDFLabelMax:    envInt("PDF_LABEL_MAX", 0),
		PDFHeadingMin:  envInt("PDF_HEADING_MIN", 0),
		PDFHeadingMax:  envInt("PDF_HEADING_MAX", 0),
		PDFRepeatRatio: envFloat("PDF_REPEAT_RATIO", 0),
		PDFLongLine:    envInt("PDF_LONG_LINE", 0),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1500
	}
	if cfg.DefaultChunkOverlap <= 0 {
		cfg.DefaultChunkOverlap = 200
	}
	if cfg.DefaultMinChunk <= 0 {
		cfg.DefaultMinChunk = 100
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCFORGE_API_KEY is required")
	}
	if _, err := markdown.ParseEngine(c.MarkdownEngine); err != nil {
		return fmt.Errorf("MARKDOWN_ENGINE: %w", err)
	}
	if c.PDFRepeatRatio < 0 || c.PDFRepeatRatio > 1 {
		return fmt.Errorf("PDF_REPEAT_RATIO must be between 0 and 1")
	}
	if _, err := c.PDFConfig(); err != nil {
		return err
	}
	return nil
}

// Engine returns the configured markdown engine, falling back to the
// heuristic one.
func (c Config) Engine() markdown.Engine {
	e, err := markdown.ParseEngine(c.MarkdownEngine)
	if err != nil {
		return markdown.EngineHeuristic
	}
	return e
}

// PDFConfig returns the page reconstruction heuristics: the heuristics
// file if one is set, then the per-threshold environment overrides.
func (c Config) PDFConfig() (pdfmd.Config, error) {
	var pc pdfmd.Config
	if c.HeuristicsFile != "" {
		var err error
		if pc, err = ReadHeuristics(c.HeuristicsFile); err != nil {
			return pdfmd.Config{}, err
		}
	}
	if c.PDFLabelMax > 0 {
		pc.LabelMaxRunes = c.PDFLabelMax
	}
	if c.PDFHeadingMin > 0 {
		pc.HeadingMinRunes = c.PDFHeadingMin
	}
	if c.PDFHeadingMax > 0 {
		pc.HeadingMaxRunes = c.PDFHeadingMax
	}
	if c.PDFRepeatRatio > 0 {
		pc.RepeatRatio = c.PDFRepeatRatio
	}
	if c.PDFLongLine > 0 {
		pc.LongLineWidth = c.PDFLongLine
	}
	return pc, nil
}

// ReadHeuristics loads a YAML file of PDF heuristics. Keys it omits keep
// their defaults.
func ReadHeuristics(path string) (pdfmd.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pdfmd.Config{}, fmt.Errorf("read heuristics file: %w", err)
	}
	var pc pdfmd.Config
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return pdfmd.Config{}, fmt.Errorf("parse heuristics file %s: %w", path, err)
	}
	return pc, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
