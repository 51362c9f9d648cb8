package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docforge/internal/markdown"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DOCFORGE_API_KEY", "MAX_UPLOAD_BYTES", "MARKDOWN_ENGINE", "HEURISTICS_FILE", "REQUEST_TIMEOUT", "WORKER_COUNT", "MAX_QUEUE_SIZE", "JOB_TTL"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("expected 4 workers and queue of 100, got %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %v", cfg.JobTTL)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Engine() != markdown.EngineHeuristic {
		t.Errorf("expected heuristic engine, got %q", cfg.Engine())
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without DOCFORGE_API_KEY")
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DEFAULT_CHUNK_SIZE", "lots")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	cfg := Load()
	if cfg.DefaultChunkSize != 1500 {
		t.Errorf("expected default chunk size, got %d", cfg.DefaultChunkSize)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected default upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestValidateEngine(t *testing.T) {
	t.Setenv("DOCFORGE_API_KEY", "secret")
	t.Setenv("MARKDOWN_ENGINE", "commonmark")
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine() != markdown.EngineCommonMark {
		t.Errorf("expected commonmark engine, got %q", cfg.Engine())
	}

	cfg.MarkdownEngine = "pandoc"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestPDFConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	data := "heading_max_runes: 40\nrepeat_ratio: 0.5\nlong_line_width: 90\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HEURISTICS_FILE", path)
	t.Setenv("PDF_LONG_LINE", "100")
	cfg := Load()

	pc, err := cfg.PDFConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.HeadingMaxRunes != 40 {
		t.Errorf("expected heading max from file, got %d", pc.HeadingMaxRunes)
	}
	if pc.RepeatRatio != 0.5 {
		t.Errorf("expected repeat ratio from file, got %v", pc.RepeatRatio)
	}
	if pc.LongLineWidth != 100 {
		t.Errorf("expected environment override to win, got %d", pc.LongLineWidth)
	}
	if pc.LabelMaxRunes != 0 {
		t.Errorf("expected unset keys to stay zero, got %d", pc.LabelMaxRunes)
	}
}

func TestPDFConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("heading_max_runes: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Config{APIKey: "k", HeuristicsFile: path}
	if _, err := cfg.PDFConfig(); err == nil {
		t.Error("expected parse error")
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate to report the heuristics file")
	}

	cfg.HeuristicsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.PDFConfig(); err == nil {
		t.Error("expected error for missing file")
	}
}
