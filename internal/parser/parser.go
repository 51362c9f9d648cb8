package parser

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/dgallion1/docforge/internal/markdown"
	"github.com/dgallion1/docforge/internal/pdfmd"
)

// Import is a source file converted to markdown and to the editor tree.
type Import struct {
	Title        string            `json:"title"`
	Format       string            `json:"format"`
	Markdown     string            `json:"markdown"`
	Document     *doctree.Document `json:"document"`
	Pages        int               `json:"pages,omitempty"`
	RunningLines []string          `json:"running_lines,omitempty"`
}

// Parser converts raw document bytes into an Import.
type Parser interface {
	Parse(r io.Reader, filename string) (*Import, error)
}

// Options tune the parsers returned by ForFile.
type Options struct {
	// Engine parses the markdown produced by converters.
	Engine markdown.Engine
	// PDF holds the page reconstruction heuristics.
	PDF pdfmd.Config
	// FallbackPdftotext shells out to pdftotext when the Go extractors find
	// no text.
	FallbackPdftotext bool
	Logger            *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{Engine: opts.Engine}, nil
	case ".csv":
		return &CSVParser{Engine: opts.Engine}, nil
	case ".html", ".htm":
		return &HTMLParser{Engine: opts.Engine}, nil
	case ".pdf":
		return &PDFParser{
			Config:            opts.PDF,
			FallbackPdftotext: opts.FallbackPdftotext,
			Engine:            opts.Engine,
			Logger:            opts.logger(),
		}, nil
	case ".docx":
		return &DOCXParser{Engine: opts.Engine}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Title derives a document title from a file name.
func Title(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(title) == "" || title == "." {
		return "Untitled"
	}
	return title
}

// format names the import by extension, without the dot.
func format(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "htm" {
		return "html"
	}
	if ext == "markdown" {
		return "md"
	}
	return ext
}

// spool copies r to a temp file for libraries that need random access.
// The caller removes the returned path.
func spool(r io.Reader, pattern string) (string, int64, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), size, nil
}

// fromMarkdown finishes an import whose converter produced markdown.
func fromMarkdown(filename, md string, engine markdown.Engine) *Import {
	return &Import{
		Title:    Title(filename),
		Format:   format(filename),
		Markdown: md,
		Document: engine.Parse(md),
	}
}
