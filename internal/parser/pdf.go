package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docforge/internal/markdown"
	"github.com/dgallion1/docforge/internal/pdfmd"
)

var errNoText = errors.New("no text found")

// PDFParser handles PDF files. Page text comes from the Go extractors,
// falling back to pdftotext when enabled, and is rebuilt into markdown by
// the page reconstructor.
type PDFParser struct {
	Config            pdfmd.Config
	FallbackPdftotext bool
	Engine            markdown.Engine
	Logger            *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Import, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmpPath, _, err := spool(r, "docforge-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	pages, err := p.extract(log, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	res := pdfmd.New(p.Config).Reconstruct(pages)
	log.Debug("pdf reconstructed",
		"file", filename,
		"pages", res.Pages,
		"running_lines", len(res.RunningLines),
		"pagination_lines", res.PaginationLines,
	)

	imp := fromMarkdown(filename, res.Markdown, p.Engine)
	imp.Pages = res.Pages
	imp.RunningLines = res.RunningLines
	return imp, nil
}

// extract tries each extractor in turn until one yields text.
func (p *PDFParser) extract(log *slog.Logger, path string) ([]string, error) {
	type extractor struct {
		name string
		fn   func(string) ([]string, error)
	}
	chain := []extractor{
		{"ledongthuc", extractPDFPages},
		{"pdfcpu", extractPdfcpuPages},
	}
	if p.FallbackPdftotext {
		chain = append(chain, extractor{"pdftotext", extractPdftotext})
	}

	var errs []error
	for _, ex := range chain {
		pages, err := ex.fn(path)
		if err == nil && !hasText(pages) {
			err = errNoText
		}
		if err == nil {
			log.Debug("pdf text extracted", "extractor", ex.name, "pages", len(pages))
			return pages, nil
		}
		log.Debug("pdf extractor failed", "extractor", ex.name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", ex.name, err))
	}
	return nil, errors.Join(errs...)
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// extractPDFPages reads page text row by row, so line structure survives
// for the reconstructor.
func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// Fall back to the unstructured text of this page.
			text, perr := page.GetPlainText(nil)
			if perr != nil {
				pages = append(pages, "")
				continue
			}
			pages = append(pages, text)
			continue
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var parts []string
			for _, t := range row.Content {
				parts = append(parts, t.S)
			}
			lines = append(lines, joinFragments(parts))
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages, nil
}

// joinFragments joins the text fragments of one row. Fragments meeting
// between two Han characters are joined directly; others get a space
// unless one side already has one.
func joinFragments(parts []string) string {
	var b strings.Builder
	for _, s := range parts {
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			prev, _ := utf8.DecodeLastRuneInString(b.String())
			next, _ := utf8.DecodeRuneInString(s)
			switch {
			case unicode.IsSpace(prev) || unicode.IsSpace(next):
			case unicode.Is(unicode.Han, prev) && unicode.Is(unicode.Han, next):
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteString(s)
	}
	return b.String()
}

func extractPdftotext(path string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext ends the last
// page with one too, which does not start another page.
func splitPages(text string) []string {
	text = strings.TrimSuffix(text, "\f")
	return strings.Split(text, "\f")
}
