package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docforge/internal/chunker"
	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/dgallion1/docforge/internal/listedit"
	"github.com/dgallion1/docforge/internal/parser"
	"github.com/dgallion1/docforge/internal/pdfmd"
	"github.com/dgallion1/docforge/internal/plaintext"
)

// errInvalid is returned by check when the document breaks an invariant.
var errInvalid = errors.New("document is invalid")

func (a *app) importCommand() *cobra.Command {
	var format, title string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a .md .txt .csv .html .pdf or .docx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.parserOptions()
			if err != nil {
				return err
			}
			p, err := parser.ForFile(args[0], opts)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			imp, err := p.Parse(bytes.NewReader(data), args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if title != "" {
				imp.Title = title
			}
			a.log.Info("imported", "file", args[0], "format", imp.Format, "blocks", len(imp.Document.Children))

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, imp)
			case "markdown":
				_, err := fmt.Fprintln(out, imp.Markdown)
				return err
			case "text":
				_, err := fmt.Fprintln(out, plaintext.FromDocument(imp.Document))
				return err
			}
			return fmt.Errorf("unknown output format %q", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output: json, markdown or text")
	cmd.Flags().StringVar(&title, "title", "", "override the document title")
	return cmd
}

func (a *app) pdf2mdCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "pdf2md [FILE...]",
		Short: "Rebuild markdown from extracted PDF page text",
		Long: `Each FILE holds the text of one page. Without files, pages are read
from stdin separated by form feeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := readPages(cmd, args)
			if err != nil {
				return err
			}
			pc, err := a.pdfConfig()
			if err != nil {
				return err
			}
			res := pdfmd.New(pc).Reconstruct(pages)
			a.log.Debug("reconstructed", "pages", res.Pages, "running_lines", len(res.RunningLines), "pagination_lines", res.PaginationLines)

			if !asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Markdown)
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				pdfmd.Result
				Document *doctree.Document `json:"document"`
			}{res, engine.Parse(res.Markdown)})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result with its parsed document as JSON")
	return cmd
}

func readPages(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) == 0 {
		data, err := readInput(cmd, "")
		if err != nil {
			return nil, err
		}
		text := strings.TrimSuffix(string(data), "\f")
		return strings.Split(text, "\f"), nil
	}
	pages := make([]string, 0, len(args))
	for _, name := range args {
		data, err := readInput(cmd, name)
		if err != nil {
			return nil, err
		}
		pages = append(pages, string(data))
	}
	return pages, nil
}

func (a *app) md2jsonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "md2json [FILE]",
		Short: "Parse markdown into editor document JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), engine.Parse(string(data)))
		},
	}
}

func (a *app) plainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plain [FILE]",
		Short: "Project editor document JSON to plain text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}
			text, err := plaintext.FromJSON(data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func (a *app) editCommand() *cobra.Command {
	var at, focus, format string
	cmd := &cobra.Command{
		Use:   "edit COMMAND [FILE]",
		Short: "Run a list command (toggle-list, indent, outdent, enter) on document JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, err := doctree.ParsePoint(at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			sel := doctree.Caret(anchor)
			if focus != "" {
				if sel.Focus, err = doctree.ParsePoint(focus); err != nil {
					return fmt.Errorf("--focus: %w", err)
				}
			}

			doc, err := readDocument(cmd, args[1:])
			if err != nil {
				return err
			}
			s := &listedit.Session{Doc: doc, Selection: &sel}
			handled, err := s.Apply(listedit.Command{Name: args[0], Format: doctree.Kind(format)})
			if err != nil {
				return err
			}
			a.log.Debug("edit", "command", args[0], "handled", handled)

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"document":  s.Doc,
				"selection": s.Selection,
				"handled":   handled,
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "caret as PATH:OFFSET, e.g. 0.1.0:3")
	cmd.Flags().StringVar(&focus, "focus", "", "selection focus as PATH:OFFSET; defaults to --at")
	cmd.Flags().StringVar(&format, "format", string(doctree.BulletedList), "list format for toggle-list")
	cmd.MarkFlagRequired("at")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [FILE]",
		Short: "Validate document JSON against the tree invariants",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			if err := doctree.Validate(doc); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return errInvalid
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

func (a *app) chunkCommand() *cobra.Command {
	var title string
	cfg := chunker.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "chunk [FILE]",
		Short: "Split document JSON into heading-aware chunks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			chunks := chunker.ChunkDocument(doc, title, cfg)
			if chunks == nil {
				chunks = []chunker.Chunk{}
			}
			return writeJSON(cmd.OutOrStdout(), chunks)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "document title stamped on every chunk")
	cmd.Flags().IntVar(&cfg.ChunkSize, "size", cfg.ChunkSize, "target chunk size in tokens")
	cmd.Flags().IntVar(&cfg.ChunkOverlap, "overlap", cfg.ChunkOverlap, "overlap between split chunks in tokens")
	cmd.Flags().IntVar(&cfg.MinChunk, "min", cfg.MinChunk, "sections below this many tokens merge forward")
	return cmd
}

func readDocument(cmd *cobra.Command, args []string) (*doctree.Document, error) {
	data, err := readInput(cmd, argOrEmpty(args))
	if err != nil {
		return nil, err
	}
	var doc doctree.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
