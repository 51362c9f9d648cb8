// Package cli is the docforge command-line front end.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/docforge/internal/config"
	"github.com/dgallion1/docforge/internal/markdown"
	"github.com/dgallion1/docforge/internal/parser"
	"github.com/dgallion1/docforge/internal/pdfmd"
)

// app carries state shared by the subcommands of one root command.
type app struct {
	v   *viper.Viper
	log *slog.Logger
}

// NewRootCommand builds the docforge command tree. Flags may also be set
// through DOCFORGE_* environment variables, e.g. DOCFORGE_LOG_LEVEL.
func NewRootCommand(version string) *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("docforge")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "docforge",
		Short:         "Convert documents between markdown, PDF text and the editor tree",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("engine", string(markdown.EngineHeuristic), "markdown engine: heuristic or commonmark")
	pf.String("heuristics", "", "YAML file of PDF reconstruction heuristics")
	pf.Bool("pdftotext", true, "fall back to pdftotext when PDF text extraction finds nothing")
	a.v.BindPFlags(pf)

	root.AddCommand(
		a.importCommand(),
		a.pdf2mdCommand(),
		a.md2jsonCommand(),
		a.plainCommand(),
		a.editCommand(),
		a.checkCommand(),
		a.chunkCommand(),
	)
	return root
}

// Execute runs the command tree and reports errors on stderr.
func Execute(version string) int {
	root := NewRootCommand(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "docforge:", err)
		return 1
	}
	return 0
}

func (a *app) setupLogger(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	a.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) engine() (markdown.Engine, error) {
	return markdown.ParseEngine(a.v.GetString("engine"))
}

func (a *app) pdfConfig() (pdfmd.Config, error) {
	path := a.v.GetString("heuristics")
	if path == "" {
		return pdfmd.Config{}, nil
	}
	return config.ReadHeuristics(path)
}

func (a *app) parserOptions() (parser.Options, error) {
	engine, err := a.engine()
	if err != nil {
		return parser.Options{}, err
	}
	pc, err := a.pdfConfig()
	if err != nil {
		return parser.Options{}, err
	}
	return parser.Options{
		Engine:            engine,
		PDF:               pc,
		FallbackPdftotext: a.v.GetBool("pdftotext"),
		Logger:            a.log,
	}, nil
}

// readInput returns the named file, or stdin when name is empty or "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
