package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/parser"
	"github.com/dgallion1/docrender/internal/present"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	logLevel    string
	format      string
	outDir      string
	jobs        int
	noPdftotext bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "docrender",
		Short: "Render contract documents",
		Long: `Render contract documents into numbered, display-ready output.

Input may be the native JSON tree, YAML, Markdown, HTML, DOCX, PDF or plain
text. Output formats are listed by 'docrender formats'.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.noPdftotext, "no-pdftotext", false, "never fall back to the pdftotext binary for PDFs")

	renderCmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render documents to stdout or an output directory",
		Long: `Render one or more documents.

With no file, or "-", a JSON document is read from stdin. Several files are
written to stdout in order unless --out-dir is given, in which case each
result is written next to the others as <name><ext>, converting up to
--jobs files at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}
	renderCmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (default ansi on a terminal, text otherwise)")
	renderCmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "write one output file per input into this directory")
	renderCmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "files converted concurrently with --out-dir")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Print the document tree imported from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}

	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported input extensions and output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormats(cmd)
		},
	}

	root.AddCommand(renderCmd, importCmd, formatsCmd)
	return root
}

func newLogger(cmd *cobra.Command, opts *options) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func runRender(cmd *cobra.Command, opts *options, args []string) error {
	log := newLogger(cmd, opts)

	format := opts.format
	if format == "" {
		format = defaultFormat(cmd.OutOrStdout())
	}
	format, err := present.Canonical(format)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{stdinArg}
	}
	if n := countStdin(args); n > 1 {
		return fmt.Errorf("stdin (%s) may be given only once", stdinArg)
	} else if n == 1 && opts.outDir != "" {
		return fmt.Errorf("stdin (%s) has no file name to write under --out-dir", stdinArg)
	}

	if opts.outDir == "" {
		for _, path := range args {
			var out []byte
			var err error
			if path == stdinArg {
				out, err = convertStdin(cmd, format)
			} else {
				out, err = convertFile(path, format, opts)
			}
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
		}
		return nil
	}

	dests, err := outputPaths(args, opts.outDir, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.jobs, 1))
	for i, path := range args {
		dest := dests[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out, err := convertFile(path, format, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
			log.Info("rendered", "input", path, "output", dest, "bytes", len(out))
			return nil
		})
	}
	return g.Wait()
}

const stdinArg = "-"

func countStdin(args []string) int {
	n := 0
	for _, a := range args {
		if a == stdinArg {
			n++
		}
	}
	return n
}

func convertStdin(cmd *cobra.Command, format string) ([]byte, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return convertSource(doctree.Load(bytes.NewReader(data)), format)
}

// outputPaths maps each input to its file under outDir. Inputs that would
// land on the same file are rejected before anything is written.
func outputPaths(args []string, outDir, format string) ([]string, error) {
	dests := make([]string, len(args))
	seen := make(map[string]string, len(args))
	for i, path := range args {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dest := filepath.Join(outDir, base+present.Extension(format))
		if prev, ok := seen[dest]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s", prev, path, dest)
		}
		seen[dest] = path
		dests[i] = dest
	}
	return dests, nil
}

func runImport(cmd *cobra.Command, opts *options, path string) error {
	doc, err := importFile(path, opts)
	if err != nil {
		return err
	}
	return doctree.Encode(cmd.OutOrStdout(), doc)
}

func runFormats(cmd *cobra.Command) error {
	exts := make([]string, 0, len(parser.SupportedExtensions))
	for ext := range parser.SupportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "input:  %s\n", strings.Join(exts, " "))
	fmt.Fprintf(w, "output: %s\n", strings.Join(present.Formats(), " "))
	return nil
}

// defaultFormat picks terminal output when w is a terminal.
func defaultFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "ansi"
	}
	return "text"
}

func importFile(path string, opts *options) (doctree.Document, error) {
	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: !opts.noPdftotext})
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func convertFile(path, format string, opts *options) ([]byte, error) {
	doc, err := importFile(path, opts)
	if err != nil {
		return nil, err
	}
	return convertSource(doc, format)
}

func convertSource(doc doctree.Document, format string) ([]byte, error) {
	pr, err := present.ForFormat(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pr.Present(&buf, render.Document(doc)); err != nil {
		return nil, fmt.Errorf("present %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
