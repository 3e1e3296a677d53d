package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kpumuk/doc-weaver/internal/config"
	"github.com/kpumuk/doc-weaver/internal/doclint"
	"github.com/kpumuk/doc-weaver/internal/docyaml"
)

const (
	exitOK       = 0
	exitIssues   = 1
	exitInternal = 3

	outputFormatText = "text"
	outputFormatJSON = "json"
)

type cliOptions struct {
	stdin          bool
	assumeFilename string
	format         string
	configPath     string
	maxWidth       int
	paths          []string
}

type diagnosticJSON struct {
	File      string `json:"file"`
	Code      string `json:"code"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Node      int    `json:"node"`
	SpanStart *int   `json:"spanStart,omitempty"`
	SpanEnd   *int   `json:"spanEnd,omitempty"`
}

type fileDiagnostics struct {
	name  string
	diags []doclint.Diagnostic
}

var defaultLintRunner = doclint.NewDefaultRunner()

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args, environ []string) int {
	opts, usage, err := parseArgs(args)
	if err != nil {
		writef(stderr, "doclint: %v\n\n%s", err, usage)
		return exitInternal
	}

	cfg, err := config.Load(config.LoadOptions{ConfigPath: opts.configPath, Environ: config.EnvironMap(environ)})
	if err != nil {
		writef(stderr, "doclint: %v\n", err)
		return exitInternal
	}
	if opts.maxWidth >= 0 {
		cfg.MaxWidth = opts.maxWidth
	}
	base := cfg.PrinterOptions()

	inputs, err := readInputs(stdin, opts)
	if err != nil {
		writef(stderr, "doclint: %v\n", err)
		return exitInternal
	}

	var results []fileDiagnostics
	issues := false
	for _, in := range inputs {
		f, err := docyaml.Decode(in.src)
		if err != nil {
			writef(stderr, "doclint: %s: %v\n", in.name, err)
			return exitInternal
		}
		diags, err := defaultLintRunner.Run(ctx, &f.Doc, config.ApplyOverrides(base, f.Options))
		if err != nil {
			writef(stderr, "doclint: lint failed: %v\n", err)
			return exitInternal
		}
		issues = issues || len(diags) > 0
		results = append(results, fileDiagnostics{name: in.name, diags: diags})
	}
	if !issues {
		return exitOK
	}

	if err := writeDiagnosticsOutput(opts.format, stdout, stderr, results); err != nil {
		writef(stderr, "doclint: %v\n", err)
		return exitInternal
	}
	return exitIssues
}

func parseArgs(args []string) (cliOptions, string, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("doclint", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&opts.stdin, "stdin", false, "read input from stdin")
	fs.StringVar(&opts.assumeFilename, "assume-filename", "", "name used for the stdin document in diagnostics")
	fs.StringVar(&opts.format, "format", outputFormatText, "diagnostic output format: text|json")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.IntVar(&opts.maxWidth, "max-width", -1, "maximum line width used by overlong-text (default from config)")

	usage := cliUsage(fs)
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, usage, err
	}

	if !isSupportedOutputFormat(opts.format) {
		return cliOptions{}, usage, errors.New("--format must be one of: text, json")
	}

	rest := fs.Args()
	switch {
	case opts.stdin && len(rest) > 0:
		return cliOptions{}, usage, errors.New("positional file paths are not allowed with --stdin")
	case !opts.stdin && len(rest) == 0:
		return cliOptions{}, usage, errors.New("at least one input file path is required (or use --stdin)")
	}
	opts.paths = rest
	return opts, usage, nil
}

func cliUsage(fs *flag.FlagSet) string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	b.WriteString("  doclint [flags] path/to/doc.yaml...\n")
	b.WriteString("  doclint --stdin [--assume-filename doc.yaml] [flags]\n\n")
	b.WriteString("Flags:\n")
	fs.VisitAll(func(f *flag.Flag) {
		writef(&b, "  --%s\t%s\n", f.Name, f.Usage)
	})
	return b.String()
}

type input struct {
	name string
	src  []byte
}

func readInputs(stdin io.Reader, opts cliOptions) ([]input, error) {
	if opts.stdin {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		name := opts.assumeFilename
		if name == "" {
			name = "stdin.yaml"
		}
		return []input{{name: name, src: src}}, nil
	}
	inputs := make([]input, 0, len(opts.paths))
	for _, path := range opts.paths {
		//nolint:gosec // CLI intentionally reads user-provided file paths.
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, input{name: path, src: src})
	}
	return inputs, nil
}

func isSupportedOutputFormat(v string) bool {
	switch v {
	case outputFormatText, outputFormatJSON:
		return true
	default:
		return false
	}
}

func writeDiagnosticsOutput(format string, stdout, stderr io.Writer, results []fileDiagnostics) error {
	switch format {
	case outputFormatText:
		for _, r := range results {
			writeDiagnostics(stderr, r.name, r.diags)
		}
		return nil
	case outputFormatJSON:
		return writeJSONDiagnostics(stdout, results)
	default:
		return fmt.Errorf("unsupported --format %q", format)
	}
}

func writeDiagnostics(w io.Writer, name string, diags []doclint.Diagnostic) {
	for _, d := range diags {
		loc := d.Path
		if !d.Span.IsZero() {
			loc += "@" + d.Span.String()
		}
		writef(w, "%s:%s: %s: %s: %s\n", name, loc, diagnosticSeverityLetter(d.Severity), d.Code, d.Message)
	}
}

func writeJSONDiagnostics(w io.Writer, results []fileDiagnostics) error {
	payload := make([]diagnosticJSON, 0, 8)
	for _, r := range results {
		for _, d := range r.diags {
			item := diagnosticJSON{
				File:     r.name,
				Code:     string(d.Code),
				Severity: d.Severity.String(),
				Message:  d.Message,
				Path:     d.Path,
				Node:     d.Node,
			}
			if !d.Span.IsZero() {
				start, end := int(d.Span.Start), int(d.Span.End)
				item.SpanStart, item.SpanEnd = &start, &end
			}
			payload = append(payload, item)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func diagnosticSeverityLetter(s doclint.Severity) string {
	switch s {
	case doclint.SeverityError:
		return "E"
	case doclint.SeverityWarning:
		return "W"
	case doclint.SeverityInfo:
		return "I"
	default:
		return "E"
	}
}

func writef(w io.Writer, format string, args ...any) {
	//nolint:gosec // Terminal output helper; format strings are internal callsite constants.
	_, _ = io.WriteString(w, fmt.Sprintf(format, args...))
}
