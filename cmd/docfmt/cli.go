package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kpumuk/doc-weaver/internal/config"
	"github.com/kpumuk/doc-weaver/internal/doclint"
	"github.com/kpumuk/doc-weaver/internal/docyaml"
	"github.com/kpumuk/doc-weaver/internal/logging"
	"github.com/kpumuk/doc-weaver/internal/printer"
	"github.com/kpumuk/doc-weaver/internal/watch"
)

const (
	exitOK       = 0
	exitCheck    = 1
	exitRefused  = 2
	exitInternal = 3
)

type cliOptions struct {
	configPath     string
	envFile        string
	check          bool
	lint           bool
	dumpDoc        bool
	stdin          bool
	watch          bool
	outDir         string
	assumeFilename string
	logLevel       string

	maxWidth        int
	indentWidth     int
	useTabs         bool
	tabWidth        int
	trailingNewline bool
	newline         string
	workers         int

	// set holds the names of flags given on the command line.
	set   map[string]bool
	paths []string
}

type input struct {
	name string
	src  []byte
}

type app struct {
	opts   cliOptions
	cfg    *config.Config
	stdout io.Writer
	term   *logging.Terminal
	log    *log.Logger
	lint   *doclint.Runner
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args, environ []string) int {
	opts, usage, err := parseArgs(args)
	if err != nil {
		writef(stderr, "docfmt: %v\n\n%s", err, usage)
		return exitInternal
	}

	cfg, err := loadConfig(opts, environ)
	if err != nil {
		writef(stderr, "docfmt: %v\n", err)
		return exitInternal
	}

	term := logging.NewTerminal(stderr)
	logger, err := logging.New(term, cfg.LogLevel)
	if err != nil {
		writef(stderr, "docfmt: %v\n", err)
		return exitInternal
	}

	a := &app{
		opts:   opts,
		cfg:    cfg,
		stdout: stdout,
		term:   term,
		log:    logger,
		lint:   doclint.NewDefaultRunner(),
	}

	if opts.stdin {
		src, err := io.ReadAll(stdin)
		if err != nil {
			a.errorf("read stdin: %v", err)
			return exitInternal
		}
		name := opts.assumeFilename
		if name == "" {
			name = "stdin.yaml"
		}
		return a.process(ctx, []input{{name: name, src: src}})
	}

	code := a.processFiles(ctx, opts.paths)
	if !opts.watch {
		return code
	}
	return a.watch(ctx, code)
}

func parseArgs(args []string) (cliOptions, string, error) {
	defaults := config.Defaults()
	var opts cliOptions
	fs := flag.NewFlagSet("docfmt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.envFile, "env-file", "", "dotenv file with DOCWEAVER_* settings")
	fs.IntVar(&opts.maxWidth, "max-width", defaults.MaxWidth, "maximum line width")
	fs.IntVar(&opts.indentWidth, "indent-width", defaults.IndentWidth, "spaces per indentation level")
	fs.BoolVar(&opts.useTabs, "use-tabs", defaults.UseTabs, "indent with tabs")
	fs.IntVar(&opts.tabWidth, "tab-width", defaults.TabWidth, "column width of a tab")
	fs.BoolVar(&opts.trailingNewline, "trailing-newline", defaults.TrailingNewline, "end output with exactly one newline")
	fs.StringVar(&opts.newline, "newline", defaults.Newline, "line terminator: lf|crlf")
	fs.IntVar(&opts.workers, "workers", defaults.Workers, "documents rendered concurrently (0 = one per CPU)")
	fs.BoolVar(&opts.check, "check", false, "exit non-zero if any rendered line exceeds the maximum width")
	fs.BoolVar(&opts.lint, "lint", false, "lint documents first and refuse to render those with errors")
	fs.BoolVar(&opts.dumpDoc, "dump-doc", false, "write decoded documents in canonical form instead of rendering")
	fs.StringVar(&opts.outDir, "out-dir", "", "write each result to <out-dir>/<name>.txt")
	fs.BoolVar(&opts.watch, "watch", false, "render again whenever an input file changes")
	fs.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "log level: debug|info|warning|error")
	fs.BoolVar(&opts.stdin, "stdin", false, "read a document from stdin")
	fs.StringVar(&opts.assumeFilename, "assume-filename", "", "name used for the stdin document in messages")

	usage := cliUsage(fs)
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, usage, err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.stdin && opts.watch {
		return cliOptions{}, usage, errors.New("--watch and --stdin may not be used together")
	}
	if opts.check && opts.dumpDoc {
		return cliOptions{}, usage, errors.New("--check and --dump-doc may not be used together")
	}
	if opts.check && opts.outDir != "" {
		return cliOptions{}, usage, errors.New("--check and --out-dir may not be used together")
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
	b.WriteString("  docfmt [flags] path/to/doc.yaml...\n")
	b.WriteString("  docfmt --stdin [--assume-filename doc.yaml] [flags]\n\n")
	b.WriteString("Flags:\n")
	fs.VisitAll(func(f *flag.Flag) {
		writef(&b, "  --%s\t%s\n", f.Name, f.Usage)
	})
	return b.String()
}

func loadConfig(opts cliOptions, environ []string) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigPath:  opts.configPath,
		EnvFilePath: opts.envFile,
		Environ:     config.EnvironMap(environ),
	})
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly given flags over cfg, so flag defaults never
// mask file or environment settings.
func applyFlags(cfg *config.Config, opts cliOptions) {
	if opts.set["max-width"] {
		cfg.MaxWidth = opts.maxWidth
	}
	if opts.set["indent-width"] {
		cfg.IndentWidth = opts.indentWidth
	}
	if opts.set["use-tabs"] {
		cfg.UseTabs = opts.useTabs
	}
	if opts.set["tab-width"] {
		cfg.TabWidth = opts.tabWidth
	}
	if opts.set["trailing-newline"] {
		cfg.TrailingNewline = opts.trailingNewline
	}
	if opts.set["newline"] {
		cfg.Newline = opts.newline
	}
	if opts.set["workers"] {
		cfg.Workers = opts.workers
	}
	if opts.set["log-level"] {
		cfg.LogLevel = opts.logLevel
	}
}

func (a *app) processFiles(ctx context.Context, paths []string) int {
	code := exitOK
	inputs := make([]input, 0, len(paths))
	for _, path := range paths {
		//nolint:gosec // CLI intentionally reads user-provided file paths.
		src, err := os.ReadFile(path)
		if err != nil {
			a.errorf("read %s: %v", path, err)
			code = exitInternal
			continue
		}
		inputs = append(inputs, input{name: path, src: src})
	}
	return max(code, a.process(ctx, inputs))
}

// process renders inputs and returns the most severe exit code among them.
func (a *app) process(ctx context.Context, inputs []input) int {
	code := exitOK
	base := a.cfg.PrinterOptions()
	jobs := make([]printer.Job, 0, len(inputs))

	for _, in := range inputs {
		f, err := docyaml.Decode(in.src)
		if err != nil {
			a.decodeError(in.name, err)
			code = max(code, exitInternal)
			continue
		}
		if a.opts.dumpDoc {
			out, err := docyaml.EncodeFile(f)
			if err != nil {
				a.errorf("%s: %v", in.name, err)
				code = max(code, exitInternal)
				continue
			}
			_, _ = a.stdout.Write(out)
			continue
		}

		opts := config.ApplyOverrides(base, f.Options)
		if a.opts.lint {
			diags, err := a.lint.Run(ctx, &f.Doc, opts)
			if err != nil {
				a.errorf("%s: lint failed: %v", in.name, err)
				code = max(code, exitInternal)
				continue
			}
			a.writeDiagnostics(in.name, diags)
			if doclint.HasErrors(diags) {
				a.log.WithField("file", in.name).Warn("not rendered: lint errors")
				code = max(code, exitRefused)
				continue
			}
		}
		jobs = append(jobs, printer.Job{Name: in.name, Doc: f.Doc, Options: opts})
	}
	if len(jobs) == 0 {
		return code
	}

	results, err := printer.PrintAll(ctx, jobs, a.cfg.Workers)
	if err != nil {
		a.errorf("render: %v", err)
		return exitInternal
	}
	for i, res := range results {
		code = max(code, a.emit(res, jobs[i].Options))
	}
	return code
}

func (a *app) emit(res printer.Result, opts printer.Options) int {
	if res.Err != nil {
		a.errorf("%s: %v", res.Name, res.Err)
		if printer.IsErrInvariant(res.Err) {
			return exitRefused
		}
		return exitInternal
	}

	if a.opts.check {
		overflows := printer.Overflows(res.Text, opts)
		for _, o := range overflows {
			a.log.WithFields(log.Fields{
				"file":  res.Name,
				"line":  o.Line + 1,
				"width": o.Width,
				"max":   opts.MaxWidth,
			}).Warn("line exceeds maximum width")
		}
		if len(overflows) > 0 {
			return exitCheck
		}
		return exitOK
	}

	if a.opts.outDir != "" {
		path := filepath.Join(a.opts.outDir, outputName(res.Name))
		if err := writeOutputFile(path, []byte(res.Text)); err != nil {
			a.errorf("write %s: %v", path, err)
			return exitInternal
		}
		a.log.WithField("file", path).Info("wrote")
		return exitOK
	}

	_, _ = io.WriteString(a.stdout, res.Text)
	return exitOK
}

func (a *app) watch(ctx context.Context, code int) int {
	w, err := watch.New(a.opts.paths, 0, a.log)
	if err != nil {
		a.errorf("%v", err)
		return exitInternal
	}
	defer func() {
		if err := w.Close(); err != nil {
			a.log.WithError(err).Warn("close watcher")
		}
	}()

	a.log.WithField("files", len(a.opts.paths)).Info("watching for changes")
	err = w.Run(ctx, func(changed []string) {
		a.log.WithField("files", strings.Join(changed, ",")).Info("rendering changed files")
		code = a.processFiles(ctx, changed)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.errorf("watch: %v", err)
		return exitInternal
	}
	return code
}

func (a *app) writeDiagnostics(name string, diags []doclint.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	_ = a.term.Exclusive(func(w io.Writer) error {
		for _, d := range diags {
			writef(w, "%s: %s\n", name, d)
		}
		return nil
	})
}

// decodeError reports err at its position in the named file when it has one.
func (a *app) decodeError(name string, err error) {
	var derr *docyaml.Error
	if errors.As(err, &derr) && derr.Line > 0 {
		a.errorf("%s:%d:%d: %s", name, derr.Line, derr.Column, derr.Msg)
		return
	}
	a.errorf("%s: %v", name, err)
}

func (a *app) errorf(format string, args ...any) {
	writef(a.term, "docfmt: "+format+"\n", args...)
}

func outputName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
}

func writeOutputFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	//nolint:gosec // CLI reads metadata for a user-specified output path.
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
	}
	//nolint:gosec // CLI writes rendered output to a user-specified directory.
	return os.WriteFile(path, data, mode)
}

func writef(w io.Writer, format string, args ...any) {
	//nolint:gosec // Terminal output helper; format strings are internal callsite constants.
	_, _ = io.WriteString(w, fmt.Sprintf(format, args...))
}
