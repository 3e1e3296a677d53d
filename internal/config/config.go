// Package config resolves docfmt settings from defaults, a YAML file, a dotenv
// file, and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/kpumuk/doc-weaver/internal/docyaml"
	"github.com/kpumuk/doc-weaver/internal/printer"
)

// Config holds every setting the formatter reads.
type Config struct {
	// -- Layout --

	MaxWidth        int    `yaml:"max_width" env:"DOCWEAVER_MAX_WIDTH"`
	IndentWidth     int    `yaml:"indent_width" env:"DOCWEAVER_INDENT_WIDTH"`
	UseTabs         bool   `yaml:"use_tabs" env:"DOCWEAVER_USE_TABS"`
	TabWidth        int    `yaml:"tab_width" env:"DOCWEAVER_TAB_WIDTH"`
	TrailingNewline bool   `yaml:"trailing_newline" env:"DOCWEAVER_TRAILING_NEWLINE"`
	Newline         string `yaml:"newline" env:"DOCWEAVER_NEWLINE"` // lf or crlf

	// -- Runtime --

	// Workers bounds concurrent rendering. Zero uses one worker per CPU.
	Workers  int    `yaml:"workers" env:"DOCWEAVER_WORKERS"`
	LogLevel string `yaml:"log_level" env:"DOCWEAVER_LOG_LEVEL"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	opts := printer.DefaultOptions()
	return Config{
		MaxWidth:        opts.MaxWidth,
		IndentWidth:     opts.IndentWidth,
		UseTabs:         opts.UseTabs,
		TabWidth:        opts.TabWidth,
		TrailingNewline: opts.TrailingNewline,
		Newline:         docyaml.NewlineLF,
		LogLevel:        logrus.InfoLevel.String(),
	}
}

// LoadOptions select the sources Load reads.
type LoadOptions struct {
	// ConfigPath is a YAML file. Empty skips the file layer.
	ConfigPath string
	// EnvFilePath is a dotenv file. Its values never override Environ.
	EnvFilePath string
	// Environ holds environment variables, usually EnvironMap(os.Environ()).
	Environ map[string]string
}

// Load layers the configured sources over Defaults and validates the result.
func Load(opt LoadOptions) (*Config, error) {
	cfg := Defaults()

	if opt.ConfigPath != "" {
		data, err := os.ReadFile(opt.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", opt.ConfigPath, err)
		}
	}

	environ := make(map[string]string, len(opt.Environ))
	if opt.EnvFilePath != "" {
		// Read, not Load: the process environment stays untouched.
		vars, err := godotenv.Read(opt.EnvFilePath)
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		for k, v := range vars {
			environ[k] = v
		}
	}
	for k, v := range opt.Environ {
		environ[k] = v
	}
	if err := env.Parse(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// EnvironMap converts KEY=VALUE pairs as returned by os.Environ.
func EnvironMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := newlineSequence(c.Newline); err != nil {
		errs = append(errs, err)
	}
	if err := c.PrinterOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("invalid workers %d", c.Workers))
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// PrinterOptions converts c into printer options.
func (c Config) PrinterOptions() printer.Options {
	nl, err := newlineSequence(c.Newline)
	if err != nil {
		nl = "\n"
	}
	return printer.Options{
		MaxWidth:        c.MaxWidth,
		IndentWidth:     c.IndentWidth,
		UseTabs:         c.UseTabs,
		TabWidth:        c.TabWidth,
		TrailingNewline: c.TrailingNewline,
		Newline:         nl,
	}
}

// ApplyOverrides returns opts with the options a document file sets.
func ApplyOverrides(opts printer.Options, o docyaml.Overrides) printer.Options {
	if o.MaxWidth != nil {
		opts.MaxWidth = *o.MaxWidth
	}
	if o.IndentWidth != nil {
		opts.IndentWidth = *o.IndentWidth
	}
	if o.UseTabs != nil {
		opts.UseTabs = *o.UseTabs
	}
	if o.TabWidth != nil {
		opts.TabWidth = *o.TabWidth
	}
	if o.TrailingNewline != nil {
		opts.TrailingNewline = *o.TrailingNewline
	}
	if nl := o.NewlineSequence(); nl != "" {
		opts.Newline = nl
	}
	return opts
}

func newlineSequence(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", docyaml.NewlineLF:
		return "\n", nil
	case docyaml.NewlineCRLF:
		return "\r\n", nil
	default:
		return "", fmt.Errorf("invalid newline %q (want %s or %s)", name, docyaml.NewlineLF, docyaml.NewlineCRLF)
	}
}
