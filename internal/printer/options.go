// Package printer renders layout documents into text that respects a maximum line
// width.
//
// Print walks the document with an explicit command stack, deciding for every group
// whether it fits on the current line in flat mode. Decisions are never revisited,
// and the document itself is never modified, so one document can be printed by
// several goroutines at once.
package printer

import (
	"errors"
	"fmt"
)

const (
	defaultMaxWidth    = 100
	defaultIndentWidth = 2
	defaultTabWidth    = 4
)

// Options configure rendering.
type Options struct {
	// MaxWidth is the target line width. Zero breaks every group that contains a line.
	MaxWidth int
	// IndentWidth is the number of spaces one Indent adds when UseTabs is false.
	IndentWidth int
	// UseTabs renders each Indent as one tab character.
	UseTabs bool
	// TabWidth is the column width assumed for a tab.
	TabWidth int
	// TrailingNewline ensures non-empty output ends with exactly one newline.
	TrailingNewline bool
	// Newline is "\n" or "\r\n". Empty means "\n".
	Newline string
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		MaxWidth:        defaultMaxWidth,
		IndentWidth:     defaultIndentWidth,
		TabWidth:        defaultTabWidth,
		TrailingNewline: true,
		Newline:         "\n",
	}
}

// Validate reports an error for options Print cannot honor.
func (o Options) Validate() error {
	_, err := normalizeOptions(o)
	return err
}

func normalizeOptions(opts Options) (Options, error) {
	var errs []error
	if opts.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("invalid MaxWidth %d", opts.MaxWidth))
	}
	if opts.IndentWidth < 0 {
		errs = append(errs, fmt.Errorf("invalid IndentWidth %d", opts.IndentWidth))
	}
	if opts.TabWidth < 0 {
		errs = append(errs, fmt.Errorf("invalid TabWidth %d", opts.TabWidth))
	}
	switch opts.Newline {
	case "":
		opts.Newline = "\n"
	case "\n", "\r\n":
	default:
		errs = append(errs, fmt.Errorf("invalid newline %q", opts.Newline))
	}
	if err := errors.Join(errs...); err != nil {
		return Options{}, err
	}
	return opts, nil
}
