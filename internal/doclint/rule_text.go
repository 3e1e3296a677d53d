package doclint

import (
	"context"
	"fmt"
	"strings"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/printer"
)

const (
	// DiagnosticTextNewline reports text leaves containing line terminators.
	DiagnosticTextNewline Code = "text-newline"
	// DiagnosticOverlongText reports text leaves wider than the maximum line width.
	DiagnosticOverlongText Code = "overlong-text"
)

// TextNewlineRule warns about text that embeds newlines. The printer cannot
// indent the lines after them.
type TextNewlineRule struct{}

// ID returns the stable rule identifier.
func (TextNewlineRule) ID() string { return string(DiagnosticTextNewline) }

// Description returns a human-readable rule summary.
func (TextNewlineRule) Description() string {
	return "text should not contain newlines; use hard or literal lines"
}

// Run evaluates the rule against a document.
func (TextNewlineRule) Run(ctx context.Context, d *doc.Doc, _ printer.Options) ([]Diagnostic, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var out []Diagnostic
	visit(d, func(n *doc.Doc, path doc.Path, index int) {
		if n.Kind() != doc.KindText || !strings.ContainsAny(n.Content(), "\r\n") {
			return
		}
		out = append(out, newDiagnostic(DiagnosticTextNewline, SeverityWarning, n, path, index,
			fmt.Sprintf("text %q contains a newline", n.Content())))
	}, nil)
	return out, nil
}

// OverlongTextRule notes text that overflows the line on its own, whatever the
// layout.
type OverlongTextRule struct{}

// ID returns the stable rule identifier.
func (OverlongTextRule) ID() string { return string(DiagnosticOverlongText) }

// Description returns a human-readable rule summary.
func (OverlongTextRule) Description() string {
	return "text wider than the maximum line width always overflows"
}

// Run evaluates the rule against a document.
func (OverlongTextRule) Run(ctx context.Context, d *doc.Doc, opts printer.Options) ([]Diagnostic, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if opts.MaxWidth <= 0 {
		return nil, nil
	}

	var out []Diagnostic
	visit(d, func(n *doc.Doc, path doc.Path, index int) {
		if n.Kind() != doc.KindText {
			return
		}
		if w := n.Width(opts.TabWidth); w > opts.MaxWidth {
			out = append(out, newDiagnostic(DiagnosticOverlongText, SeverityInfo, n, path, index,
				fmt.Sprintf("text is %d columns wide, more than the maximum of %d", w, opts.MaxWidth)))
		}
	}, nil)
	return out, nil
}
