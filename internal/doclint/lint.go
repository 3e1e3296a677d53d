// Package doclint reports layout documents that would fail or misbehave when
// printed.
package doclint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/printer"
	"github.com/kpumuk/doc-weaver/internal/text"
)

// Severity is a diagnostic severity level.
type Severity uint8

const (
	// SeverityError marks documents the printer refuses.
	SeverityError Severity = iota + 1
	// SeverityWarning marks documents that print but probably not as intended.
	SeverityWarning
	// SeverityInfo is informational.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// Code identifies a diagnostic kind. It equals the ID of the rule reporting it.
type Code string

// Diagnostic is one lint finding.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	// Path locates the node, for example "concat[2].group.ifBreak.break".
	Path string
	// Node is the node's position in document order, counting from zero.
	Node int
	// Span is the source span of the node or of the first text leaf under it.
	Span text.Span
}

func (d Diagnostic) String() string {
	loc := d.Path
	if loc == "" {
		loc = "<root>"
	}
	if !d.Span.IsZero() {
		loc += "@" + d.Span.String()
	}
	return fmt.Sprintf("%s: %s: %s (%s)", loc, d.Severity, d.Message, d.Code)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool { return d.Severity == SeverityError })
}

// Rule is a check over a whole document.
type Rule interface {
	ID() string
	Description() string
	Run(ctx context.Context, d *doc.Doc, opts printer.Options) ([]Diagnostic, error)
}

// Runner executes lint rules and returns aggregated diagnostics.
type Runner struct {
	rules []Rule
}

// NewRunner builds a lint runner from a rule set.
func NewRunner(rules ...Rule) *Runner {
	copied := slices.Clone(rules)
	return &Runner{rules: copied}
}

// NewDefaultRunner builds the default lint rule set.
func NewDefaultRunner() *Runner {
	return NewRunner(
		GroupRefRule{},
		DuplicateGroupIDRule{},
		NegativeIndentRule{},
		TextNewlineRule{},
		FillShapeRule{},
		OverlongTextRule{},
	)
}

// Rules returns the configured rules.
func (r *Runner) Rules() []Rule {
	if r == nil {
		return nil
	}
	return slices.Clone(r.rules)
}

// Run executes all configured rules and returns a sorted diagnostic list.
func (r *Runner) Run(ctx context.Context, d *doc.Doc, opts printer.Options) ([]Diagnostic, error) {
	if d == nil {
		return nil, errors.New("nil document")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil || len(r.rules) == 0 {
		return []Diagnostic{}, nil
	}

	out := make([]Diagnostic, 0, 8)
	for _, rule := range r.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		diags, err := rule.Run(ctx, d, opts)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID(), err)
		}
		out = append(out, diags...)
	}

	SortDiagnostics(out)

	return out, nil
}

// SortDiagnostics orders diagnostics by document position for stable output.
func SortDiagnostics(diags []Diagnostic) {
	if len(diags) < 2 {
		return
	}

	sort.SliceStable(diags, func(i, j int) bool {
		a := diags[i]
		b := diags[j]
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}
