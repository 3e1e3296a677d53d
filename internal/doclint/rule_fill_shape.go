package doclint

import (
	"context"
	"fmt"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/printer"
)

// DiagnosticFillShape reports fills that do not alternate content and line
// separators.
const DiagnosticFillShape Code = "fill-shape"

// FillShapeRule checks that fills have an odd number of parts with a line at
// every odd position.
type FillShapeRule struct{}

// ID returns the stable rule identifier.
func (FillShapeRule) ID() string { return string(DiagnosticFillShape) }

// Description returns a human-readable rule summary.
func (FillShapeRule) Description() string {
	return "fill parts must alternate content and line separators"
}

// Run evaluates the rule against a document.
func (FillShapeRule) Run(ctx context.Context, d *doc.Doc, _ printer.Options) ([]Diagnostic, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var out []Diagnostic
	visit(d, func(n *doc.Doc, path doc.Path, index int) {
		if n.Kind() != doc.KindFill {
			return
		}
		parts := n.Parts()
		if len(parts)%2 == 0 {
			out = append(out, newDiagnostic(DiagnosticFillShape, SeverityWarning, n, path, index,
				fmt.Sprintf("fill has %d parts and ends with a separator", len(parts))))
		}
		for i := 1; i < len(parts); i += 2 {
			if parts[i].Kind() == doc.KindLine {
				continue
			}
			out = append(out, newDiagnostic(DiagnosticFillShape, SeverityWarning, n, path, index,
				fmt.Sprintf("fill separator %d is %s, not a line", i, parts[i].Kind())))
		}
	}, nil)
	return out, nil
}
