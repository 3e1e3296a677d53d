package doclint

import (
	"context"
	"fmt"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/printer"
)

// DiagnosticNegativeIndent reports indentation that would drop below column zero.
const DiagnosticNegativeIndent Code = "negative-indent"

// NegativeIndentRule tracks indentation the way the printer does and reports
// negative alignments and dedents with nothing to remove.
type NegativeIndentRule struct{}

// ID returns the stable rule identifier.
func (NegativeIndentRule) ID() string { return string(DiagnosticNegativeIndent) }

// Description returns a human-readable rule summary.
func (NegativeIndentRule) Description() string {
	return "indentation must never become negative"
}

type indentLevel struct {
	parent int
	root   int
}

// Run evaluates the rule against a document.
func (NegativeIndentRule) Run(ctx context.Context, d *doc.Doc, _ printer.Options) ([]Diagnostic, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	levels := []indentLevel{{parent: -1, root: 0}}
	current := []int{0}
	var out []Diagnostic

	enter := func(n *doc.Doc, path doc.Path, index int) {
		from := current[len(current)-1]
		cur := levels[from]
		next := from
		switch n.Kind() {
		case doc.KindIndent:
			levels = append(levels, indentLevel{parent: from, root: cur.root})
			next = len(levels) - 1
		case doc.KindAlign:
			if n.Columns() < 0 {
				out = append(out, newDiagnostic(DiagnosticNegativeIndent, SeverityError, n, path, index,
					fmt.Sprintf("align by %d columns", n.Columns())))
				break
			}
			levels = append(levels, indentLevel{parent: from, root: cur.root})
			next = len(levels) - 1
		case doc.KindDedent:
			if cur.parent < 0 {
				out = append(out, newDiagnostic(DiagnosticNegativeIndent, SeverityError, n, path, index,
					"dedent with no enclosing indent or align"))
				break
			}
			levels = append(levels, indentLevel{parent: levels[cur.parent].parent, root: cur.root})
			next = len(levels) - 1
		case doc.KindDedentToRoot:
			next = cur.root
		case doc.KindMarkAsRoot:
			levels = append(levels, indentLevel{parent: cur.parent, root: from})
			next = len(levels) - 1
		default:
			return
		}
		current = append(current, next)
	}
	leave := func(n *doc.Doc) {
		switch n.Kind() {
		case doc.KindIndent, doc.KindAlign, doc.KindDedent, doc.KindDedentToRoot, doc.KindMarkAsRoot:
			current = current[:len(current)-1]
		}
	}

	visit(d, enter, leave)
	return out, nil
}
