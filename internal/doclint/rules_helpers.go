package doclint

import (
	"context"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/text"
)

// visit walks d in document order and passes each node with its path and
// document-order index.
func visit(d *doc.Doc, enter func(n *doc.Doc, path doc.Path, index int), leave func(n *doc.Doc)) {
	index := 0
	v := doc.Visitor{
		Enter: func(n *doc.Doc, path doc.Path) bool {
			enter(n, path, index)
			index++
			return true
		},
	}
	if leave != nil {
		v.Leave = func(n *doc.Doc, _ doc.Path) { leave(n) }
	}
	doc.Walk(d, v)
}

// nodeSpan returns the span of n if it is a text leaf, or of the first text leaf
// under n that carries one.
func nodeSpan(n *doc.Doc) text.Span {
	var span text.Span
	doc.Walk(n, doc.Visitor{Enter: func(c *doc.Doc, _ doc.Path) bool {
		if !span.IsZero() {
			return false
		}
		if c.Kind() == doc.KindText {
			span = c.Span()
		}
		return true
	}})
	return span
}

func newDiagnostic(code Code, sev Severity, n *doc.Doc, path doc.Path, index int, msg string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  msg,
		Path:     path.String(),
		Node:     index,
		Span:     nodeSpan(n),
	}
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
