package doclint

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/printer"
	"github.com/kpumuk/doc-weaver/internal/text"
)

func runRule(t *testing.T, rule Rule, d doc.Doc, opts printer.Options) []Diagnostic {
	t.Helper()
	diags, err := rule.Run(context.Background(), &d, opts)
	if err != nil {
		t.Fatalf("%s.Run: %v", rule.ID(), err)
	}
	return diags
}

func paths(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Path)
	}
	return out
}

func TestGroupRefRule(t *testing.T) {
	t.Parallel()

	d := doc.Concat(
		doc.IfGroupBreaks("later", doc.Text(","), doc.Empty()),
		doc.Group(doc.Concat(doc.Text("a"), doc.IfGroupBreaks("self", doc.Text(";"), doc.Empty())), doc.WithID("self")),
		doc.Group(doc.Text("b"), doc.WithID("later")),
		doc.IndentIfBreak("later", doc.Text("c")),
		doc.IfBreak(doc.Text("x"), doc.Text("y")),
	)

	diags := runRule(t, GroupRefRule{}, d, printer.DefaultOptions())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	got := diags[0]
	if got.Code != DiagnosticUnknownGroupRef || got.Severity != SeverityError {
		t.Fatalf("diagnostic = %+v, want unknown-group-ref error", got)
	}
	if got.Path != "concat[0].ifBreak" {
		t.Fatalf("Path = %q, want %q", got.Path, "concat[0].ifBreak")
	}
	if !strings.Contains(got.Message, `"later"`) {
		t.Fatalf("Message = %q, want it to name the group", got.Message)
	}
}

func TestDuplicateGroupIDRule(t *testing.T) {
	t.Parallel()

	d := doc.Concat(
		doc.Group(doc.Text("a"), doc.WithID("g")),
		doc.Group(doc.Text("b")),
		doc.Group(doc.Text("c"), doc.WithID("g")),
	)
	diags := runRule(t, DuplicateGroupIDRule{}, d, printer.DefaultOptions())
	if len(diags) != 1 || diags[0].Path != "concat[2].group" {
		t.Fatalf("diagnostics = %v, want one at concat[2].group", diags)
	}
	if !strings.Contains(diags[0].Message, "concat[0].group") {
		t.Fatalf("Message = %q, want the first use", diags[0].Message)
	}
}

func TestNegativeIndentRule(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		d    doc.Doc
		want []string
	}{
		"dedent at root": {
			d:    doc.Dedent(doc.Text("x")),
			want: []string{"dedent"},
		},
		"dedent inside indent": {
			d: doc.Indent(doc.Dedent(doc.Text("x"))),
		},
		"double dedent": {
			d:    doc.Indent(doc.Dedent(doc.Dedent(doc.Text("x")))),
			want: []string{"indent.dedent.dedent"},
		},
		"negative align": {
			d:    doc.Concat(doc.Text("a"), doc.Align(-2, doc.Text("x"))),
			want: []string{"concat[1].align"},
		},
		"dedent after dedent to root": {
			d:    doc.Indent(doc.DedentToRoot(doc.Dedent(doc.Text("x")))),
			want: []string{"indent.dedentToRoot.dedent"},
		},
		"mark as root keeps enclosing indent": {
			d: doc.Indent(doc.MarkAsRoot(doc.Dedent(doc.Text("x")))),
		},
		"siblings restore indentation": {
			d: doc.Concat(doc.Indent(doc.Text("a")), doc.Indent(doc.Dedent(doc.Text("b")))),
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := paths(runRule(t, NegativeIndentRule{}, tc.d, printer.DefaultOptions()))
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("paths = %v, want %v", got, tc.want)
			}
		})
	}
}

// The rule must agree with the printer on every case it reports.
func TestNegativeIndentRuleMatchesPrinter(t *testing.T) {
	t.Parallel()

	docs := []doc.Doc{
		doc.Dedent(doc.Concat(doc.Text("x"), doc.HardLine())),
		doc.Indent(doc.DedentToRoot(doc.Dedent(doc.Concat(doc.HardLine(), doc.Text("x"))))),
		doc.Align(-1, doc.Concat(doc.HardLine(), doc.Text("x"))),
		doc.Indent(doc.MarkAsRoot(doc.Dedent(doc.Concat(doc.HardLine(), doc.Text("x"))))),
		doc.Indent(doc.Dedent(doc.Concat(doc.HardLine(), doc.Text("x")))),
	}
	for i, d := range docs {
		diags := runRule(t, NegativeIndentRule{}, d, printer.DefaultOptions())
		_, err := printer.Print(d, printer.DefaultOptions())
		var inv *printer.ErrInvariant
		printerRefuses := printer.AsInvariant(err, &inv) && inv.Reason == printer.InvariantNegativeIndent
		if (len(diags) > 0) != printerRefuses {
			t.Fatalf("doc %d: diagnostics = %v, printer error = %v", i, diags, err)
		}
	}
}

func TestTextNewlineRule(t *testing.T) {
	t.Parallel()

	d := doc.Concat(doc.Text("ok"), doc.TextAt("a\nb", text.Span{Start: 4, End: 7}))
	diags := runRule(t, TextNewlineRule{}, d, printer.DefaultOptions())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	if want := (text.Span{Start: 4, End: 7}); diags[0].Span != want {
		t.Fatalf("Span = %s, want %s", diags[0].Span, want)
	}
	if got, want := diags[0].String(), `concat[1].text@[4,7): warning: text "a\nb" contains a newline (text-newline)`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFillShapeRule(t *testing.T) {
	t.Parallel()

	good := doc.Fill(doc.Text("a"), doc.Line(), doc.Text("b"))
	if diags := runRule(t, FillShapeRule{}, good, printer.DefaultOptions()); len(diags) != 0 {
		t.Fatalf("diagnostics = %v, want none", diags)
	}

	bad := doc.Fill(doc.Text("a"), doc.Text(" "), doc.Text("b"), doc.Line())
	diags := runRule(t, FillShapeRule{}, bad, printer.DefaultOptions())
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %v, want 2", diags)
	}
	if !strings.Contains(diags[0].Message, "ends with a separator") || !strings.Contains(diags[1].Message, "separator 1 is text") {
		t.Fatalf("messages = %q, %q", diags[0].Message, diags[1].Message)
	}
}

func TestOverlongTextRule(t *testing.T) {
	t.Parallel()

	opts := printer.DefaultOptions()
	opts.MaxWidth = 4
	d := doc.Concat(doc.Text("abcd"), doc.Text("abcde"), doc.Text("日本語"))
	diags := runRule(t, OverlongTextRule{}, d, opts)
	if got := strings.Join(paths(diags), ","); got != "concat[1].text,concat[2].text" {
		t.Fatalf("paths = %s, want concat[1].text,concat[2].text", got)
	}
	if diags[1].Severity != SeverityInfo || !strings.Contains(diags[1].Message, "6 columns") {
		t.Fatalf("diagnostic = %+v", diags[1])
	}

	opts.MaxWidth = 0
	if diags := runRule(t, OverlongTextRule{}, d, opts); len(diags) != 0 {
		t.Fatalf("MaxWidth 0 diagnostics = %v, want none", diags)
	}
}

func TestRunnerSortsAndReportsErrors(t *testing.T) {
	t.Parallel()

	d := doc.Concat(
		doc.Text("x\n"),
		doc.Dedent(doc.Text("y")),
		doc.IfGroupBreaks("nope", doc.Text(","), doc.Empty()),
	)
	diags, err := NewDefaultRunner().Run(context.Background(), &d, printer.DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var codes []string
	for _, diag := range diags {
		codes = append(codes, string(diag.Code))
	}
	if got, want := strings.Join(codes, ","), "text-newline,negative-indent,unknown-group-ref"; got != want {
		t.Fatalf("codes = %s, want %s", got, want)
	}
	if !HasErrors(diags) {
		t.Fatal("HasErrors() = false, want true")
	}
	if HasErrors(diags[:1]) {
		t.Fatal("HasErrors(warning only) = true, want false")
	}
}

func TestRunnerHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := doc.Text("x")
	if _, err := NewDefaultRunner().Run(ctx, &d, printer.DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if _, err := NewDefaultRunner().Run(context.Background(), nil, printer.DefaultOptions()); err == nil {
		t.Fatal("Run(nil) error = nil, want error")
	}
	if got := len(NewDefaultRunner().Rules()); got != 6 {
		t.Fatalf("len(Rules()) = %d, want 6", got)
	}
}
