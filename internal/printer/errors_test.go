package printer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

func TestPrintInvariantViolations(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		doc  doc.Doc
		want InvariantReason
	}{
		"unknown group": {
			doc:  doc.Concat(doc.Text("a"), doc.IfGroupBreaks("missing", doc.Text("b"), doc.Text("c"))),
			want: InvariantUnknownGroup,
		},
		"group referenced before it is printed": {
			doc: doc.Concat(
				doc.IfGroupBreaks("later", doc.Text("b"), doc.Text("c")),
				doc.Group(doc.Text("a"), doc.WithID("later")),
			),
			want: InvariantUnknownGroup,
		},
		"negative align": {
			doc:  doc.Align(-1, doc.Concat(doc.HardLine(), doc.Text("a"))),
			want: InvariantNegativeIndent,
		},
		"dedent below root": {
			doc:  doc.Dedent(doc.Concat(doc.HardLine(), doc.Text("a"))),
			want: InvariantNegativeIndent,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Print(tc.doc, rawOptions(80))
			var inv *ErrInvariant
			if !AsInvariant(err, &inv) {
				t.Fatalf("Print() error = %v, want *ErrInvariant", err)
			}
			if inv.Reason != tc.want {
				t.Fatalf("Reason = %q, want %q", inv.Reason, tc.want)
			}
		})
	}
}

func TestFlatHardLineIsInvariantViolation(t *testing.T) {
	t.Parallel()

	// Well-formed documents never reach this state.
	norm, err := normalizeOptions(DefaultOptions())
	if err != nil {
		t.Fatalf("normalizeOptions: %v", err)
	}
	p := &printer{opts: norm, out: newOutput(norm), indents: newIndentTable(norm), groups: map[doc.GroupID]mode{}}
	hard := doc.HardLine()
	err = p.step(command{mode: modeFlat, doc: &hard})
	var inv *ErrInvariant
	if !AsInvariant(err, &inv) || inv.Reason != InvariantFlatHardLine {
		t.Fatalf("step() error = %v, want flat_hard_line", err)
	}
}

func TestIsErrInvariantUnwraps(t *testing.T) {
	t.Parallel()

	base := invariantErr(InvariantUnknownGroup, "group %q", "g")
	wrapped := fmt.Errorf("render main.yaml: %w", base)
	if !IsErrInvariant(wrapped) {
		t.Fatal("IsErrInvariant(wrapped) = false, want true")
	}
	if IsErrInvariant(errors.New("plain")) {
		t.Fatal("IsErrInvariant(plain) = true, want false")
	}
	if IsErrInvariant(nil) {
		t.Fatal("IsErrInvariant(nil) = true, want false")
	}
	want := `document invariant violated (unknown_group): group "g"`
	if got := base.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestPrintRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	tests := map[string]Options{
		"negative width":  {MaxWidth: -1},
		"negative indent": {IndentWidth: -2},
		"negative tab":    {TabWidth: -4},
		"bad newline":     {Newline: "\r"},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Print(doc.Text("a"), opts)
			if err == nil {
				t.Fatal("Print() error = nil, want error")
			}
			if IsErrInvariant(err) {
				t.Fatalf("Print() error = %v, want a plain options error", err)
			}
		})
	}
}

func TestZeroOptionsAreValid(t *testing.T) {
	t.Parallel()

	if err := (Options{}).Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	got := mustPrint(t, doc.Group(doc.Concat(doc.Text("a"), doc.Line(), doc.Text("b"))), Options{})
	if got != "a\nb" {
		t.Fatalf("Print() = %q, want %q", got, "a\nb")
	}
}
