package doclint_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kpumuk/doc-weaver/internal/config"
	"github.com/kpumuk/doc-weaver/internal/doclint"
	"github.com/kpumuk/doc-weaver/internal/docyaml"
	"github.com/kpumuk/doc-weaver/internal/printer"
	"github.com/kpumuk/doc-weaver/internal/testutil"
)

func TestLintGoldenFixtures(t *testing.T) {
	t.Parallel()

	cases, err := testutil.LintGoldenCases()
	if err != nil {
		t.Fatalf("LintGoldenCases: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("expected lint golden fixtures")
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			f, err := docyaml.Decode(testutil.ReadFile(t, tc.InputPath))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			opts := config.ApplyOverrides(printer.DefaultOptions(), f.Options)
			diags, err := doclint.NewDefaultRunner().Run(context.Background(), &f.Doc, opts)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			var b strings.Builder
			for _, d := range diags {
				b.WriteString(d.String())
				b.WriteByte('\n')
			}
			if want := string(testutil.ReadFile(t, tc.ExpectedPath)); b.String() != want {
				t.Fatalf("diagnostics mismatch\n--- got ---\n%s\n--- want ---\n%s", b.String(), want)
			}
		})
	}
}

func TestLintCorpusHasNoErrors(t *testing.T) {
	t.Parallel()

	files, err := testutil.CorpusFiles("valid")
	if err != nil {
		t.Fatalf("CorpusFiles: %v", err)
	}
	for _, path := range files {
		f, err := docyaml.Decode(testutil.ReadFile(t, path))
		if err != nil {
			t.Fatalf("Decode(%s): %v", path, err)
		}
		diags, err := doclint.NewDefaultRunner().Run(context.Background(), &f.Doc, printer.DefaultOptions())
		if err != nil {
			t.Fatalf("Run(%s): %v", path, err)
		}
		if doclint.HasErrors(diags) {
			t.Fatalf("%s: unexpected errors %v", path, diags)
		}
	}
}
