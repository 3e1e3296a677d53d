package printer_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kpumuk/doc-weaver/internal/config"
	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/docyaml"
	"github.com/kpumuk/doc-weaver/internal/printer"
	"github.com/kpumuk/doc-weaver/internal/testutil"
)

func decodeFile(t *testing.T, path string) docyaml.File {
	t.Helper()
	f, err := docyaml.Decode(testutil.ReadFile(t, path))
	if err != nil {
		t.Fatalf("Decode(%s): %v", path, err)
	}
	return f
}

// linesDoc rebuilds rendered output as text leaves joined by hard lines.
func linesDoc(out string, opts printer.Options) doc.Doc {
	out = strings.TrimSuffix(out, opts.Newline)
	var parts []doc.Doc
	for line := range strings.SplitSeq(out, opts.Newline) {
		parts = append(parts, doc.Text(line))
	}
	return doc.Join(doc.HardLine(), parts...)
}

func TestPrinterGoldenFixtures(t *testing.T) {
	t.Parallel()

	cases, err := testutil.RenderGoldenCases()
	if err != nil {
		t.Fatalf("RenderGoldenCases: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("expected render golden fixtures")
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			f := decodeFile(t, tc.InputPath)
			expected := string(testutil.ReadFile(t, tc.ExpectedPath))
			opts := config.ApplyOverrides(printer.DefaultOptions(), f.Options)

			got, err := printer.Print(f.Doc, opts)
			if err != nil {
				t.Fatalf("Print: %v", err)
			}
			if got != expected {
				t.Fatalf("rendered output mismatch\n--- got ---\n%q\n--- want ---\n%q", got, expected)
			}

			// Printing the rendered lines again is stable.
			again, err := printer.Print(linesDoc(got, opts), opts)
			if err != nil {
				t.Fatalf("Print(idempotence): %v", err)
			}
			if again != expected {
				t.Fatalf("idempotence mismatch\n--- got ---\n%q\n--- want ---\n%q", again, expected)
			}
		})
	}
}

func TestPrinterCorpusProperties(t *testing.T) {
	t.Parallel()

	files, err := testutil.CorpusFiles("valid")
	if err != nil {
		t.Fatalf("CorpusFiles: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected corpus documents")
	}

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			t.Parallel()

			f := decodeFile(t, path)
			for _, width := range []int{0, 10, 20, 40, 80, 120} {
				opts := config.ApplyOverrides(printer.DefaultOptions(), f.Options)
				opts.MaxWidth = width

				got, err := printer.Print(f.Doc, opts)
				if err != nil {
					t.Fatalf("Print(width %d): %v", width, err)
				}
				if again, err := printer.Print(f.Doc, opts); err != nil || again != got {
					t.Fatalf("Print(width %d) is not deterministic: %q vs %q (%v)", width, got, again, err)
				}
				relaid, err := printer.Print(linesDoc(got, opts), opts)
				if err != nil || relaid != got {
					t.Fatalf("Print(width %d) is not idempotent:\n%q\n%q (%v)", width, got, relaid, err)
				}
				if strings.Contains(got, " \n") {
					t.Fatalf("Print(width %d) left trailing whitespace: %q", width, got)
				}
			}
		})
	}
}
