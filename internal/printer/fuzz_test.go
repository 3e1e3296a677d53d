package printer

import (
	"strings"
	"testing"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

// wordsDoc builds a call whose arguments are filled paragraphs, one per comma
// separated chunk of src.
func wordsDoc(src string) doc.Doc {
	var args []doc.Doc
	for chunk := range strings.SplitSeq(src, ",") {
		words := strings.Fields(chunk)
		if len(words) == 0 {
			continue
		}
		parts := make([]doc.Doc, 0, 2*len(words))
		for i, w := range words {
			if i > 0 {
				parts = append(parts, doc.Line())
			}
			parts = append(parts, doc.Text(w))
		}
		args = append(args, doc.Fill(parts...))
	}
	return callDoc("f", args...)
}

func isPrintableASCII(s string) bool {
	for i := range len(s) {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func FuzzPrintWords(f *testing.F) {
	for _, seed := range []struct {
		src   string
		width uint8
	}{
		{"", 0},
		{"alpha beta, gamma", 10},
		{"a b c d e f g h i j k l m n o p", 7},
		{"averyveryverylongtoken, x", 4},
		{"日本語 テキスト, ok", 8},
	} {
		f.Add(seed.src, seed.width)
	}

	f.Fuzz(func(t *testing.T, src string, width uint8) {
		if len(src) > 64*1024 {
			t.Skip()
		}
		d := wordsDoc(src)
		opts := rawOptions(int(width))

		got, err := Print(d, opts)
		if err != nil {
			t.Fatalf("Print error: %v", err)
		}
		again, err := Print(d, opts)
		if err != nil || again != got {
			t.Fatalf("second Print = %q, %v; want %q", again, err, got)
		}

		if !isPrintableASCII(src) {
			return
		}
		// Fill measures its pairs without the separator that follows the call
		// argument, so only a trailing comma may push a packed line over.
		lines := strings.Split(got, "\n")
		for _, over := range Overflows(got, opts) {
			line := lines[over.Line]
			if len(strings.Fields(line)) == 1 {
				continue
			}
			if w := StringWidth(strings.TrimSuffix(line, ","), opts.TabWidth); w > opts.MaxWidth {
				t.Fatalf("line %d %q is %d wide", over.Line, line, w)
			}
		}
	})
}

func BenchmarkPrintNestedCalls(b *testing.B) {
	args := make([]doc.Doc, 0, 64)
	for i := range 64 {
		inner := callDoc("inner", doc.Text("alpha"), doc.Text("beta"), doc.Text("gamma"))
		if i%2 == 0 {
			inner = wordsDoc("lorem ipsum dolor sit amet, consectetur adipiscing elit")
		}
		args = append(args, inner)
	}
	d := callDoc("outer", args...)
	opts := rawOptions(40)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := Print(d, opts); err != nil {
			b.Fatalf("Print: %v", err)
		}
	}
}
