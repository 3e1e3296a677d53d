package printer

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/kpumuk/doc-weaver/internal/text"
)

// StringWidth returns the display width of s, counting each tab as tabWidth columns.
func StringWidth(s string, tabWidth int) int {
	tabs := strings.Count(s, "\t")
	if tabs > 0 {
		s = strings.ReplaceAll(s, "\t", "")
	}
	return uniseg.StringWidth(s) + tabs*tabWidth
}

// Overflow describes a rendered line wider than the configured maximum width.
type Overflow struct {
	Line  int // 0-based
	Width int
}

// Overflows lists the lines of out whose display width exceeds opts.MaxWidth.
func Overflows(out string, opts Options) []Overflow {
	idx := text.NewLineIndex([]byte(out))
	var res []Overflow
	for i := range idx.LineCount() {
		line, err := idx.Line(i)
		if err != nil {
			break
		}
		if w := StringWidth(string(line), opts.TabWidth); w > opts.MaxWidth {
			res = append(res, Overflow{Line: i, Width: w})
		}
	}
	return res
}
