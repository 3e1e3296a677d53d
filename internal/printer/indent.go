package printer

import (
	"strings"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

const noIndent = -1

// indentation is one entry in the indentation arena. Commands refer to entries by
// index, and the rendered value is built only when a line break needs it, so
// deeply nested indentation that never reaches a newline costs no string building.
type indentation struct {
	base   int    // entry whose value prefixes this one
	seg    string // appended to the base value
	width  int
	root   int // entry restored by DedentToRoot and used by literal lines
	parent int // entry this one was derived from by Indent or Align
	value  string
	built  bool
}

type indentKey struct {
	from int
	op   doc.Kind
	n    int
}

type indentTable struct {
	unit      string
	unitWidth int
	entries   []indentation
	derived   map[indentKey]int
	chain     []int
}

func newIndentTable(opts Options) *indentTable {
	t := &indentTable{
		entries: []indentation{{base: noIndent, root: noIndent, parent: noIndent, built: true}},
		derived: make(map[indentKey]int),
	}
	if opts.UseTabs {
		t.unit, t.unitWidth = "\t", opts.TabWidth
	} else {
		t.unit, t.unitWidth = strings.Repeat(" ", opts.IndentWidth), opts.IndentWidth
	}
	return t
}

func (t *indentTable) width(i int) int { return t.entries[i].width }

// rootOf returns the entry literal lines return to from entry i.
func (t *indentTable) rootOf(i int) int {
	if r := t.entries[i].root; r != noIndent {
		return r
	}
	return 0
}

// value returns the rendered indentation of entry i.
func (t *indentTable) value(i int) string {
	if t.entries[i].built {
		return t.entries[i].value
	}
	chain := t.chain[:0]
	for j := i; !t.entries[j].built; j = t.entries[j].base {
		chain = append(chain, j)
	}
	for k := len(chain) - 1; k >= 0; k-- {
		e := &t.entries[chain[k]]
		e.value = t.entries[e.base].value + e.seg
		e.built = true
	}
	t.chain = chain[:0]
	return t.entries[i].value
}

// apply returns the entry produced by applying the indentation node d to entry from.
func (t *indentTable) apply(from int, d *doc.Doc) (int, error) {
	key := indentKey{from: from, op: d.Kind()}
	if d.Kind() == doc.KindAlign {
		key.n = d.Columns()
	}
	if i, ok := t.derived[key]; ok {
		return i, nil
	}

	cur := t.entries[from]
	var next indentation
	switch d.Kind() {
	case doc.KindIndent:
		next = indentation{base: from, seg: t.unit, width: cur.width + t.unitWidth, root: cur.root, parent: from}
	case doc.KindAlign:
		n := d.Columns()
		if n < 0 {
			return 0, invariantErr(InvariantNegativeIndent, "align by %d columns", n)
		}
		next = indentation{base: from, seg: strings.Repeat(" ", n), width: cur.width + n, root: cur.root, parent: from}
	case doc.KindDedent:
		if cur.parent == noIndent {
			return 0, invariantErr(InvariantNegativeIndent, "dedent at indentation width %d with no enclosing indent", cur.width)
		}
		p := t.entries[cur.parent]
		next = indentation{base: cur.parent, width: p.width, root: cur.root, parent: p.parent}
	case doc.KindDedentToRoot:
		return t.rootOf(from), nil
	case doc.KindMarkAsRoot:
		next = indentation{base: from, width: cur.width, root: from, parent: cur.parent}
	default:
		return from, nil
	}

	t.entries = append(t.entries, next)
	i := len(t.entries) - 1
	t.derived[key] = i
	return i, nil
}
