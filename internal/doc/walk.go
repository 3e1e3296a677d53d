package doc

import (
	"strconv"
	"strings"
)

// Segment is one node on a Path together with the edge taken out of it.
type Segment struct {
	Kind   Kind
	Index  int    // part index for concat, fill and conditional groups; -1 otherwise
	Branch string // "break" or "flat" for IfBreak; empty otherwise
}

// Path locates a node from the root of a document, for example
// "concat[2].group.ifBreak.break.text".
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Kind.String())
		if s.Index >= 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		}
		if s.Branch != "" {
			b.WriteByte('.')
			b.WriteString(s.Branch)
		}
	}
	return b.String()
}

// Clone returns a copy of p that stays valid after Walk moves on.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// Visitor receives nodes in document order. Enter returning false skips the
// node's children. Either callback may be nil. The Path passed to the callbacks is
// reused by Walk; Clone it to retain it.
type Visitor struct {
	Enter func(d *Doc, path Path) bool
	Leave func(d *Doc, path Path)
}

type walkFrame struct {
	node   *Doc
	depth  int
	leave  bool
	index  int
	branch string
}

// Walk visits d and its descendants depth-first using an explicit stack, so deep
// documents do not grow the goroutine stack.
func Walk(d *Doc, v Visitor) {
	if d == nil {
		return
	}
	var path Path
	stack := []walkFrame{{node: d, index: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.leave {
			path = path[:f.depth+1]
			path[f.depth].Index = -1
			path[f.depth].Branch = ""
			if v.Leave != nil {
				v.Leave(f.node, path)
			}
			continue
		}

		path = path[:f.depth]
		if f.depth > 0 {
			path[f.depth-1].Index = f.index
			path[f.depth-1].Branch = f.branch
		}
		path = append(path, Segment{Kind: f.node.kind, Index: -1})
		if v.Enter != nil && !v.Enter(f.node, path) {
			continue
		}
		stack = append(stack, walkFrame{node: f.node, depth: f.depth, leave: true})
		stack = pushChildren(stack, f.node, f.depth+1)
	}
}

func pushChildren(stack []walkFrame, d *Doc, depth int) []walkFrame {
	switch d.kind {
	case KindConcat, KindFill, KindConditionalGroup:
		for i := len(d.list) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{node: &d.list[i], depth: depth, index: i})
		}
	case KindIfBreak:
		if d.flat != nil {
			stack = append(stack, walkFrame{node: d.flat, depth: depth, index: -1, branch: "flat"})
		}
		if d.child != nil {
			stack = append(stack, walkFrame{node: d.child, depth: depth, index: -1, branch: "break"})
		}
	default:
		if d.child != nil {
			stack = append(stack, walkFrame{node: d.child, depth: depth, index: -1})
		}
	}
	return stack
}
