package doc

import (
	"strconv"
	"strings"
)

// dumpItem is either a node still to be rendered or literal dump output.
type dumpItem struct {
	node *Doc
	lit  string
}

// String renders the document structure in a compact builder-like notation, for
// example `group(["a", softline, "b"])`. It is intended for debugging and tests.
func (d *Doc) String() string {
	var b strings.Builder
	stack := []dumpItem{{node: d}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.node == nil {
			b.WriteString(it.lit)
			continue
		}
		stack = dumpNode(&b, stack, it.node)
	}
	return b.String()
}

func dumpNode(b *strings.Builder, stack []dumpItem, d *Doc) []dumpItem {
	switch d.kind {
	case KindEmpty:
		b.WriteString(`""`)
	case KindText:
		b.WriteString(strconv.Quote(d.text))
	case KindLine:
		switch d.line {
		case LineSoft:
			b.WriteString("softline")
		case LineSpace:
			b.WriteString("line")
		case LineHard:
			b.WriteString("hardline")
		case LineLiteral:
			b.WriteString("literalline")
		}
	case KindConcat:
		stack = dumpList(b, stack, "", d.list, "")
	case KindFill:
		stack = dumpList(b, stack, "fill(", d.list, ")")
	case KindConditionalGroup:
		stack = dumpList(b, stack, "conditionalGroup(", d.list, ")")
	case KindAlign:
		b.WriteString("align(")
		b.WriteString(strconv.Itoa(d.cols))
		b.WriteString(", ")
		stack = append(stack, dumpItem{lit: ")"}, dumpItem{node: d.child})
	case KindGroup:
		b.WriteString("group(")
		stack = append(stack, dumpItem{lit: groupAttrs(d) + ")"}, dumpItem{node: d.child})
	case KindIfBreak:
		b.WriteString("ifBreak(")
		suffix := ")"
		if d.id != "" {
			suffix = ", {groupId: " + strconv.Quote(string(d.id)) + "})"
		}
		stack = append(stack,
			dumpItem{lit: suffix},
			dumpItem{node: d.flat},
			dumpItem{lit: ", "},
			dumpItem{node: d.child},
		)
	case KindLineSuffixBoundary, KindBreakParent, KindTrim:
		b.WriteString(d.kind.String())
	default:
		b.WriteString(d.kind.String())
		b.WriteByte('(')
		stack = append(stack, dumpItem{lit: ")"}, dumpItem{node: d.child})
	}
	return stack
}

func dumpList(b *strings.Builder, stack []dumpItem, open string, list []Doc, close string) []dumpItem {
	b.WriteString(open)
	b.WriteByte('[')
	stack = append(stack, dumpItem{lit: "]" + close})
	for i := len(list) - 1; i >= 0; i-- {
		stack = append(stack, dumpItem{node: &list[i]})
		if i > 0 {
			stack = append(stack, dumpItem{lit: ", "})
		}
	}
	return stack
}

func groupAttrs(d *Doc) string {
	var attrs []string
	if d.id != "" {
		attrs = append(attrs, "id: "+strconv.Quote(string(d.id)))
	}
	if d.brk {
		attrs = append(attrs, "shouldBreak: true")
	}
	if len(attrs) == 0 {
		return ""
	}
	return ", {" + strings.Join(attrs, ", ") + "}"
}
