// Package doc defines the immutable layout document consumed by the printer.
//
// A Doc is built bottom-up with the constructors in this package and is never
// modified afterwards, so one tree can be printed by several printers at once.
// Constructors cache the facts the printer needs repeatedly: the display width of
// text leaves and whether a subtree forces its enclosing groups to break.
package doc

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/kpumuk/doc-weaver/internal/text"
)

// Kind identifies a document node kind.
type Kind uint8

// Node kinds.
const (
	KindEmpty Kind = iota
	KindText
	KindLine
	KindConcat
	KindIndent
	KindAlign
	KindDedent
	KindDedentToRoot
	KindMarkAsRoot
	KindGroup
	KindConditionalGroup
	KindIfBreak
	KindFill
	KindLineSuffix
	KindLineSuffixBoundary
	KindBreakParent
	KindTrim
)

var kindNames = [...]string{
	KindEmpty:              "empty",
	KindText:               "text",
	KindLine:               "line",
	KindConcat:             "concat",
	KindIndent:             "indent",
	KindAlign:              "align",
	KindDedent:             "dedent",
	KindDedentToRoot:       "dedentToRoot",
	KindMarkAsRoot:         "markAsRoot",
	KindGroup:              "group",
	KindConditionalGroup:   "conditionalGroup",
	KindIfBreak:            "ifBreak",
	KindFill:               "fill",
	KindLineSuffix:         "lineSuffix",
	KindLineSuffixBoundary: "lineSuffixBoundary",
	KindBreakParent:        "breakParent",
	KindTrim:               "trim",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// LineKind selects how a line node renders.
type LineKind uint8

const (
	// LineSoft renders nothing when flat and a newline when broken.
	LineSoft LineKind = iota
	// LineSpace renders a single space when flat and a newline when broken.
	LineSpace
	// LineHard always renders a newline and breaks every enclosing group.
	LineHard
	// LineLiteral always renders a newline followed only by the root indentation.
	LineLiteral
)

var lineKindNames = [...]string{
	LineSoft:    "soft",
	LineSpace:   "line",
	LineHard:    "hard",
	LineLiteral: "literal",
}

func (k LineKind) String() string {
	if int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return "unknown"
}

// IsHard reports whether the line always breaks.
func (k LineKind) IsHard() bool {
	return k == LineHard || k == LineLiteral
}

// ParseLineKind resolves the names returned by LineKind.String.
func ParseLineKind(s string) (LineKind, bool) {
	for k, name := range lineKindNames {
		if name == s {
			return LineKind(k), true
		}
	}
	return 0, false
}

// GroupID names a group so that IfBreak nodes elsewhere can refer to its mode.
// The zero value is an anonymous group.
type GroupID string

// Doc is a document node.
type Doc struct {
	kind   Kind
	line   LineKind
	brk    bool // group: break requested by the builder
	forced bool // subtree forces every enclosing group to break
	cols   int  // align: columns
	width  int  // text: display width, tabs excluded
	tabs   int  // text: tab count
	text   string
	id     GroupID
	span   text.Span
	child  *Doc // indent/align/group/lineSuffix content, ifBreak break branch
	flat   *Doc // ifBreak flat branch
	list   []Doc
}

// Kind returns the node kind.
func (d *Doc) Kind() Kind { return d.kind }

// Content returns the literal content of a text node.
func (d *Doc) Content() string { return d.text }

// Span returns the source span attached to a text node, if any.
func (d *Doc) Span() text.Span { return d.span }

// LineKind returns the kind of a line node.
func (d *Doc) LineKind() LineKind { return d.line }

// Columns returns the column count of an align node.
func (d *Doc) Columns() int { return d.cols }

// GroupID returns the id of a group, or the referenced group of an IfBreak node.
func (d *Doc) GroupID() GroupID { return d.id }

// ShouldBreak reports whether the builder requested a group to break.
func (d *Doc) ShouldBreak() bool { return d.brk }

// ForcesBreak reports whether the node contains a hard line, a break-parent marker,
// or a group that must break, so that every group around it must break too.
func (d *Doc) ForcesBreak() bool { return d.forced }

// Child returns the wrapped content of single-child nodes and the break branch of
// an IfBreak node. It returns nil for other kinds.
func (d *Doc) Child() *Doc { return d.child }

// FlatBranch returns the flat branch of an IfBreak node.
func (d *Doc) FlatBranch() *Doc { return d.flat }

// Parts returns the parts of a concat or fill, or the alternatives of a
// conditional group. The slice must not be modified.
func (d *Doc) Parts() []Doc { return d.list }

// Width returns the display width of a text node with tabs expanded to tabWidth columns.
func (d *Doc) Width(tabWidth int) int { return d.width + d.tabs*tabWidth }

// IsEmpty reports whether d renders nothing.
func (d *Doc) IsEmpty() bool { return d.kind == KindEmpty }

// Empty returns an empty document.
func Empty() Doc { return Doc{kind: KindEmpty} }

// Text returns a text document. Text should not contain newlines; use HardLine or
// LiteralLine instead so that the printer can track columns.
func Text(s string) Doc {
	return TextAt(s, text.Span{})
}

// TextAt returns a text document carrying the source span it was built from.
func TextAt(s string, span text.Span) Doc {
	if s == "" {
		return Empty()
	}
	width, tabs := measure(s)
	return Doc{kind: KindText, text: s, width: width, tabs: tabs, span: span}
}

func measure(s string) (width, tabs int) {
	tabs = strings.Count(s, "\t")
	if tabs > 0 {
		s = strings.ReplaceAll(s, "\t", "")
	}
	return uniseg.StringWidth(s), tabs
}

// SoftLine returns a line that renders as nothing when its group is flat.
func SoftLine() Doc { return Doc{kind: KindLine, line: LineSoft} }

// Line returns a line that renders as a single space when its group is flat.
func Line() Doc { return Doc{kind: KindLine, line: LineSpace} }

// HardLine returns an unconditional line break.
func HardLine() Doc { return Doc{kind: KindLine, line: LineHard, forced: true} }

// LiteralLine returns an unconditional line break that is not re-indented.
// Only the root indentation set by MarkAsRoot is written after it.
func LiteralLine() Doc { return Doc{kind: KindLine, line: LineLiteral, forced: true} }

// LineOf returns the line document of kind k.
func LineOf(k LineKind) Doc {
	return Doc{kind: KindLine, line: k, forced: k.IsHard()}
}

// Concat concatenates documents in order.
func Concat(parts ...Doc) Doc {
	filtered := make([]Doc, 0, len(parts))
	forced := false
	for _, p := range parts {
		if p.kind == KindEmpty {
			continue
		}
		forced = forced || p.forced
		if p.kind == KindConcat {
			filtered = append(filtered, p.list...)
			continue
		}
		filtered = append(filtered, p)
	}
	switch len(filtered) {
	case 0:
		return Empty()
	case 1:
		return filtered[0]
	default:
		return Doc{kind: KindConcat, list: filtered, forced: forced}
	}
}

// Join concatenates parts with sep between each pair.
func Join(sep Doc, parts ...Doc) Doc {
	out := make([]Doc, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return Concat(out...)
}

func wrap(kind Kind, d Doc) Doc {
	return Doc{kind: kind, child: &d, forced: d.forced}
}

// Indent increases indentation by one unit for line breaks inside doc.
func Indent(d Doc) Doc {
	if d.kind == KindEmpty {
		return d
	}
	return wrap(KindIndent, d)
}

// Align increases indentation by n columns for line breaks inside doc.
// Alignment is always rendered with spaces.
func Align(n int, d Doc) Doc {
	if d.kind == KindEmpty {
		return d
	}
	out := wrap(KindAlign, d)
	out.cols = n
	return out
}

// Dedent removes the innermost Indent or Align for line breaks inside doc.
func Dedent(d Doc) Doc {
	if d.kind == KindEmpty {
		return d
	}
	return wrap(KindDedent, d)
}

// DedentToRoot resets indentation inside doc to the root set by MarkAsRoot,
// or to column zero.
func DedentToRoot(d Doc) Doc {
	if d.kind == KindEmpty {
		return d
	}
	return wrap(KindDedentToRoot, d)
}

// MarkAsRoot makes the current indentation the root for literal lines inside doc.
func MarkAsRoot(d Doc) Doc {
	if d.kind == KindEmpty {
		return d
	}
	return wrap(KindMarkAsRoot, d)
}

// GroupOption configures a group.
type GroupOption func(*Doc)

// WithID names the group so IfGroupBreaks and IndentIfBreak can refer to it.
func WithID(id GroupID) GroupOption {
	return func(d *Doc) { d.id = id }
}

// ShouldBreak forces the group, and every group around it, into break mode.
func ShouldBreak() GroupOption {
	return func(d *Doc) { d.brk = true }
}

// BreakIf forces the group into break mode when brk is true.
func BreakIf(brk bool) GroupOption {
	return func(d *Doc) { d.brk = d.brk || brk }
}

// Group attempts to render doc on one line and falls back to line breaks when needed.
func Group(d Doc, opts ...GroupOption) Doc {
	g := wrap(KindGroup, d)
	for _, opt := range opts {
		opt(&g)
	}
	if d.kind == KindEmpty && g.id == "" && !g.brk {
		return d
	}
	g.forced = g.brk || d.forced
	return g
}

// ConditionalGroup renders the first alternative that fits on the line in flat
// mode, or the last alternative in break mode when none does.
//
// Only the first alternative propagates forced breaks to enclosing groups: it is
// the one rendered when the conditional group itself is printed flat.
func ConditionalGroup(alts ...Doc) Doc {
	switch len(alts) {
	case 0:
		return Empty()
	case 1:
		return Group(alts[0])
	}
	list := make([]Doc, len(alts))
	copy(list, alts)
	return Doc{kind: KindConditionalGroup, list: list, forced: list[0].forced}
}

// IfBreak renders breakDoc when the enclosing group is broken and flatDoc otherwise.
func IfBreak(breakDoc, flatDoc Doc) Doc {
	return IfGroupBreaks("", breakDoc, flatDoc)
}

// IfGroupBreaks renders breakDoc when the group named id is broken and flatDoc
// otherwise. The group must be printed before this node.
func IfGroupBreaks(id GroupID, breakDoc, flatDoc Doc) Doc {
	return Doc{
		kind:   KindIfBreak,
		id:     id,
		child:  &breakDoc,
		flat:   &flatDoc,
		forced: breakDoc.forced || flatDoc.forced,
	}
}

// IndentIfBreak indents doc only when the group named id is broken.
func IndentIfBreak(id GroupID, d Doc) Doc {
	return IfGroupBreaks(id, Indent(d), d)
}

// Fill packs content onto lines. Parts alternate content and separator; each
// separator breaks only when the content after it does not fit on the line.
func Fill(parts ...Doc) Doc {
	if len(parts) == 0 {
		return Empty()
	}
	list := make([]Doc, len(parts))
	copy(list, parts)
	forced := false
	for i := range list {
		forced = forced || list[i].forced
	}
	return Doc{kind: KindFill, list: list, forced: forced}
}

// LineSuffix defers doc until just before the next line break.
func LineSuffix(d Doc) Doc {
	if d.kind == KindEmpty {
		return d
	}
	return wrap(KindLineSuffix, d)
}

// LineSuffixBoundary forces a line break when line suffixes are pending.
func LineSuffixBoundary() Doc { return Doc{kind: KindLineSuffixBoundary} }

// BreakParent forces every enclosing group into break mode.
func BreakParent() Doc { return Doc{kind: KindBreakParent, forced: true} }

// Trim removes whitespace already written at the end of the current line.
func Trim() Doc { return Doc{kind: KindTrim} }
