package printer

import "github.com/kpumuk/doc-weaver/internal/doc"

// fits reports whether the commands in next, followed by the pending commands in
// rest, can be printed up to the next line break within width columns.
//
// next is walked first, in order, in the modes it carries. When it runs out, rest
// is consumed from the top of the stack. mustBeFlat holds for rest as well, so a
// forced group printed on the same line rejects the flat attempt. A line break in
// break mode ends the measured line, so text after it never counts.
// fits never changes printer state other than its scratch stack.
func (p *printer) fits(next []command, rest []command, width int, hasLineSuffix, mustBeFlat bool) bool {
	if width < 0 {
		return false
	}

	stack := p.fitsBuf[:0]
	defer func() { p.fitsBuf = stack[:0] }()
	for i := len(next) - 1; i >= 0; i-- {
		stack = append(stack, next[i])
	}
	restIdx := len(rest)
	// Whitespace a Trim could give back, starting with what is already on the line.
	trailing := p.out.trailingWhitespace()
	tabWidth := p.opts.TabWidth

	for width >= 0 {
		if len(stack) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			stack = append(stack, rest[restIdx])
			continue
		}

		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d := c.doc

		switch d.Kind() {
		case doc.KindText:
			w := d.Width(tabWidth)
			width -= w
			if ws := trailingWhitespaceWidth(d.Content(), tabWidth); ws == w {
				trailing += ws
			} else {
				trailing = ws
			}
		case doc.KindConcat, doc.KindFill:
			parts := d.Parts()
			for i := len(parts) - 1; i >= c.offset; i-- {
				stack = append(stack, command{mode: c.mode, doc: &parts[i]})
			}
		case doc.KindIndent, doc.KindAlign, doc.KindDedent, doc.KindDedentToRoot, doc.KindMarkAsRoot:
			stack = append(stack, command{mode: c.mode, doc: d.Child()})
		case doc.KindTrim:
			width += trailing
			trailing = 0
		case doc.KindGroup:
			if mustBeFlat && d.ForcesBreak() {
				return false
			}
			m := c.mode
			if d.ForcesBreak() {
				m = modeBreak
			}
			stack = append(stack, command{mode: m, doc: d.Child()})
		case doc.KindConditionalGroup:
			if mustBeFlat && d.ForcesBreak() {
				return false
			}
			alts := d.Parts()
			m, alt := c.mode, &alts[0]
			if d.ForcesBreak() {
				m, alt = modeBreak, &alts[len(alts)-1]
			}
			stack = append(stack, command{mode: m, doc: alt})
		case doc.KindIfBreak:
			m := c.mode
			if id := d.GroupID(); id != "" {
				// Groups not printed yet are measured as flat.
				m = modeFlat
				if resolved, ok := p.groups[id]; ok {
					m = resolved
				}
			}
			branch := d.FlatBranch()
			if m == modeBreak {
				branch = d.Child()
			}
			stack = append(stack, command{mode: c.mode, doc: branch})
		case doc.KindLine:
			if c.mode == modeBreak {
				return true
			}
			switch d.LineKind() {
			case doc.LineHard, doc.LineLiteral:
				return !mustBeFlat
			case doc.LineSpace:
				width--
				trailing++
			}
		case doc.KindLineSuffix:
			hasLineSuffix = true
		case doc.KindLineSuffixBoundary:
			if hasLineSuffix {
				return !mustBeFlat
			}
		}
	}
	return false
}

func trailingWhitespaceWidth(s string, tabWidth int) int {
	width := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		default:
			return width
		}
	}
	return width
}
