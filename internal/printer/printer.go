package printer

import "github.com/kpumuk/doc-weaver/internal/doc"

type mode uint8

const (
	modeBreak mode = iota
	modeFlat
)

// command is one pending unit of work: a node to print at an indentation in a mode.
// offset is the index of the first unprinted part of a fill.
type command struct {
	ind    int
	mode   mode
	doc    *doc.Doc
	offset int
}

// boundaryBreak is pushed by LineSuffixBoundary while suffixes are pending.
var boundaryBreak = doc.HardLine()

type printer struct {
	opts    Options
	out     *output
	indents *indentTable
	cmds    []command
	suffix  []command
	groups  map[doc.GroupID]mode
	fitsBuf []command
	seed    [3]command
}

// Print renders d with opts.
//
// The only errors are invalid options and *ErrInvariant, which reports a document
// the printer cannot render faithfully.
func Print(d doc.Doc, opts Options) (string, error) {
	norm, err := normalizeOptions(opts)
	if err != nil {
		return "", err
	}
	p := &printer{
		opts:    norm,
		out:     newOutput(norm),
		indents: newIndentTable(norm),
		groups:  make(map[doc.GroupID]mode),
	}
	return p.print(&d)
}

func (p *printer) print(root *doc.Doc) (string, error) {
	p.cmds = append(p.cmds, command{ind: 0, mode: modeBreak, doc: root})
	for {
		if len(p.cmds) == 0 {
			if len(p.suffix) == 0 {
				break
			}
			p.flushSuffixes()
			continue
		}
		c := p.cmds[len(p.cmds)-1]
		p.cmds = p.cmds[:len(p.cmds)-1]
		if err := p.step(c); err != nil {
			return "", err
		}
	}
	return p.out.finish(p.opts.TrailingNewline), nil
}

func (p *printer) push(c command) {
	p.cmds = append(p.cmds, c)
}

func (p *printer) step(c command) error {
	d := c.doc
	switch d.Kind() {
	case doc.KindEmpty, doc.KindBreakParent:
	case doc.KindText:
		p.out.text(d.Content(), d.Width(p.opts.TabWidth))
	case doc.KindConcat:
		parts := d.Parts()
		for i := len(parts) - 1; i >= 0; i-- {
			p.push(command{ind: c.ind, mode: c.mode, doc: &parts[i]})
		}
	case doc.KindIndent, doc.KindAlign, doc.KindDedent, doc.KindDedentToRoot, doc.KindMarkAsRoot:
		ind, err := p.indents.apply(c.ind, d)
		if err != nil {
			return err
		}
		p.push(command{ind: ind, mode: c.mode, doc: d.Child()})
	case doc.KindGroup:
		m := p.groupMode(c, d)
		if id := d.GroupID(); id != "" {
			p.groups[id] = m
		}
		p.push(command{ind: c.ind, mode: m, doc: d.Child()})
	case doc.KindConditionalGroup:
		p.conditionalGroup(c, d)
	case doc.KindIfBreak:
		m := c.mode
		if id := d.GroupID(); id != "" {
			resolved, ok := p.groups[id]
			if !ok {
				return invariantErr(InvariantUnknownGroup, "group %q is referenced before it is printed", id)
			}
			m = resolved
		}
		branch := d.FlatBranch()
		if m == modeBreak {
			branch = d.Child()
		}
		p.push(command{ind: c.ind, mode: c.mode, doc: branch})
	case doc.KindFill:
		p.fill(c, d)
	case doc.KindLineSuffix:
		p.suffix = append(p.suffix, command{ind: c.ind, mode: c.mode, doc: d.Child()})
	case doc.KindLineSuffixBoundary:
		if len(p.suffix) > 0 {
			p.push(command{ind: c.ind, mode: modeBreak, doc: &boundaryBreak})
		}
	case doc.KindTrim:
		p.out.trim()
	case doc.KindLine:
		return p.line(c, d)
	}
	return nil
}

func (p *printer) remaining() int {
	return p.opts.MaxWidth - p.out.column
}

func (p *printer) groupMode(c command, d *doc.Doc) mode {
	if d.ForcesBreak() {
		return modeBreak
	}
	if c.mode == modeFlat {
		return modeFlat
	}
	next := p.seed[:1]
	next[0] = command{ind: c.ind, mode: modeFlat, doc: d.Child()}
	if p.fits(next, p.cmds, p.remaining(), len(p.suffix) > 0, false) {
		return modeFlat
	}
	return modeBreak
}

// conditionalGroup prints the first alternative that fits flat, or the last one
// broken when none does.
func (p *printer) conditionalGroup(c command, d *doc.Doc) {
	alts := d.Parts()
	if c.mode == modeFlat {
		p.push(command{ind: c.ind, mode: modeFlat, doc: &alts[0]})
		return
	}
	next := p.seed[:1]
	for i := range alts {
		next[0] = command{ind: c.ind, mode: modeFlat, doc: &alts[i]}
		if p.fits(next, p.cmds, p.remaining(), len(p.suffix) > 0, true) {
			p.push(next[0])
			return
		}
	}
	p.push(command{ind: c.ind, mode: modeBreak, doc: &alts[len(alts)-1]})
}

// fill decides the separator after the next content item and re-queues the rest
// of the fill behind it.
func (p *printer) fill(c command, d *doc.Doc) {
	parts := d.Parts()
	n := len(parts) - c.offset
	if n <= 0 {
		return
	}
	rem := p.remaining()
	hasSuffix := len(p.suffix) > 0

	content := command{ind: c.ind, mode: modeFlat, doc: &parts[c.offset]}
	contentBreak := content
	contentBreak.mode = modeBreak
	next := p.seed[:1]
	next[0] = content
	contentFits := p.fits(next, nil, rem, hasSuffix, true)
	if n == 1 {
		if contentFits {
			p.push(content)
		} else {
			p.push(contentBreak)
		}
		return
	}

	sep := command{ind: c.ind, mode: modeFlat, doc: &parts[c.offset+1]}
	sepBreak := sep
	sepBreak.mode = modeBreak
	if n == 2 {
		switch {
		case !contentFits:
			p.push(sepBreak)
			p.push(contentBreak)
		case sep.doc.ForcesBreak():
			p.push(sepBreak)
			p.push(content)
		default:
			p.push(sep)
			p.push(content)
		}
		return
	}

	rest := command{ind: c.ind, mode: c.mode, doc: d, offset: c.offset + 2}
	pair := p.seed[:3]
	pair[0], pair[1] = content, sep
	pair[2] = command{ind: c.ind, mode: modeFlat, doc: &parts[c.offset+2]}
	pairFits := p.fits(pair, nil, rem, hasSuffix, true)

	p.push(rest)
	switch {
	case pairFits:
		p.push(sep)
		p.push(content)
	case contentFits:
		p.push(sepBreak)
		p.push(content)
	default:
		p.push(sepBreak)
		p.push(contentBreak)
	}
}

func (p *printer) line(c command, d *doc.Doc) error {
	kind := d.LineKind()
	if c.mode == modeFlat {
		switch kind {
		case doc.LineSoft:
			return nil
		case doc.LineSpace:
			p.out.text(" ", 1)
			return nil
		default:
			return invariantErr(InvariantFlatHardLine, "%s line reached in flat mode", kind)
		}
	}
	if len(p.suffix) > 0 {
		p.push(c)
		p.flushSuffixes()
		return nil
	}
	if kind == doc.LineLiteral {
		root := p.indents.rootOf(c.ind)
		p.out.newlineIndent(p.indents.value(root), p.indents.width(root))
		return nil
	}
	p.out.newlineIndent(p.indents.value(c.ind), p.indents.width(c.ind))
	return nil
}

// flushSuffixes queues pending line suffixes so they print in the order they were
// deferred, ahead of everything already on the stack.
func (p *printer) flushSuffixes() {
	for i := len(p.suffix) - 1; i >= 0; i-- {
		p.push(p.suffix[i])
	}
	p.suffix = p.suffix[:0]
}
