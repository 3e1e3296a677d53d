package docyaml

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/text"
)

// Node kind keys.
const (
	keyText               = "text"
	keySpan               = "span"
	keyLine               = "line"
	keyConcat             = "concat"
	keyIndent             = "indent"
	keyAlign              = "align"
	keyDedent             = "dedent"
	keyDedentToRoot       = "dedentToRoot"
	keyMarkAsRoot         = "markAsRoot"
	keyGroup              = "group"
	keyConditionalGroup   = "conditionalGroup"
	keyIfBreak            = "ifBreak"
	keyIndentIfBreak      = "indentIfBreak"
	keyFill               = "fill"
	keyLineSuffix         = "lineSuffix"
	keyLineSuffixBoundary = "lineSuffixBoundary"
	keyBreakParent        = "breakParent"
	keyTrim               = "trim"

	keyOptions = "options"
	keyDoc     = "doc"
	keyID      = "id"
	keyBreak   = "break"
	keyFlat    = "flat"
	keyWidth   = "width"
)

var optionKeys = []string{"max_width", "indent_width", "use_tabs", "tab_width", "trailing_newline", "newline"}

// Decode parses a document file.
func Decode(data []byte) (File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return File{}, fmt.Errorf("parse document: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return File{Doc: doc.Empty()}, nil
	}

	d := newDecoder()
	top := resolveAlias(root.Content[0])
	if !isEnvelope(top) {
		body, err := d.node(top)
		if err != nil {
			return File{}, err
		}
		return File{Doc: body}, nil
	}

	var f File
	f.Doc = doc.Empty()
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case keyOptions:
			opts, err := decodeOverrides(val)
			if err != nil {
				return File{}, err
			}
			f.Options = opts
		case keyDoc:
			body, err := d.node(val)
			if err != nil {
				return File{}, err
			}
			f.Doc = body
		default:
			return File{}, errorf(key, "unknown envelope key %q (want options or doc)", key.Value)
		}
	}
	return f, nil
}

// DecodeDoc parses a document file and returns only its document.
func DecodeDoc(data []byte) (doc.Doc, error) {
	f, err := Decode(data)
	if err != nil {
		return doc.Empty(), err
	}
	return f.Doc, nil
}

func isEnvelope(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == keyDoc {
			return true
		}
	}
	return false
}

func decodeOverrides(n *yaml.Node) (Overrides, error) {
	n = resolveAlias(n)
	if isNull(n) {
		return Overrides{}, nil
	}
	if err := checkKeys(n, optionKeys...); err != nil {
		return Overrides{}, err
	}
	var o Overrides
	if err := n.Decode(&o); err != nil {
		return Overrides{}, fmt.Errorf("decode options: %w", err)
	}
	if o.Newline != nil && *o.Newline != NewlineLF && *o.Newline != NewlineCRLF {
		return Overrides{}, errorf(n, "invalid newline %q (want %s or %s)", *o.Newline, NewlineLF, NewlineCRLF)
	}
	return o, nil
}

type decoder struct {
	// Anchored nodes decode once and are shared by every alias.
	anchors map[*yaml.Node]doc.Doc
	active  map[*yaml.Node]bool
}

func newDecoder() *decoder {
	return &decoder{
		anchors: make(map[*yaml.Node]doc.Doc),
		active:  make(map[*yaml.Node]bool),
	}
}

func (d *decoder) node(n *yaml.Node) (doc.Doc, error) {
	if n.Kind == yaml.AliasNode {
		target := n.Alias
		if d.active[target] {
			return doc.Empty(), errorf(n, "recursive alias *%s", n.Value)
		}
		if cached, ok := d.anchors[target]; ok {
			return cached, nil
		}
		d.active[target] = true
		out, err := d.node(target)
		delete(d.active, target)
		if err != nil {
			return doc.Empty(), err
		}
		d.anchors[target] = out
		return out, nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		if isNull(n) {
			return doc.Empty(), nil
		}
		return doc.Text(n.Value), nil
	case yaml.SequenceNode:
		parts, err := d.list(n)
		if err != nil {
			return doc.Empty(), err
		}
		return doc.Concat(parts...), nil
	case yaml.MappingNode:
		return d.mapping(n)
	default:
		return doc.Empty(), errorf(n, "unsupported YAML node")
	}
}

func (d *decoder) list(n *yaml.Node) ([]doc.Doc, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected a sequence")
	}
	parts := make([]doc.Doc, 0, len(n.Content))
	for _, c := range n.Content {
		p, err := d.node(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func (d *decoder) mapping(n *yaml.Node) (doc.Doc, error) {
	if len(n.Content) == 0 {
		return doc.Empty(), errorf(n, "empty mapping is not a node")
	}
	key, val := n.Content[0], n.Content[1]

	if key.Value == keyText || key.Value == keySpan {
		return d.text(n)
	}
	if len(n.Content) > 2 {
		return doc.Empty(), errorf(n.Content[2], "node %q has extra key %q", key.Value, n.Content[2].Value)
	}

	switch key.Value {
	case keyLine:
		var name string
		if err := val.Decode(&name); err != nil {
			return doc.Empty(), fmt.Errorf("decode line kind: %w", err)
		}
		kind, ok := doc.ParseLineKind(name)
		if !ok {
			return doc.Empty(), errorf(val, "unknown line kind %q (want soft, line, hard or literal)", name)
		}
		return doc.LineOf(kind), nil
	case keyConcat:
		parts, err := d.list(val)
		if err != nil {
			return doc.Empty(), err
		}
		return doc.Concat(parts...), nil
	case keyIndent, keyDedent, keyDedentToRoot, keyMarkAsRoot, keyLineSuffix:
		child, err := d.node(val)
		if err != nil {
			return doc.Empty(), err
		}
		return wrapperFor(key.Value)(child), nil
	case keyAlign:
		return d.align(val)
	case keyGroup:
		return d.group(val)
	case keyConditionalGroup:
		alts, err := d.list(val)
		if err != nil {
			return doc.Empty(), err
		}
		return doc.ConditionalGroup(alts...), nil
	case keyIfBreak:
		return d.ifBreak(val)
	case keyIndentIfBreak:
		return d.indentIfBreak(val)
	case keyFill:
		parts, err := d.list(val)
		if err != nil {
			return doc.Empty(), err
		}
		return doc.Fill(parts...), nil
	case keyLineSuffixBoundary, keyBreakParent, keyTrim:
		var on bool
		if err := val.Decode(&on); err != nil || !on {
			return doc.Empty(), errorf(val, "%s takes the value true", key.Value)
		}
		switch key.Value {
		case keyLineSuffixBoundary:
			return doc.LineSuffixBoundary(), nil
		case keyBreakParent:
			return doc.BreakParent(), nil
		default:
			return doc.Trim(), nil
		}
	default:
		return doc.Empty(), errorf(key, "unknown node kind %q", key.Value)
	}
}

func wrapperFor(key string) func(doc.Doc) doc.Doc {
	switch key {
	case keyIndent:
		return doc.Indent
	case keyDedent:
		return doc.Dedent
	case keyDedentToRoot:
		return doc.DedentToRoot
	case keyMarkAsRoot:
		return doc.MarkAsRoot
	default:
		return doc.LineSuffix
	}
}

func (d *decoder) text(n *yaml.Node) (doc.Doc, error) {
	if err := checkKeys(n, keyText, keySpan); err != nil {
		return doc.Empty(), err
	}
	var (
		s    string
		span text.Span
		seen bool
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case keyText:
			if err := val.Decode(&s); err != nil {
				return doc.Empty(), fmt.Errorf("decode text: %w", err)
			}
			seen = true
		case keySpan:
			var bounds []int
			if err := val.Decode(&bounds); err != nil {
				return doc.Empty(), fmt.Errorf("decode span: %w", err)
			}
			if len(bounds) != 2 {
				return doc.Empty(), errorf(val, "span needs [start, end], got %d values", len(bounds))
			}
			span = text.Span{Start: text.ByteOffset(bounds[0]), End: text.ByteOffset(bounds[1])}
			if err := span.Validate(); err != nil {
				return doc.Empty(), errorf(val, "invalid span: %v", err)
			}
		}
	}
	if !seen {
		return doc.Empty(), errorf(n, "span without text")
	}
	return doc.TextAt(s, span), nil
}

func (d *decoder) align(n *yaml.Node) (doc.Doc, error) {
	n = resolveAlias(n)
	if err := checkKeys(n, keyWidth, keyDoc); err != nil {
		return doc.Empty(), err
	}
	width := 0
	child := doc.Empty()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case keyWidth:
			if err := val.Decode(&width); err != nil {
				return doc.Empty(), fmt.Errorf("decode align width: %w", err)
			}
		case keyDoc:
			c, err := d.node(val)
			if err != nil {
				return doc.Empty(), err
			}
			child = c
		}
	}
	return doc.Align(width, child), nil
}

// group accepts either a node or a {id, break, doc} mapping.
func (d *decoder) group(n *yaml.Node) (doc.Doc, error) {
	target := resolveAlias(n)
	if !isGroupSpec(target) {
		child, err := d.node(n)
		if err != nil {
			return doc.Empty(), err
		}
		return doc.Group(child), nil
	}

	child := doc.Empty()
	var opts []doc.GroupOption
	for i := 0; i+1 < len(target.Content); i += 2 {
		key, val := target.Content[i], target.Content[i+1]
		switch key.Value {
		case keyID:
			var id string
			if err := val.Decode(&id); err != nil {
				return doc.Empty(), fmt.Errorf("decode group id: %w", err)
			}
			opts = append(opts, doc.WithID(doc.GroupID(id)))
		case keyBreak:
			var brk bool
			if err := val.Decode(&brk); err != nil {
				return doc.Empty(), fmt.Errorf("decode group break: %w", err)
			}
			opts = append(opts, doc.BreakIf(brk))
		case keyDoc:
			c, err := d.node(val)
			if err != nil {
				return doc.Empty(), err
			}
			child = c
		}
	}
	return doc.Group(child, opts...), nil
}

func isGroupSpec(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		return false
	}
	for i := 0; i < len(n.Content); i += 2 {
		if !slices.Contains([]string{keyID, keyBreak, keyDoc}, n.Content[i].Value) {
			return false
		}
	}
	return true
}

func (d *decoder) ifBreak(n *yaml.Node) (doc.Doc, error) {
	n = resolveAlias(n)
	if err := checkKeys(n, keyBreak, keyFlat, keyGroup); err != nil {
		return doc.Empty(), err
	}
	var id string
	var err error
	brk, flat := doc.Empty(), doc.Empty()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case keyBreak:
			brk, err = d.node(val)
		case keyFlat:
			flat, err = d.node(val)
		case keyGroup:
			err = val.Decode(&id)
		}
		if err != nil {
			return doc.Empty(), err
		}
	}
	return doc.IfGroupBreaks(doc.GroupID(id), brk, flat), nil
}

func (d *decoder) indentIfBreak(n *yaml.Node) (doc.Doc, error) {
	n = resolveAlias(n)
	if err := checkKeys(n, keyGroup, keyDoc); err != nil {
		return doc.Empty(), err
	}
	var id string
	var err error
	child := doc.Empty()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case keyGroup:
			err = val.Decode(&id)
		case keyDoc:
			child, err = d.node(val)
		}
		if err != nil {
			return doc.Empty(), err
		}
	}
	if id == "" {
		return doc.Empty(), errorf(n, "indentIfBreak needs a group")
	}
	return doc.IndentIfBreak(doc.GroupID(id), child), nil
}

func checkKeys(n *yaml.Node, allowed ...string) error {
	if n.Kind != yaml.MappingNode {
		return errorf(n, "expected a mapping with keys %s", strings.Join(allowed, ", "))
	}
	for i := 0; i < len(n.Content); i += 2 {
		if !slices.Contains(allowed, n.Content[i].Value) {
			return errorf(n.Content[i], "unknown key %q (want %s)", n.Content[i].Value, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func errorf(n *yaml.Node, format string, args ...any) error {
	return &Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}
