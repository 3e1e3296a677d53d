package docyaml

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

// Encode writes d in canonical form. Decoding the result yields an equivalent document.
func Encode(d doc.Doc) ([]byte, error) {
	return marshal(encodeNode(&d))
}

// EncodeFile writes f, using the envelope form only when options are set.
func EncodeFile(f File) ([]byte, error) {
	body := encodeNode(&f.Doc)
	if f.Options.IsZero() {
		return marshal(body)
	}
	var opts yaml.Node
	if err := opts.Encode(f.Options); err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	opts.Style = yaml.FlowStyle
	return marshal(mapping(str(keyOptions), &opts, str(keyDoc), body))
}

func marshal(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeNode(d *doc.Doc) *yaml.Node {
	switch d.Kind() {
	case doc.KindEmpty:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case doc.KindText:
		if d.Span().IsZero() {
			return str(d.Content())
		}
		span := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: []*yaml.Node{
			integer(int(d.Span().Start)),
			integer(int(d.Span().End)),
		}}
		return mapping(str(keyText), str(d.Content()), str(keySpan), span)
	case doc.KindLine:
		return flowMapping(keyLine, str(d.LineKind().String()))
	case doc.KindConcat:
		return sequence(d.Parts())
	case doc.KindIndent, doc.KindDedent, doc.KindDedentToRoot, doc.KindMarkAsRoot, doc.KindLineSuffix:
		return mapping(str(d.Kind().String()), encodeNode(d.Child()))
	case doc.KindAlign:
		return mapping(str(keyAlign), mapping(str(keyWidth), integer(d.Columns()), str(keyDoc), encodeNode(d.Child())))
	case doc.KindGroup:
		if d.GroupID() == "" && !d.ShouldBreak() {
			return mapping(str(keyGroup), encodeNode(d.Child()))
		}
		var kv []*yaml.Node
		if d.GroupID() != "" {
			kv = append(kv, str(keyID), str(string(d.GroupID())))
		}
		if d.ShouldBreak() {
			kv = append(kv, str(keyBreak), boolean(true))
		}
		kv = append(kv, str(keyDoc), encodeNode(d.Child()))
		return mapping(str(keyGroup), mapping(kv...))
	case doc.KindConditionalGroup:
		return mapping(str(keyConditionalGroup), sequence(d.Parts()))
	case doc.KindIfBreak:
		kv := []*yaml.Node{str(keyBreak), encodeNode(d.Child()), str(keyFlat), encodeNode(d.FlatBranch())}
		if d.GroupID() != "" {
			kv = append(kv, str(keyGroup), str(string(d.GroupID())))
		}
		return mapping(str(keyIfBreak), mapping(kv...))
	case doc.KindFill:
		return mapping(str(keyFill), sequence(d.Parts()))
	default:
		// lineSuffixBoundary, breakParent, trim
		return flowMapping(d.Kind().String(), boolean(true))
	}
}

func sequence(parts []doc.Doc) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range parts {
		n.Content = append(n.Content, encodeNode(&parts[i]))
	}
	return n
}

// mapping builds a block mapping from alternating key and value nodes.
func mapping(kv ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: kv}
}

func flowMapping(key string, val *yaml.Node) *yaml.Node {
	n := mapping(str(key), val)
	n.Style = yaml.FlowStyle
	return n
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func integer(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func boolean(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}
