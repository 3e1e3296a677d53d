// Package docyaml reads and writes layout documents as YAML.
//
// A node is a scalar (text), null (empty), a sequence (concatenation), or a
// mapping with a single key naming the node kind:
//
//	group:
//	  id: call
//	  doc:
//	    - "f("
//	    - indent: [{line: soft}, "x"]
//	    - {line: soft}
//	    - ")"
//
// A file is either a node or an envelope with per-file printer options:
//
//	options: {max_width: 40, newline: crlf}
//	doc: ...
//
// JSON is valid YAML, so JSON documents decode too.
package docyaml

import (
	"fmt"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

// Newline names accepted by the newline option.
const (
	NewlineLF   = "lf"
	NewlineCRLF = "crlf"
)

// Overrides are printer options set by a document file. Nil fields leave the
// configured value in place.
type Overrides struct {
	MaxWidth        *int    `yaml:"max_width,omitempty"`
	IndentWidth     *int    `yaml:"indent_width,omitempty"`
	UseTabs         *bool   `yaml:"use_tabs,omitempty"`
	TabWidth        *int    `yaml:"tab_width,omitempty"`
	TrailingNewline *bool   `yaml:"trailing_newline,omitempty"`
	Newline         *string `yaml:"newline,omitempty"`
}

// IsZero reports whether no option is set.
func (o Overrides) IsZero() bool {
	return o.MaxWidth == nil && o.IndentWidth == nil && o.UseTabs == nil &&
		o.TabWidth == nil && o.TrailingNewline == nil && o.Newline == nil
}

// NewlineSequence returns the newline bytes selected by the newline option, or ""
// when it is not set.
func (o Overrides) NewlineSequence() string {
	if o.Newline == nil {
		return ""
	}
	if *o.Newline == NewlineCRLF {
		return "\r\n"
	}
	return "\n"
}

// File is a decoded document file.
type File struct {
	Options Overrides
	Doc     doc.Doc
}

// Error is a decode error at a position in the YAML input.
type Error struct {
	Line   int // 1-based
	Column int // 1-based
	Msg    string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}
