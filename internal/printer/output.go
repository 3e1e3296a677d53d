package printer

import (
	"bytes"
	"strings"
)

// output accumulates rendered text and tracks the display column of the current line.
type output struct {
	buf       []byte
	lineStart int
	column    int
	tabWidth  int
	newline   string
}

func newOutput(opts Options) *output {
	return &output{tabWidth: opts.TabWidth, newline: opts.Newline}
}

// text appends s, which is width columns wide.
func (o *output) text(s string, width int) {
	o.buf = append(o.buf, s...)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		// Embedded newline: the column restarts after it.
		o.lineStart = len(o.buf) - (len(s) - i - 1)
		o.column = StringWidth(s[i+1:], o.tabWidth)
		return
	}
	o.column += width
}

// newlineIndent trims the current line and starts the next one at the given
// indentation.
func (o *output) newlineIndent(indent string, width int) {
	o.trim()
	o.buf = append(o.buf, o.newline...)
	o.lineStart = len(o.buf)
	o.buf = append(o.buf, indent...)
	o.column = width
}

// trailingWhitespace returns the width of spaces and tabs at the end of the current line.
func (o *output) trailingWhitespace() int {
	width := 0
	for i := len(o.buf) - 1; i >= o.lineStart; i-- {
		switch o.buf[i] {
		case ' ':
			width++
		case '\t':
			width += o.tabWidth
		default:
			return width
		}
	}
	return width
}

// trim removes spaces and tabs at the end of the current line and returns the
// number of columns removed.
func (o *output) trim() int {
	width := o.trailingWhitespace()
	o.buf = o.buf[:o.lineStart+len(bytes.TrimRight(o.buf[o.lineStart:], " \t"))]
	o.column -= width
	if o.column < 0 {
		o.column = 0
	}
	return width
}

// finish trims the last line and applies the trailing newline policy.
func (o *output) finish(trailingNewline bool) string {
	o.trim()
	if !trailingNewline {
		return string(o.buf)
	}
	end := len(bytes.TrimRight(o.buf, " \t\r\n"))
	if end == 0 {
		return ""
	}
	return string(o.buf[:end]) + o.newline
}
