// Package text defines byte offsets and spans over the sources that document
// leaves were built from, and a line index over rendered output.
package text

import "fmt"

// ByteOffset is a byte index into a UTF-8 buffer.
type ByteOffset int

// IsValid reports whether the offset is non-negative.
func (o ByteOffset) IsValid() bool {
	return o >= 0
}

// Span is a half-open byte range [Start, End).
//
// Document leaves may carry a Span pointing back into the source they were built
// from. The printer treats it as inert payload.
type Span struct {
	Start ByteOffset // inclusive
	End   ByteOffset // exclusive
}

// Validate reports an error if the span is invalid.
func (s Span) Validate() error {
	if !s.Start.IsValid() {
		return fmt.Errorf("invalid span start: %d", s.Start)
	}
	if !s.End.IsValid() {
		return fmt.Errorf("invalid span end: %d", s.End)
	}
	if s.End < s.Start {
		return fmt.Errorf("invalid span bounds: end (%d) < start (%d)", s.End, s.Start)
	}
	return nil
}

// IsZero reports whether s is the zero Span, used by leaves without a source location.
func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
