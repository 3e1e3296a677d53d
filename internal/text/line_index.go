package text

import (
	"errors"
	"fmt"
)

// LineIndex splits a UTF-8 buffer into lines.
//
// Line numbers are 0-based. Line terminators ("\n" or "\r\n") are not part of
// the line content returned by Line.
type LineIndex struct {
	src        []byte
	lineStarts []ByteOffset
}

var errNilLineIndex = errors.New("nil LineIndex")

// NewLineIndex builds an index over src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []ByteOffset{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	return &LineIndex{
		src:        src,
		lineStarts: starts,
	}
}

// LineCount returns the number of logical lines in the buffer.
func (li *LineIndex) LineCount() int {
	if li == nil {
		return 0
	}
	return len(li.lineStarts)
}

// Line returns the content of line without its terminator.
func (li *LineIndex) Line(line int) ([]byte, error) {
	if li == nil {
		return nil, errNilLineIndex
	}
	if line < 0 || line >= li.LineCount() {
		return nil, fmt.Errorf("line out of range: %d", line)
	}
	start := li.lineStarts[line]
	end := ByteOffset(len(li.src))
	if line+1 < len(li.lineStarts) {
		end = li.lineStarts[line+1]
	}
	if end > start && li.src[end-1] == '\n' {
		end--
		if end > start && li.src[end-1] == '\r' {
			end--
		}
	}
	return li.src[start:end], nil
}
