package printer

import (
	"errors"
	"fmt"
)

// InvariantReason identifies which document invariant a render violated.
type InvariantReason string

const (
	// InvariantUnknownGroup indicates an IfBreak referring to a group that has not been printed.
	InvariantUnknownGroup InvariantReason = "unknown_group"
	// InvariantNegativeIndent indicates a negative alignment or a dedent below the root.
	InvariantNegativeIndent InvariantReason = "negative_indent"
	// InvariantFlatHardLine indicates a hard line reached while printing in flat mode.
	InvariantFlatHardLine InvariantReason = "flat_hard_line"
)

// ErrInvariant is returned when a document is malformed in a way the printer
// cannot render without corrupting output. It always points at a bug in the code
// that built the document.
type ErrInvariant struct {
	Reason  InvariantReason
	Message string
}

func (e *ErrInvariant) Error() string {
	if e == nil {
		return "document invariant violated"
	}
	if e.Message == "" {
		return fmt.Sprintf("document invariant violated (%s)", e.Reason)
	}
	return fmt.Sprintf("document invariant violated (%s): %s", e.Reason, e.Message)
}

// IsErrInvariant reports whether err is a document invariant violation.
func IsErrInvariant(err error) bool {
	var target *ErrInvariant
	return AsInvariant(err, &target)
}

// AsInvariant reports whether err contains an ErrInvariant.
func AsInvariant(err error, target **ErrInvariant) bool {
	if err == nil || target == nil {
		return false
	}
	return errors.As(err, target)
}

func invariantErr(reason InvariantReason, format string, args ...any) *ErrInvariant {
	return &ErrInvariant{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}
