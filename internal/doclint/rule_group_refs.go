package doclint

import (
	"context"
	"fmt"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/printer"
)

const (
	// DiagnosticUnknownGroupRef reports IfBreak nodes naming a group that is not
	// printed before them.
	DiagnosticUnknownGroupRef Code = "unknown-group-ref"
	// DiagnosticDuplicateGroupID reports group ids used by more than one group.
	DiagnosticDuplicateGroupID Code = "duplicate-group-id"
)

// GroupRefRule requires every group reference to follow the group it names.
type GroupRefRule struct{}

// ID returns the stable rule identifier.
func (GroupRefRule) ID() string { return string(DiagnosticUnknownGroupRef) }

// Description returns a human-readable rule summary.
func (GroupRefRule) Description() string {
	return "ifBreak and indentIfBreak must reference a group defined earlier in the document"
}

// Run evaluates the rule against a document.
func (GroupRefRule) Run(ctx context.Context, d *doc.Doc, _ printer.Options) ([]Diagnostic, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	defined := make(map[doc.GroupID]bool)
	var out []Diagnostic
	visit(d, func(n *doc.Doc, path doc.Path, index int) {
		switch n.Kind() {
		case doc.KindGroup:
			if id := n.GroupID(); id != "" {
				defined[id] = true
			}
		case doc.KindIfBreak:
			id := n.GroupID()
			if id == "" || defined[id] {
				return
			}
			out = append(out, newDiagnostic(DiagnosticUnknownGroupRef, SeverityError, n, path, index,
				fmt.Sprintf("group %q is not defined before this reference", id)))
		}
	}, nil)
	return out, nil
}

// DuplicateGroupIDRule warns when two groups share an id. References resolve to
// whichever of them was printed last.
type DuplicateGroupIDRule struct{}

// ID returns the stable rule identifier.
func (DuplicateGroupIDRule) ID() string { return string(DiagnosticDuplicateGroupID) }

// Description returns a human-readable rule summary.
func (DuplicateGroupIDRule) Description() string {
	return "group ids should be unique within a document"
}

// Run evaluates the rule against a document.
func (DuplicateGroupIDRule) Run(ctx context.Context, d *doc.Doc, _ printer.Options) ([]Diagnostic, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	first := make(map[doc.GroupID]string)
	var out []Diagnostic
	visit(d, func(n *doc.Doc, path doc.Path, index int) {
		id := n.GroupID()
		if n.Kind() != doc.KindGroup || id == "" {
			return
		}
		if at, ok := first[id]; ok {
			out = append(out, newDiagnostic(DiagnosticDuplicateGroupID, SeverityWarning, n, path, index,
				fmt.Sprintf("group id %q is already used at %s", id, at)))
			return
		}
		first[id] = path.String()
	}, nil)
	return out, nil
}
