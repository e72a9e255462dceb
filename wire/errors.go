package wire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedVersion indicates the document's version field is not one this
// package knows how to read.
var ErrUnsupportedVersion = errors.New("wire: unsupported mission document version")

// ErrReconciliation indicates a trajectory whose stored deltaDistance disagrees
// with its (possibly reconstructed) delta's polyline length by more than
// isrcore.EpsLength, or whose delta repeats a point: this is surfaced as an
// error, never silently repaired.
var ErrReconciliation = errors.New("wire: reconstructed delta does not reconcile with render_full")

// ImportError collects every invariant violation Import found in a document,
// rather than stopping at the first — the opposite of package segment's
// validateAppend, which is intentionally first-failure-wins for a fast internal
// check (see DESIGN.md). A boundary reading an arbitrary file benefits from
// seeing the whole list at once; an internal solve re-validating its own output
// does not need to.
type ImportError struct {
	Violations []error
}

func (e *ImportError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("wire: import rejected with %d invariant violation(s): %s", len(e.Violations), strings.Join(msgs, "; "))
}

// Unwrap exposes the first violation so errors.Is/As can still match against it
// directly, for callers that only care whether import failed for a known reason.
func (e *ImportError) Unwrap() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e.Violations[0]
}
