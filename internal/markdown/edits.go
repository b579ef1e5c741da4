package markdown

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Edit replaces source[Start:End] with Replacement.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("overlapping edits")

// ApplyEdits applies non-overlapping byte-range edits expressed against the
// original source. Edits may be given in any order.
func ApplyEdits(source string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return source, nil
	}
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b Edit) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	var out []byte
	pos := 0
	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(source) {
			return "", fmt.Errorf("invalid edit[%d]: range %d..%d", i, e.Start, e.End)
		}
		if e.Start < pos {
			return "", ErrOverlappingEdits
		}
		out = append(out, source[pos:e.Start]...)
		out = append(out, e.Replacement...)
		pos = e.End
	}
	out = append(out, source[pos:]...)
	return string(out), nil
}
