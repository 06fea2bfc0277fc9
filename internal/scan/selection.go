package scan

import "github.com/google/uuid"

// SelectionState summarizes how many references are currently checked.
type SelectionState string

const (
	SelectionAll     SelectionState = "all"
	SelectionNone    SelectionState = "none"
	SelectionPartial SelectionState = "partial"
)

// Selection tracks per-reference checked state for an interactive pick list.
// References start selected; the zero value is not usable, use NewSelection.
type Selection struct {
	refs  []*Reference
	index map[uuid.UUID]*Reference
}

// NewSelection builds a Selection over refs, preserving scan order.
func NewSelection(refs []*Reference) *Selection {
	index := make(map[uuid.UUID]*Reference, len(refs))
	for _, ref := range refs {
		index[ref.ID] = ref
	}
	return &Selection{refs: refs, index: index}
}

// Toggle flips the checked state of the reference with id. Unknown ids are
// ignored and reported false.
func (s *Selection) Toggle(id uuid.UUID) bool {
	ref, ok := s.index[id]
	if !ok {
		return false
	}
	ref.Selected = !ref.Selected
	return true
}

// SetAll checks or unchecks every reference at once.
func (s *Selection) SetAll(selected bool) {
	for _, ref := range s.refs {
		ref.Selected = selected
	}
}

// Selected returns the checked references in scan order.
func (s *Selection) Selected() []*Reference {
	var out []*Reference
	for _, ref := range s.refs {
		if ref.Selected {
			out = append(out, ref)
		}
	}
	return out
}

// Len reports the total number of tracked references.
func (s *Selection) Len() int {
	return len(s.refs)
}

// State derives the tri-state summary used by a select-all control.
func (s *Selection) State() SelectionState {
	if len(s.refs) == 0 {
		return SelectionNone
	}
	selected := 0
	for _, ref := range s.refs {
		if ref.Selected {
			selected++
		}
	}
	switch selected {
	case 0:
		return SelectionNone
	case len(s.refs):
		return SelectionAll
	default:
		return SelectionPartial
	}
}
