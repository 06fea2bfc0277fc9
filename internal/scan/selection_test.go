package scan

import "testing"

func newTestRefs() []*Reference {
	return []*Reference{
		newReference("a.md", "![[x.png]]", "x.png", 1, KindEmbed, "", 0),
		newReference("a.md", "![[y.png]]", "y.png", 2, KindEmbed, "", 0),
		newReference("b.md", "img/z.png", "img/z.png", 2, KindFrontmatter, "banner_image", 0),
	}
}

func TestSelectionStartsAll(t *testing.T) {
	sel := NewSelection(newTestRefs())
	if sel.State() != SelectionAll {
		t.Fatalf("state = %s, want all", sel.State())
	}
	if got := len(sel.Selected()); got != 3 {
		t.Fatalf("selected = %d, want 3", got)
	}
}

func TestSelectionToggle(t *testing.T) {
	refs := newTestRefs()
	sel := NewSelection(refs)

	if !sel.Toggle(refs[1].ID) {
		t.Fatal("toggle of known id should succeed")
	}
	if sel.State() != SelectionPartial {
		t.Fatalf("state = %s, want partial", sel.State())
	}
	selected := sel.Selected()
	if len(selected) != 2 {
		t.Fatalf("selected = %d, want 2", len(selected))
	}
	if selected[0] != refs[0] || selected[1] != refs[2] {
		t.Fatal("selection should preserve scan order")
	}
}

func TestSelectionToggleUnknown(t *testing.T) {
	refs := newTestRefs()
	sel := NewSelection(refs[:2])
	if sel.Toggle(refs[2].ID) {
		t.Fatal("toggle of untracked id should report false")
	}
}

func TestSelectionSetAll(t *testing.T) {
	sel := NewSelection(newTestRefs())

	sel.SetAll(false)
	if sel.State() != SelectionNone {
		t.Fatalf("state = %s, want none", sel.State())
	}
	if len(sel.Selected()) != 0 {
		t.Fatal("expected empty selection")
	}

	sel.SetAll(true)
	if sel.State() != SelectionAll {
		t.Fatalf("state = %s, want all", sel.State())
	}
}

func TestSelectionEmpty(t *testing.T) {
	sel := NewSelection(nil)
	if sel.State() != SelectionNone {
		t.Fatalf("state = %s, want none", sel.State())
	}
	if sel.Len() != 0 {
		t.Fatalf("len = %d, want 0", sel.Len())
	}
}
