package anchor

import (
	"testing"

	"github.com/docloom/docloom/contract"
)

func TestDeriveHeadingCollisions(t *testing.T) {
	n := NewNormalizer(contract.New())

	first := n.DeriveHeading("Overview", "")
	second := n.DeriveHeading("Overview", "")
	third := n.DeriveHeading("Overview", "")

	if first != "overview" {
		t.Errorf("first = %q", first)
	}
	if second != "overview-2" {
		t.Errorf("second = %q", second)
	}
	if third != "overview-3" {
		t.Errorf("third = %q", third)
	}
}

func TestDeriveHeadingRecordsMapping(t *testing.T) {
	c := contract.New()
	n := NewNormalizer(c)

	id := n.DeriveHeading("Getting Started", "_Toc7")
	if id != "getting-started" {
		t.Fatalf("id = %q", id)
	}
	m, ok := c.Anchors["_Toc7"]
	if !ok {
		t.Fatal("mapping should be keyed by the original bookmark")
	}
	if m.SemanticID != id || m.Kind != contract.AnchorHeading {
		t.Errorf("mapping = %+v", m)
	}
	if m.TargetHeading != "Getting Started" {
		t.Errorf("target heading = %q", m.TargetHeading)
	}
}

func TestNormalizerReservesExistingIDs(t *testing.T) {
	c := contract.New()
	c.RecordAnchor("_Toc1", contract.AnchorMapping{SemanticID: "overview", Kind: contract.AnchorHeading})
	n := NewNormalizer(c)

	if id := n.DeriveHeading("Overview", ""); id != "overview-2" {
		t.Errorf("id = %q, want overview-2 (overview reserved)", id)
	}
}

func TestClassifyBookmark(t *testing.T) {
	tests := []struct {
		name string
		want contract.AnchorKind
	}{
		{"_Toc123456", contract.AnchorHeading},
		{"_Ref98765", contract.AnchorCrossRef},
		{"my-note", contract.AnchorUser},
		{"Toc_not_prefix", contract.AnchorUser},
	}
	for _, tt := range tests {
		if got := ClassifyBookmark(tt.name); got != tt.want {
			t.Errorf("ClassifyBookmark(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDeriveBookmarkUsesContextForGenerated(t *testing.T) {
	n := NewNormalizer(contract.New())

	// Generated TOC bookmarks slug from the surrounding text.
	if id := n.DeriveBookmark("_Toc9", "Installation Guide"); id != "installation-guide" {
		t.Errorf("toc bookmark id = %q", id)
	}
	// User bookmarks keep their own name as the slug base.
	if id := n.DeriveBookmark("important note", "whatever text"); id != "important-note" {
		t.Errorf("user bookmark id = %q", id)
	}
}

func TestBookmarkReusesOriginalName(t *testing.T) {
	c := contract.New()
	n := NewNormalizer(c)
	n.DeriveHeading("Overview", "_Toc42")

	if name := n.Bookmark("overview"); name != "_Toc42" {
		t.Errorf("Bookmark = %q, want _Toc42", name)
	}
}

func TestBookmarkSynthesizesForNewAnchor(t *testing.T) {
	c := contract.New()
	n := NewNormalizer(c)

	name := n.Bookmark("fresh-section")
	if name != "fresh-section" {
		t.Errorf("Bookmark = %q", name)
	}
	m, ok := c.Anchors["fresh-section"]
	if !ok {
		t.Fatal("new anchor should be appended to the contract")
	}
	if m.SemanticID != "fresh-section" {
		t.Errorf("mapping = %+v", m)
	}
	// A second resolve reuses the appended mapping.
	if again := n.Bookmark("fresh-section"); again != name {
		t.Errorf("second resolve = %q, want %q", again, name)
	}
}

func TestHeadingAnchors(t *testing.T) {
	c := contract.New()
	n := NewNormalizer(c)
	n.DeriveHeading("One", "")
	n.DeriveHeading("Two", "")
	n.DeriveBookmark("note", "")

	ids := n.HeadingAnchors()
	if len(ids) != 2 {
		t.Fatalf("HeadingAnchors = %v", ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["one"] || !seen["two"] {
		t.Errorf("HeadingAnchors = %v", ids)
	}
}
