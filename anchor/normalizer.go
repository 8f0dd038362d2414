package anchor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docloom/docloom/contract"
)

// DanglingReferenceError reports a cross-reference pointing at a
// semantic id that exists neither in the contract nor anywhere in the
// current tree. Fatal on render; extraction degrades to plain text.
type DanglingReferenceError struct {
	Ref        string
	BlockIndex int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference %q at block %d", e.Ref, e.BlockIndex)
}

// Normalizer allocates unique semantic identifiers during extraction
// and resolves them back to package bookmark names during rendering.
// Allocation order follows document order, so identifiers are stable
// across runs.
type Normalizer struct {
	contract *contract.Contract
	used     map[string]bool
}

// NewNormalizer creates a normalizer over a contract. Semantic ids
// already present in the contract are reserved.
func NewNormalizer(c *contract.Contract) *Normalizer {
	n := &Normalizer{
		contract: c,
		used:     make(map[string]bool),
	}
	for _, m := range c.Anchors {
		n.used[m.SemanticID] = true
	}
	return n
}

// unique returns slug if free, else slug-2, slug-3, ... and reserves
// the result.
func (n *Normalizer) unique(slug string) string {
	if slug == "" {
		slug = "anchor"
	}
	id := slug
	for i := 2; n.used[id]; i++ {
		id = slug + "-" + strconv.Itoa(i)
	}
	n.used[id] = true
	return id
}

// DeriveHeading derives a semantic id from heading text, records the
// mapping against the original bookmark (may be empty when the heading
// had no bookmark), and returns the id.
func (n *Normalizer) DeriveHeading(headingText, originalBookmark string) string {
	id := n.unique(Slugify(headingText))
	key := originalBookmark
	if key == "" {
		key = id
	}
	n.contract.RecordAnchor(key, contract.AnchorMapping{
		SemanticID:       id,
		Kind:             contract.AnchorHeading,
		TargetHeading:    headingText,
		OriginalBookmark: originalBookmark,
	})
	return id
}

// DeriveBookmark derives a semantic id for a bookmark encountered
// outside a heading context, classifying it by its name convention.
// contextText is the surrounding paragraph text, used to produce a
// readable slug for TOC and cross-reference bookmarks.
func (n *Normalizer) DeriveBookmark(bookmark, contextText string) string {
	kind := ClassifyBookmark(bookmark)
	base := contextText
	if kind == contract.AnchorUser || strings.TrimSpace(base) == "" {
		base = bookmark
	}
	id := n.unique(Slugify(base))
	m := contract.AnchorMapping{
		SemanticID:       id,
		Kind:             kind,
		OriginalBookmark: bookmark,
	}
	if kind == contract.AnchorHeading {
		m.TargetHeading = contextText
	}
	n.contract.RecordAnchor(bookmark, m)
	return id
}

// ClassifyBookmark maps package bookmark naming conventions to anchor
// kinds: generated TOC bookmarks are heading anchors, generated
// cross-reference bookmarks are crossref anchors, everything else is
// user-defined.
func ClassifyBookmark(name string) contract.AnchorKind {
	switch {
	case strings.HasPrefix(name, "_Toc"):
		return contract.AnchorHeading
	case strings.HasPrefix(name, "_Ref"):
		return contract.AnchorCrossRef
	default:
		return contract.AnchorUser
	}
}

// Bookmark resolves a semantic id to a package bookmark name for
// rendering. A mapped anchor reuses its original bookmark so external
// links into the document keep working. A new anchor, introduced
// purely in the semantic tree, gets a fresh bookmark named after the
// semantic id and a new mapping is appended.
func (n *Normalizer) Bookmark(semanticID string) string {
	if name, ok := n.contract.Bookmark(semanticID); ok {
		if m := n.contract.Anchors[name]; m.OriginalBookmark != "" {
			return m.OriginalBookmark
		}
		return name
	}
	name := semanticID
	for i := 2; ; i++ {
		if _, taken := n.contract.Anchors[name]; !taken {
			break
		}
		name = semanticID + "-" + strconv.Itoa(i)
	}
	n.used[semanticID] = true
	n.contract.RecordAnchor(name, contract.AnchorMapping{
		SemanticID: semanticID,
		Kind:       contract.AnchorUser,
	})
	return name
}

// HeadingAnchors returns, in no particular order, the semantic ids of
// heading anchors. Only these may be targeted by a generated table of
// contents.
func (n *Normalizer) HeadingAnchors() []string {
	var out []string
	for _, m := range n.contract.Anchors {
		if m.Kind == contract.AnchorHeading {
			out = append(out, m.SemanticID)
		}
	}
	return out
}
