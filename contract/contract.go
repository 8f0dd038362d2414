// Package contract defines the mapping contract: the persisted artifact
// recording style, anchor, and image correspondences between a semantic
// tree and a specific template package. The contract is created empty at
// the start of an extraction, populated in document order, serialized to
// disk, and loaded read-only for the duration of a render.
package contract

import (
	"fmt"
	"sort"
	"time"
)

// Contract is the root mapping artifact.
type Contract struct {
	Meta            Meta                             `yaml:"meta,omitempty"`
	ParagraphStyles map[string]ParagraphStyleMapping `yaml:"paragraph_styles,omitempty"`
	CharacterStyles map[string]CharacterStyleMapping `yaml:"character_styles,omitempty"`
	Anchors         map[string]AnchorMapping         `yaml:"anchors,omitempty"`
	TableStyles     map[string]TableStyleMapping     `yaml:"table_styles,omitempty"`
	Theme           ThemeDefaults                    `yaml:"theme,omitempty"`
	Cover           *CoverConfig                     `yaml:"cover,omitempty"`
}

// Meta describes the contract's provenance.
type Meta struct {
	Source    string `yaml:"source,omitempty"`
	Created   string `yaml:"created,omitempty"`
	Generator string `yaml:"generator,omitempty"`
	Template  string `yaml:"template,omitempty"`
}

// ParagraphStyleMapping maps a package paragraph style id to a semantic
// role. HeadingLevel is 1-9 for heading roles, 0 otherwise.
type ParagraphStyleMapping struct {
	Role         string `yaml:"role"`
	HeadingLevel int    `yaml:"heading_level,omitempty"`
	IsList       bool   `yaml:"is_list,omitempty"`
	ListKind     string `yaml:"list_kind,omitempty"` // ordered, unordered
}

// CharacterStyleMapping maps a package character style id to a semantic
// role.
type CharacterStyleMapping struct {
	Role     string `yaml:"role"`
	Strong   bool   `yaml:"strong,omitempty"`
	Emphasis bool   `yaml:"emphasis,omitempty"`
	Code     bool   `yaml:"code,omitempty"`
}

// AnchorKind classifies how an anchor behaves on round trip.
type AnchorKind string

const (
	AnchorHeading  AnchorKind = "heading"
	AnchorCrossRef AnchorKind = "crossref"
	AnchorUser     AnchorKind = "user"
)

// AnchorMapping records a package bookmark and its derived semantic id.
type AnchorMapping struct {
	SemanticID       string     `yaml:"semantic_id"`
	Kind             AnchorKind `yaml:"kind,omitempty"`
	TargetHeading    string     `yaml:"target_heading,omitempty"`
	OriginalBookmark string     `yaml:"original_bookmark,omitempty"`
}

// TableStyleMapping maps a package table style id to a semantic role.
type TableStyleMapping struct {
	Role           string `yaml:"role"`
	FirstRowHeader bool   `yaml:"first_row_header,omitempty"`
	FirstColHeader bool   `yaml:"first_col_header,omitempty"`
}

// ThemeDefaults holds the style-inheritance chains flattened once per
// extraction. Read-only after extraction.
type ThemeDefaults struct {
	HeadingFont string `yaml:"heading_font,omitempty"`
	BodyFont    string `yaml:"body_font,omitempty"`
	// Base font size in half-points, as the package stores it.
	BaseSize int `yaml:"base_size,omitempty"`
}

// New creates an empty contract.
func New() *Contract {
	return &Contract{
		ParagraphStyles: make(map[string]ParagraphStyleMapping),
		CharacterStyles: make(map[string]CharacterStyleMapping),
		Anchors:         make(map[string]AnchorMapping),
		TableStyles:     make(map[string]TableStyleMapping),
	}
}

// WithSource creates an empty contract stamped with provenance metadata.
func WithSource(source string) *Contract {
	c := New()
	c.Meta = Meta{
		Source:    source,
		Created:   time.Now().UTC().Format(time.RFC3339),
		Generator: "docloom",
	}
	return c
}

// WithDefaults creates a contract seeded with the standard style
// vocabulary used by stock word-processing templates.
func WithDefaults() *Contract {
	c := New()
	for level := 1; level <= 9; level++ {
		c.ParagraphStyles[fmt.Sprintf("Heading%d", level)] = ParagraphStyleMapping{
			Role:         fmt.Sprintf("h%d", level),
			HeadingLevel: level,
		}
	}
	c.ParagraphStyles["Normal"] = ParagraphStyleMapping{Role: "body"}
	c.ParagraphStyles["ListBullet"] = ParagraphStyleMapping{Role: "list", IsList: true, ListKind: "unordered"}
	c.ParagraphStyles["ListNumber"] = ParagraphStyleMapping{Role: "list", IsList: true, ListKind: "ordered"}
	c.ParagraphStyles["CodeBlock"] = ParagraphStyleMapping{Role: "literal"}
	c.CharacterStyles["CodeChar"] = CharacterStyleMapping{Role: "code", Code: true}
	c.TableStyles["TableGrid"] = TableStyleMapping{Role: "table", FirstRowHeader: true}
	return c
}

// UnmappedRoleError reports a semantic role with no style mapping.
// Rendering treats this as fatal; other callers decide for themselves.
type UnmappedRoleError struct {
	Role string
}

func (e *UnmappedRoleError) Error() string {
	return fmt.Sprintf("no style mapping for role %q", e.Role)
}

// RecordParagraphStyle records a paragraph style mapping. An existing
// mapping for the same style id is overwritten; extraction proceeds in
// document order, so the last write is deterministic.
func (c *Contract) RecordParagraphStyle(styleID string, m ParagraphStyleMapping) {
	c.ParagraphStyles[styleID] = m
}

// RecordCharacterStyle records a character style mapping (last write wins).
func (c *Contract) RecordCharacterStyle(styleID string, m CharacterStyleMapping) {
	c.CharacterStyles[styleID] = m
}

// RecordTableStyle records a table style mapping (last write wins).
func (c *Contract) RecordTableStyle(styleID string, m TableStyleMapping) {
	c.TableStyles[styleID] = m
}

// RecordAnchor records an anchor mapping keyed by the package bookmark
// name (last write wins).
func (c *Contract) RecordAnchor(bookmark string, m AnchorMapping) {
	c.Anchors[bookmark] = m
}

// Resolve maps a semantic role to the paragraph style id that renders
// it. When several styles map to the same role, the alphabetically
// first style id is returned so repeated renders are deterministic.
func (c *Contract) Resolve(role string) (string, error) {
	var ids []string
	for id, m := range c.ParagraphStyles {
		if m.Role == role {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", &UnmappedRoleError{Role: role}
	}
	sort.Strings(ids)
	return ids[0], nil
}

// ResolveHeading maps a heading level to its paragraph style id.
func (c *Contract) ResolveHeading(level int) (string, error) {
	var ids []string
	for id, m := range c.ParagraphStyles {
		if m.HeadingLevel == level {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", &UnmappedRoleError{Role: fmt.Sprintf("h%d", level)}
	}
	sort.Strings(ids)
	return ids[0], nil
}

// ResolveTable maps a table role to its table style id.
func (c *Contract) ResolveTable(role string) (string, error) {
	var ids []string
	for id, m := range c.TableStyles {
		if m.Role == role {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", &UnmappedRoleError{Role: role}
	}
	sort.Strings(ids)
	return ids[0], nil
}

// ResolveCharacter maps a character role to its character style id.
func (c *Contract) ResolveCharacter(role string) (string, error) {
	var ids []string
	for id, m := range c.CharacterStyles {
		if m.Role == role {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", &UnmappedRoleError{Role: role}
	}
	sort.Strings(ids)
	return ids[0], nil
}

// SemanticAnchor returns the semantic id mapped to a package bookmark.
func (c *Contract) SemanticAnchor(bookmark string) (string, bool) {
	m, ok := c.Anchors[bookmark]
	if !ok {
		return "", false
	}
	return m.SemanticID, true
}

// Bookmark returns the package bookmark for a semantic anchor id.
// Validate rejects contracts mapping one semantic id from several
// bookmarks; on an unvalidated contract the alphabetically first
// bookmark is the canonical one.
func (c *Contract) Bookmark(semanticID string) (string, bool) {
	var names []string
	for name, m := range c.Anchors {
		if m.SemanticID == semanticID {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

// HasSemanticID reports whether any anchor mapping carries the given
// semantic id.
func (c *Contract) HasSemanticID(id string) bool {
	for _, m := range c.Anchors {
		if m.SemanticID == id {
			return true
		}
	}
	return false
}

// Validate checks the contract's internal invariants: heading mappings
// must carry heading roles, and semantic anchor ids must be unique.
func (c *Contract) Validate() error {
	for id, m := range c.ParagraphStyles {
		if m.HeadingLevel != 0 {
			if m.HeadingLevel < 1 || m.HeadingLevel > 9 {
				return fmt.Errorf("style %q: heading level %d out of range 1-9", id, m.HeadingLevel)
			}
			if m.Role != fmt.Sprintf("h%d", m.HeadingLevel) {
				return fmt.Errorf("style %q: heading level %d requires role %q, got %q",
					id, m.HeadingLevel, fmt.Sprintf("h%d", m.HeadingLevel), m.Role)
			}
		}
	}
	seen := make(map[string]string)
	for bookmark, m := range c.Anchors {
		if m.SemanticID == "" {
			return fmt.Errorf("anchor %q: empty semantic id", bookmark)
		}
		if prev, dup := seen[m.SemanticID]; dup {
			return fmt.Errorf("semantic id %q mapped from both %q and %q", m.SemanticID, prev, bookmark)
		}
		seen[m.SemanticID] = bookmark
	}
	return nil
}
