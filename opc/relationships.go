package opc

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Relationship type URIs used by the engine.
const (
	RelTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelTypeNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"

	relationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Relationship is a single entry in a part's relationship file.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"` // "External" or empty
}

// Relationships is the parsed relationships file of one part.
type Relationships struct {
	byID  map[string]Relationship
	order []string
}

type relationshipsXML struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// NewRelationships creates an empty relationship set.
func NewRelationships() *Relationships {
	return &Relationships{byID: make(map[string]Relationship)}
}

// ParseRelationships parses a relationships part.
func ParseRelationships(data []byte) (*Relationships, error) {
	var doc relationshipsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	r := NewRelationships()
	for _, rel := range doc.Relationships {
		r.byID[rel.ID] = rel
		r.order = append(r.order, rel.ID)
	}
	return r, nil
}

// Target returns the target of a relationship id.
func (r *Relationships) Target(id string) (string, bool) {
	rel, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return rel.Target, true
}

// Get returns the full relationship for an id.
func (r *Relationships) Get(id string) (Relationship, bool) {
	rel, ok := r.byID[id]
	return rel, ok
}

// IsExternal reports whether the relationship targets an external
// resource.
func (r *Relationships) IsExternal(id string) bool {
	rel, ok := r.byID[id]
	return ok && rel.TargetMode == "External"
}

// Add registers a new relationship with a freshly allocated id and
// returns the id. Allocation scans existing numeric suffixes, so the
// sequence is deterministic for a given starting state.
func (r *Relationships) Add(target, relType string) string {
	return r.AddWithMode(target, relType, "")
}

// AddWithMode registers a new relationship with an explicit target
// mode ("External" or empty).
func (r *Relationships) AddWithMode(target, relType, mode string) string {
	id := r.nextID()
	r.byID[id] = Relationship{ID: id, Type: relType, Target: target, TargetMode: mode}
	r.order = append(r.order, id)
	return id
}

func (r *Relationships) nextID() string {
	max := 0
	for id := range r.byID {
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

// Len returns the number of relationships.
func (r *Relationships) Len() int { return len(r.byID) }

// Marshal serializes the relationship set back to XML. Entries keep
// their original order; new entries follow in allocation order.
func (r *Relationships) Marshal() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<Relationships xmlns="` + relationshipsNS + `">`)
	for _, id := range r.order {
		rel := r.byID[id]
		sb.WriteString(`<Relationship Id="` + escapeAttr(rel.ID) + `" Type="` + escapeAttr(rel.Type) + `" Target="` + escapeAttr(rel.Target) + `"`)
		if rel.TargetMode != "" {
			sb.WriteString(` TargetMode="` + escapeAttr(rel.TargetMode) + `"`)
		}
		sb.WriteString(`/>`)
	}
	sb.WriteString(`</Relationships>`)
	return []byte(sb.String())
}

// IDs returns all relationship ids in sorted order.
func (r *Relationships) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func escapeAttr(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}
