package semantic

import "time"

// Document is a complete semantic tree: document metadata plus an ordered
// sequence of block nodes.
type Document struct {
	Meta   Meta
	Blocks []Block
}

// Meta contains document-level metadata.
type Meta struct {
	Title     string
	Subtitle  string
	Author    string
	Email     string
	RevNumber string
	RevDate   string
	Created   time.Time
	// Custom metadata attributes
	Custom map[string]string
}

// NewDocument creates a new empty document.
func NewDocument() *Document {
	return &Document{
		Meta: Meta{
			Custom: make(map[string]string),
		},
		Blocks: make([]Block, 0),
	}
}

// AddBlock appends a block to the document.
func (d *Document) AddBlock(b Block) {
	d.Blocks = append(d.Blocks, b)
}

// Headings returns all heading blocks in document order.
func (d *Document) Headings() []*Heading {
	var out []*Heading
	for _, b := range d.Blocks {
		if h, ok := b.(*Heading); ok {
			out = append(out, h)
		}
	}
	return out
}

// Anchors returns the anchor ids declared anywhere in the tree, in
// document order.
func (d *Document) Anchors() []string {
	var out []string
	for _, b := range d.Blocks {
		if id := b.AnchorID(); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// HasAnchor reports whether any block in the tree declares the given
// anchor id.
func (d *Document) HasAnchor(id string) bool {
	for _, b := range d.Blocks {
		if b.AnchorID() == id {
			return true
		}
	}
	return false
}
