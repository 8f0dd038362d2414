// Package semantic defines the presentation-free document tree exchanged
// with the markup parser. The tree carries structure (headings, paragraphs,
// lists, tables, literals) and intent (anchors, cross-references) but no
// layout or style information; all presentation concerns live in the
// mapping contract.
package semantic
