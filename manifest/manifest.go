// Package manifest reads and writes the self-describing sidecar
// manifest embedded in generated packages. The manifest maps stable
// block and anchor identifiers to their package element ids, content
// hashes, and originating source references, enabling drift detection
// on later round trips. Host applications ignore the sidecar entirely.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docloom/docloom/opc"
)

// Path of the manifest inside the package sidecar directory.
const Path = opc.SidecarDir + "manifest.json"

// Manifest tracks engine-managed content within a package.
type Manifest struct {
	Version     string                 `json:"version"`
	Generator   string                 `json:"generator"`
	GeneratedAt string                 `json:"generated_at"`
	Elements    map[string]ElementMeta `json:"elements,omitempty"`
}

// ElementMeta is the record for one tracked element.
type ElementMeta struct {
	Type string `json:"type"` // figure, table, section, code, diagram
	// ElementID is the package element id (bookmark name or docPr id).
	ElementID string `json:"element_id,omitempty"`
	// Source is the originating reference inside the sidecar, e.g.
	// "docloom/diagrams/fig1.mmd".
	Source string `json:"source,omitempty"`
	// Hash is the SHA-256 content hash for images and diagrams.
	Hash string `json:"hash,omitempty"`
}

// New creates an empty manifest stamped with the current time.
func New() *Manifest {
	return &Manifest{
		Version:     "1.0",
		Generator:   "docloom",
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Elements:    make(map[string]ElementMeta),
	}
}

// Add records an element under a stable identifier.
func (m *Manifest) Add(id string, meta ElementMeta) {
	m.Elements[id] = meta
}

// Get returns the record for an identifier.
func (m *Manifest) Get(id string) (ElementMeta, bool) {
	meta, ok := m.Elements[id]
	return meta, ok
}

// Marshal serializes the manifest to indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}
	return data, nil
}

// Parse loads a manifest from JSON.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Elements == nil {
		m.Elements = make(map[string]ElementMeta)
	}
	return m, nil
}

// FromArchive reads the manifest from a package, or nil if the package
// carries no sidecar.
func FromArchive(a *opc.Archive) (*Manifest, error) {
	data := a.Get(Path)
	if data == nil {
		return nil, nil
	}
	return Parse(data)
}

// WriteTo stores the manifest into a package's sidecar directory.
func (m *Manifest) WriteTo(a *opc.Archive) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	a.Set(Path, data)
	return nil
}

// HashBytes returns the hex SHA-256 of content, the hash form used for
// image and diagram drift detection.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
