// Package opc reads and writes the ZIP-based package container: a main
// document part, style definitions, per-part relationships, a
// content-type registry, and a media subdirectory, plus an optional
// self-describing sidecar directory that host applications ignore.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/docloom/docloom/internal/fileutil"
)

// Well-known part paths.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartStyles       = "word/styles.xml"
	PartNumbering    = "word/numbering.xml"
	PartCoreProps    = "docProps/core.xml"
	MediaDir         = "word/media/"
	// SidecarDir holds the self-describing sidecar (manifest, source,
	// diagram sources). Host applications ignore it.
	SidecarDir = "docloom/"
)

// MissingPartError reports a required part absent from a package.
type MissingPartError struct {
	Part string
}

func (e *MissingPartError) Error() string {
	return fmt.Sprintf("missing required part: %s", e.Part)
}

// MalformedPackageError reports a package or part that cannot be parsed.
type MalformedPackageError struct {
	Part string
	Err  error
}

func (e *MalformedPackageError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("malformed package: %v", e.Err)
	}
	return fmt.Sprintf("malformed package part %s: %v", e.Part, e.Err)
}

func (e *MalformedPackageError) Unwrap() error { return e.Err }

// Archive is an in-memory package: part contents keyed by path, with
// insertion order preserved so repeated writes are byte-stable.
type Archive struct {
	parts map[string][]byte
	order []string
}

// NewArchive creates an empty archive.
func NewArchive() *Archive {
	return &Archive{parts: make(map[string][]byte)}
}

// Open reads a package from a file.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	return FromBytes(data)
}

// FromBytes reads a package from memory.
func FromBytes(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &MalformedPackageError{Err: err}
	}
	a := NewArchive()
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &MalformedPackageError{Part: f.Name, Err: err}
		}
		contents, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &MalformedPackageError{Part: f.Name, Err: err}
		}
		a.Set(f.Name, contents)
	}
	return a, nil
}

// Validate checks that the required parts exist.
func (a *Archive) Validate() error {
	required := []string{PartContentTypes, PartDocument, PartStyles}
	for _, name := range required {
		if !a.Contains(name) {
			return &MissingPartError{Part: name}
		}
	}
	return nil
}

// Get returns a part's contents, or nil if absent.
func (a *Archive) Get(path string) []byte {
	return a.parts[path]
}

// Contains reports whether the part exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.parts[path]
	return ok
}

// Set stores a part, replacing any existing contents.
func (a *Archive) Set(path string, contents []byte) {
	if _, ok := a.parts[path]; !ok {
		a.order = append(a.order, path)
	}
	a.parts[path] = contents
}

// Remove deletes a part and returns its contents.
func (a *Archive) Remove(path string) []byte {
	contents, ok := a.parts[path]
	if !ok {
		return nil
	}
	delete(a.parts, path)
	for i, p := range a.order {
		if p == path {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return contents
}

// Parts returns all part paths in insertion order.
func (a *Archive) Parts() []string {
	return append([]string(nil), a.order...)
}

// MediaParts returns the media part paths in sorted order.
func (a *Archive) MediaParts() []string {
	var out []string
	for _, p := range a.order {
		if strings.HasPrefix(p, MediaDir) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent deep copy. A pre-loaded template is
// treated as immutable; every render takes its own copy.
func (a *Archive) Clone() *Archive {
	c := NewArchive()
	for _, p := range a.order {
		c.Set(p, append([]byte(nil), a.parts[p]...))
	}
	return c
}

// WriteTo serializes the archive as a ZIP stream.
func (a *Archive) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, p := range a.order {
		fw, err := zw.Create(p)
		if err != nil {
			zw.Close()
			return fmt.Errorf("writing part %s: %w", p, err)
		}
		if _, err := fw.Write(a.parts[p]); err != nil {
			zw.Close()
			return fmt.Errorf("writing part %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing package: %w", err)
	}
	return nil
}

// WriteFile writes the archive to path atomically: the package is
// serialized fully in memory, written to a temporary file next to
// path, and renamed into place. A failed write never leaves a partial
// output.
func (a *Archive) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := a.WriteTo(&buf); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
