// Package docloom round-trips word-processing packages through a
// semantic document tree. Extraction reads a package into a tree plus
// a mapping contract recording how package styles, anchors, and theme
// defaults correspond to semantic roles; rendering replays a tree
// through that contract into a template package, reproducing the
// original styling.
//
// Basic usage:
//
//	result, warnings, err := docloom.Open("report.docx").Extract()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", docloom.FormatWarnings(warnings))
//	}
//
// With options:
//
//	result, _, err := docloom.Open("report.docx").
//	    MediaDir("media").
//	    Extract()
//
// Rendering back:
//
//	err := docloom.Template("template.docx").
//	    MediaDir("media").
//	    TOC().
//	    RenderFile(result.Tree, result.Contract, "out.docx")
//
// For advanced use cases the lower-level opc, docx, contract, and
// drawing packages are also available.
package docloom

import (
	"fmt"
	"log/slog"

	"github.com/docloom/docloom/contract"
	"github.com/docloom/docloom/docx"
	"github.com/docloom/docloom/manifest"
	"github.com/docloom/docloom/opc"
	"github.com/docloom/docloom/semantic"
)

// Result is the outcome of one extraction: the semantic tree, the
// populated mapping contract, and the sidecar manifest.
type Result struct {
	Tree     *semantic.Document
	Contract *contract.Contract
	Manifest *manifest.Manifest
}

// Extraction provides a fluent interface for extracting a package into
// a semantic tree. Each configuration method returns a new Extraction
// instance, so a configured chain is safe to reuse concurrently.
type Extraction struct {
	filename string
	archive  *opc.Archive
	mediaDir string
	logger   *slog.Logger
	err      error
}

// Open prepares an extraction of the named package file.
//
// Example:
//
//	result, warnings, err := docloom.Open("report.docx").Extract()
func Open(filename string) *Extraction {
	return &Extraction{filename: filename}
}

// FromArchive prepares an extraction of an already-loaded archive.
// The caller keeps ownership of the archive.
func FromArchive(a *opc.Archive) *Extraction {
	return &Extraction{archive: a}
}

func (e *Extraction) clone() *Extraction {
	c := *e
	return &c
}

// MediaDir sets the directory where extracted image files are written.
// Without it, image bytes stay in the package and only references are
// extracted.
func (e *Extraction) MediaDir(dir string) *Extraction {
	c := e.clone()
	c.mediaDir = dir
	return c
}

// Logger sets an optional logger for advisory progress output.
func (e *Extraction) Logger(l *slog.Logger) *Extraction {
	c := e.clone()
	c.logger = l
	return c
}

// Extract runs the extraction and returns the result, any warnings,
// and an error if the package could not be read. Warnings indicate
// non-fatal issues (unmapped styles, dropped formatting) where
// extraction succeeded but the round trip may be lossy.
func (e *Extraction) Extract() (*Result, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	archive := e.archive
	if archive == nil {
		if e.filename == "" {
			return nil, nil, fmt.Errorf("no filename specified")
		}
		a, err := opc.Open(e.filename)
		if err != nil {
			return nil, nil, fmt.Errorf("opening package: %w", err)
		}
		archive = a
	}

	res, err := docx.Extract(archive, docx.ExtractOptions{
		MediaDir: e.mediaDir,
		Source:   e.filename,
		Logger:   e.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return &Result{
		Tree:     res.Tree,
		Contract: res.Contract,
		Manifest: res.Manifest,
	}, warningsFromDiagnostics(res.Diagnostics), nil
}

// Rendering provides a fluent interface for rendering a semantic tree
// into a copy of a template package. Configuration methods return new
// instances; the terminal methods load the template on first use.
type Rendering struct {
	templatePath string
	template     *opc.Archive
	mediaDir     string
	toc          bool
	logger       *slog.Logger
}

// Template prepares rendering against the named template package.
//
// Example:
//
//	err := docloom.Template("template.docx").RenderFile(tree, c, "out.docx")
func Template(filename string) *Rendering {
	return &Rendering{templatePath: filename}
}

// TemplateArchive prepares rendering against an already-loaded
// template archive.
func TemplateArchive(a *opc.Archive) *Rendering {
	return &Rendering{template: a}
}

func (r *Rendering) clone() *Rendering {
	c := *r
	return &c
}

// MediaDir sets the directory image files referenced by the tree are
// read from.
func (r *Rendering) MediaDir(dir string) *Rendering {
	c := r.clone()
	c.mediaDir = dir
	return c
}

// TOC enables generation of a table-of-contents field built from the
// tree's heading anchors.
func (r *Rendering) TOC() *Rendering {
	c := r.clone()
	c.toc = true
	return c
}

// Logger sets an optional logger for advisory progress output.
func (r *Rendering) Logger(l *slog.Logger) *Rendering {
	c := r.clone()
	c.logger = l
	return c
}

func (r *Rendering) renderer() (*docx.Renderer, error) {
	template := r.template
	if template == nil {
		if r.templatePath == "" {
			return nil, fmt.Errorf("no template specified")
		}
		a, err := opc.Open(r.templatePath)
		if err != nil {
			return nil, fmt.Errorf("opening template: %w", err)
		}
		template = a
	}
	return docx.NewRenderer(template)
}

// Render produces a new package archive from a tree and its contract.
// Rendering is strict: an unmapped role or a dangling cross-reference
// fails before any output exists.
func (r *Rendering) Render(tree *semantic.Document, c *contract.Contract) (*opc.Archive, error) {
	renderer, err := r.renderer()
	if err != nil {
		return nil, err
	}
	return renderer.Render(tree, c, r.options())
}

// RenderFile renders and writes the package to path atomically. On
// failure no output file appears.
func (r *Rendering) RenderFile(tree *semantic.Document, c *contract.Contract, path string) error {
	renderer, err := r.renderer()
	if err != nil {
		return err
	}
	return renderer.RenderFile(tree, c, path, r.options())
}

func (r *Rendering) options() docx.RenderOptions {
	return docx.RenderOptions{
		MediaDir:    r.mediaDir,
		GenerateTOC: r.toc,
		Logger:      r.logger,
	}
}

// Must panics if err is non-nil, otherwise returns val. Intended for
// scripts and tests where error handling would be cumbersome.
//
// Example:
//
//	archive := docloom.Must(opc.Open("report.docx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustExtract panics on error and discards warnings.
//
// Example:
//
//	tree := docloom.MustExtract(docloom.Open("report.docx").Extract()).Tree
func MustExtract[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
