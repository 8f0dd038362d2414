package docloom_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/docloom/docloom"
	"github.com/docloom/docloom/semantic"
)

const (
	testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

	testRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	testStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
</w:styles>`
)

// writeTestDoc writes a minimal package with the given body paragraphs
// to a file under dir and returns its path.
func writeTestDoc(t *testing.T, dir, name, body string) string {
	t.Helper()

	parts := map[string]string{
		"[Content_Types].xml": testContentTypes,
		"_rels/.rels":         testRootRels,
		"word/styles.xml":     testStyles,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>` + body + `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr></w:body>
</w:document>`,
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatalf("adding %s: %v", partName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", partName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	f.Close()
	return path
}

const sampleBody = `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Overview</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Some body text.</w:t></w:r></w:p>`

func TestOpenExtract(t *testing.T) {
	path := writeTestDoc(t, t.TempDir(), "report.docx", sampleBody)

	result, warnings, err := docloom.Open(path).Extract()
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings:\n%s", docloom.FormatWarnings(warnings))
	}
	if len(result.Tree.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(result.Tree.Blocks))
	}
	h, ok := result.Tree.Blocks[0].(*semantic.Heading)
	if !ok || h.Anchor != "overview" {
		t.Errorf("block 0 = %#v, want heading with anchor overview", result.Tree.Blocks[0])
	}
	if result.Contract == nil || result.Manifest == nil {
		t.Error("result missing contract or manifest")
	}
	if _, err := result.Contract.Resolve("h1"); err != nil {
		t.Errorf("contract did not record the heading style: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, _, err := docloom.Open(filepath.Join(t.TempDir(), "absent.docx")).Extract(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRoundTripThroughFiles(t *testing.T) {
	dir := t.TempDir()
	source := writeTestDoc(t, dir, "report.docx", sampleBody)

	result, _, err := docloom.Open(source).Extract()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	out := filepath.Join(dir, "out.docx")
	err = docloom.Template(source).RenderFile(result.Tree, result.Contract, out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	again, _, err := docloom.Open(out).Extract()
	if err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	if len(again.Tree.Blocks) != len(result.Tree.Blocks) {
		t.Fatalf("round trip changed block count: %d -> %d",
			len(result.Tree.Blocks), len(again.Tree.Blocks))
	}
	h, ok := again.Tree.Blocks[0].(*semantic.Heading)
	if !ok {
		t.Fatalf("block 0 is %T after round trip", again.Tree.Blocks[0])
	}
	if h.Anchor != "overview" || semantic.InlineText(h.Runs) != "Overview" {
		t.Errorf("heading changed: anchor %q text %q", h.Anchor, semantic.InlineText(h.Runs))
	}
}

func TestRenderFileStrictFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	source := writeTestDoc(t, dir, "report.docx", sampleBody)

	result, _, err := docloom.Open(source).Extract()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// A heading level the contract never saw makes rendering fail.
	result.Tree.Blocks = append(result.Tree.Blocks, &semantic.Heading{
		Level:  5,
		Anchor: "deep",
		Runs:   []semantic.Inline{{Text: "Deep"}},
	})

	out := filepath.Join(dir, "out.docx")
	if err := docloom.Template(source).RenderFile(result.Tree, result.Contract, out); err == nil {
		t.Fatal("expected strict rendering error")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("failed render left an output file")
	}
}

func TestTemplateMissingFile(t *testing.T) {
	tree := semantic.NewDocument()
	if _, err := docloom.Template(filepath.Join(t.TempDir(), "absent.docx")).Render(tree, nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestChainConfigurationDoesNotMutate(t *testing.T) {
	path := writeTestDoc(t, t.TempDir(), "report.docx", sampleBody)

	base := docloom.Open(path)
	_ = base.MediaDir(t.TempDir())

	// The base chain is still usable without the media directory.
	if _, _, err := base.Extract(); err != nil {
		t.Fatalf("base chain broken after configuring a copy: %v", err)
	}
}

func TestMust(t *testing.T) {
	if got := docloom.Must("ok", nil); got != "ok" {
		t.Errorf("Must = %q", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Must did not panic on error")
		}
	}()
	docloom.Must("", os.ErrClosed)
}
