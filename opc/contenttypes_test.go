package opc

import (
	"strings"
	"testing"
)

const sampleTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

func TestParseContentTypes(t *testing.T) {
	ct, err := ParseContentTypes([]byte(sampleTypes))
	if err != nil {
		t.Fatalf("ParseContentTypes failed: %v", err)
	}
	if !ct.HasExtension("rels") {
		t.Error("rels extension should be registered")
	}
	if ct.HasExtension("png") {
		t.Error("png should not be registered yet")
	}
}

func TestRegisterExtension(t *testing.T) {
	ct, err := ParseContentTypes([]byte(sampleTypes))
	if err != nil {
		t.Fatalf("ParseContentTypes failed: %v", err)
	}
	ct.RegisterExtension("png")
	ct.RegisterExtension("png") // idempotent
	out := string(ct.Marshal())
	if strings.Count(out, `Extension="png"`) != 1 {
		t.Errorf("png should appear exactly once:\n%s", out)
	}
	if !strings.Contains(out, "image/png") {
		t.Errorf("png content type missing:\n%s", out)
	}
}

func TestRegisterExtensionUnknownFallsBack(t *testing.T) {
	ct, err := ParseContentTypes([]byte(sampleTypes))
	if err != nil {
		t.Fatalf("ParseContentTypes failed: %v", err)
	}
	ct.RegisterExtension("weird")
	if !strings.Contains(string(ct.Marshal()), "application/octet-stream") {
		t.Error("unknown extension should fall back to octet-stream")
	}
}

func TestRegisterOverride(t *testing.T) {
	ct, err := ParseContentTypes([]byte(sampleTypes))
	if err != nil {
		t.Fatalf("ParseContentTypes failed: %v", err)
	}
	ct.RegisterOverride("/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml")
	out := string(ct.Marshal())
	if !strings.Contains(out, `PartName="/docProps/core.xml"`) {
		t.Errorf("override missing:\n%s", out)
	}

	back, err := ParseContentTypes([]byte(out))
	if err != nil {
		t.Fatalf("re-parsing marshal output: %v", err)
	}
	if !back.HasExtension("xml") {
		t.Error("defaults lost on round trip")
	}
}
