package opc

import (
	"strings"
	"testing"
)

const sampleRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="` + RelTypeStyles + `" Target="styles.xml"/>
  <Relationship Id="rId7" Type="` + RelTypeImage + `" Target="media/image1.png"/>
  <Relationship Id="rId2" Type="` + RelTypeHyperlink + `" Target="https://example.com" TargetMode="External"/>
</Relationships>`

func TestParseRelationships(t *testing.T) {
	r, err := ParseRelationships([]byte(sampleRels))
	if err != nil {
		t.Fatalf("ParseRelationships failed: %v", err)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	target, ok := r.Target("rId7")
	if !ok || target != "media/image1.png" {
		t.Errorf("Target(rId7) = %q, %v", target, ok)
	}
	if r.IsExternal("rId7") {
		t.Error("rId7 should not be external")
	}
	if !r.IsExternal("rId2") {
		t.Error("rId2 should be external")
	}
	if _, ok := r.Target("rId99"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestAddAllocatesAfterHighestID(t *testing.T) {
	r, err := ParseRelationships([]byte(sampleRels))
	if err != nil {
		t.Fatalf("ParseRelationships failed: %v", err)
	}
	id := r.Add("media/image2.png", RelTypeImage)
	if id != "rId8" {
		t.Errorf("new id = %q, want rId8 (after highest existing)", id)
	}
	id2 := r.Add("media/image3.png", RelTypeImage)
	if id2 != "rId9" {
		t.Errorf("second id = %q, want rId9", id2)
	}
}

func TestMarshalPreservesOrder(t *testing.T) {
	r := NewRelationships()
	r.Add("styles.xml", RelTypeStyles)
	r.Add("media/image1.png", RelTypeImage)
	r.AddWithMode("https://example.com", RelTypeHyperlink, "External")

	out := string(r.Marshal())
	iStyles := strings.Index(out, "styles.xml")
	iImage := strings.Index(out, "image1.png")
	iLink := strings.Index(out, "example.com")
	if iStyles < 0 || iImage < 0 || iLink < 0 {
		t.Fatalf("marshal output incomplete:\n%s", out)
	}
	if !(iStyles < iImage && iImage < iLink) {
		t.Errorf("order not preserved:\n%s", out)
	}
	if !strings.Contains(out, `TargetMode="External"`) {
		t.Error("external mode missing from marshal output")
	}

	back, err := ParseRelationships([]byte(out))
	if err != nil {
		t.Fatalf("re-parsing marshal output: %v", err)
	}
	if back.Len() != 3 {
		t.Errorf("round trip lost relationships: %d", back.Len())
	}
}

func TestMarshalEscapesTargets(t *testing.T) {
	r := NewRelationships()
	r.AddWithMode("https://example.com/?a=1&b=2", RelTypeHyperlink, "External")
	out := string(r.Marshal())
	if strings.Contains(out, "a=1&b=2") {
		t.Error("ampersand in target must be escaped")
	}
	if !strings.Contains(out, "a=1&amp;b=2") {
		t.Errorf("escaped target missing:\n%s", out)
	}
}
