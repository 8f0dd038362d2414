package opc

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func minimalParts() map[string]string {
	return map[string]string{
		PartContentTypes: `<Types/>`,
		PartDocument:     `<document/>`,
		PartStyles:       `<styles/>`,
	}
}

func TestFromBytesAndGet(t *testing.T) {
	a, err := FromBytes(buildZip(t, minimalParts()))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if got := string(a.Get(PartDocument)); got != "<document/>" {
		t.Errorf("Get = %q", got)
	}
	if a.Get("no/such/part") != nil {
		t.Error("missing part should return nil")
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	if _, err := FromBytes([]byte("not a zip")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestValidateMissingPart(t *testing.T) {
	parts := minimalParts()
	delete(parts, PartStyles)
	a, err := FromBytes(buildZip(t, parts))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	err = a.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var missing *MissingPartError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingPartError", err)
	}
	if missing.Part != PartStyles {
		t.Errorf("missing part = %q", missing.Part)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a, err := FromBytes(buildZip(t, minimalParts()))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	clone := a.Clone()
	clone.Set(PartDocument, []byte("<changed/>"))
	clone.Set("word/media/image1.png", []byte("img"))

	if got := string(a.Get(PartDocument)); got != "<document/>" {
		t.Errorf("clone mutation leaked into original: %q", got)
	}
	if a.Contains("word/media/image1.png") {
		t.Error("new part in clone leaked into original")
	}
}

func TestMediaParts(t *testing.T) {
	parts := minimalParts()
	parts["word/media/image2.png"] = "b"
	parts["word/media/image1.png"] = "a"
	a, err := FromBytes(buildZip(t, parts))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	media := a.MediaParts()
	if len(media) != 2 {
		t.Fatalf("media parts = %v", media)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	a, err := FromBytes(buildZip(t, minimalParts()))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	a.Set("docloom/manifest.json", []byte("{}"))

	path := filepath.Join(t.TempDir(), "out.docx")
	if err := a.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	back, err := Open(path)
	if err != nil {
		t.Fatalf("reopening output: %v", err)
	}
	if !back.Contains("docloom/manifest.json") {
		t.Error("sidecar part lost on write")
	}
	if got := string(back.Get(PartDocument)); got != "<document/>" {
		t.Errorf("document part = %q", got)
	}

	// No temp residue next to the output.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestRemove(t *testing.T) {
	a, err := FromBytes(buildZip(t, minimalParts()))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	data := a.Remove(PartStyles)
	if string(data) != "<styles/>" {
		t.Errorf("Remove returned %q", data)
	}
	if a.Contains(PartStyles) {
		t.Error("part still present after Remove")
	}
	for _, p := range a.Parts() {
		if p == PartStyles {
			t.Error("removed part still listed")
		}
	}
}
