package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docloom/docloom/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Rejects unsafe temp file extensions
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "valid extension", extension: "docx"},
		{name: "valid with dot segments", extension: "tar.gz"},
		{name: "empty", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash", extension: "a/b", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash", extension: `a\b`, wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte", extension: "do\x00cx", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Creates and cleans up temp files
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	content := []byte("PK\x03\x04 placeholder")
	path, cleanup, err := fileutil.WriteTempFile(content, "docx")
	if err != nil {
		t.Fatalf("WriteTempFile: %v", err)
	}

	if !strings.HasSuffix(path, ".docx") {
		t.Errorf("path %q does not carry the extension", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Error("cleanup left the temp file behind")
	}
}

func TestWriteTempFileRejectsBadExtension(t *testing.T) {
	t.Parallel()

	if _, _, err := fileutil.WriteTempFile(nil, "../etc"); !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Errorf("err = %v, want ErrExtensionPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - All-or-nothing file replacement
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "out.docx")

	if err := fileutil.WriteFileAtomic(target, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := fileutil.WriteFileAtomic(target, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading target: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	// The rename must not leave the intermediate temp file behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only out.docx", names)
	}
}

func TestWriteFileAtomicMissingDirectory(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "no-such-dir", "out.docx")
	if err := fileutil.WriteFileAtomic(target, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if fileutil.FileExists(target) {
		t.Error("failed write created the target file")
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestIsFilePath - Path predicates
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists = false for a regular file")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists = true for a directory")
	}
	if fileutil.FileExists(filepath.Join(dir, "absent.txt")) {
		t.Error("FileExists = true for a missing path")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"contract.yaml", false},
		{"out/contract.yaml", true},
		{`C:\docs\report.docx`, true},
		{"", false},
	}
	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
