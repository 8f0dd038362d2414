package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/docloom/docloom/anchor"
	"github.com/docloom/docloom/contract"
	"github.com/docloom/docloom/docx"
	"github.com/docloom/docloom/opc"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Strict mapping failures (exit 4)
		{"unmapped role", &contract.UnmappedRoleError{Role: "h3"}, ExitStrict},
		{"dangling reference", &anchor.DanglingReferenceError{Ref: "missing"}, ExitStrict},
		{"render error", &docx.RenderError{BlockIndex: 2, Err: errors.New("x")}, ExitStrict},
		{"wrapped unmapped role", fmt.Errorf("rendering: %w", &contract.UnmappedRoleError{Role: "code"}), ExitStrict},
		{"render error wrapping unmapped role", &docx.RenderError{
			BlockIndex: 0,
			Err:        &contract.UnmappedRoleError{Role: "h1"},
		}, ExitStrict},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"missing part", &opc.MissingPartError{Part: "word/document.xml"}, ExitIO},
		{"malformed package", &opc.MalformedPackageError{Err: errors.New("bad zip")}, ExitIO},
		{"wrapped file not exist", fmt.Errorf("opening: %w", os.ErrNotExist), ExitIO},

		// Usage errors (exit 2)
		{"usage", errUsage, ExitUsage},
		{"wrapped usage", fmt.Errorf("parsing flags: %w", errUsage), ExitUsage},

		// Everything else (exit 1)
		{"generic error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodesFollowConventions(t *testing.T) {
	t.Parallel()
	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitStrict}
	for i, code := range codes {
		if code != i {
			t.Errorf("exit code %d out of sequence: got %d", i, code)
		}
		if code >= 126 {
			t.Errorf("exit code %d collides with shell-reserved range", code)
		}
	}
}
