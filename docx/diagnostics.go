package docx

import "fmt"

// DiagnosticCode identifies the class of a non-fatal finding.
type DiagnosticCode string

const (
	// DiagUnmappedStyle: a paragraph style had no known role and was
	// classified heuristically.
	DiagUnmappedStyle DiagnosticCode = "UnmappedStyle"
	// DiagDroppedFormatting: direct color or highlight formatting was
	// dropped rather than silently merged into a style.
	DiagDroppedFormatting DiagnosticCode = "DroppedFormatting"
	// DiagUnresolvedRelationship: a drawing or hyperlink relationship
	// id had no target; the element was skipped.
	DiagUnresolvedRelationship DiagnosticCode = "UnresolvedRelationship"
	// DiagMediaError: an image resolved but its bytes could not be
	// written to the media directory; the drawing was skipped.
	DiagMediaError DiagnosticCode = "MediaError"
	// DiagDanglingReference: a cross-reference had no matching anchor;
	// extraction keeps the plain text.
	DiagDanglingReference DiagnosticCode = "DanglingReference"
)

// Diagnostic is a non-fatal finding surfaced alongside an extraction
// result. Extraction recovers locally wherever a semantic gap is not
// correctness-critical; rendering never emits diagnostics, it fails.
type Diagnostic struct {
	Code DiagnosticCode
	// BlockIndex is the position of the affected block in document
	// order, -1 when not block-scoped.
	BlockIndex int
	Message    string
}

func (d Diagnostic) String() string {
	if d.BlockIndex < 0 {
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
	return fmt.Sprintf("[%s] block %d: %s", d.Code, d.BlockIndex, d.Message)
}

// RenderError wraps a fatal rendering failure with its block location.
type RenderError struct {
	BlockIndex int
	Err        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering block %d: %v", e.BlockIndex, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
