package docloom

import (
	"strings"

	"github.com/docloom/docloom/docx"
)

// Warning is a non-fatal issue encountered while processing a document.
// Extraction succeeded but the result may be imperfect: a style had no
// mapping, direct formatting was dropped, a relationship did not
// resolve.
type Warning struct {
	// Code identifies the warning category.
	Code string
	// BlockIndex is the position of the affected block in the semantic
	// tree, -1 when the warning is not tied to a block.
	BlockIndex int
	// Message is a human-readable description.
	Message string
}

func (w Warning) String() string {
	return w.Code + ": " + w.Message
}

// FormatWarnings joins warnings into a single human-readable string,
// one per line.
//
// Example:
//
//	result, warnings, err := docloom.Open("report.docx").Extract()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", docloom.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// warningsFromDiagnostics converts pipeline diagnostics to warnings.
func warningsFromDiagnostics(diags []docx.Diagnostic) []Warning {
	if len(diags) == 0 {
		return nil
	}
	out := make([]Warning, len(diags))
	for i, d := range diags {
		out[i] = Warning{
			Code:       string(d.Code),
			BlockIndex: d.BlockIndex,
			Message:    d.Message,
		}
	}
	return out
}
