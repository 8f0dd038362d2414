package semantic

import "strings"

// Inline is a run of inline content. Exactly one content field is set:
// Text (possibly formatted), Image, or XRef.
type Inline struct {
	Text   string
	Strong bool
	Emph   bool
	Code   bool

	// Image is an embedded image reference.
	Image *ImageRef

	// XRef is a cross-reference to a semantic anchor id. XRefText is
	// the visible link text; when empty, renderers substitute the
	// target heading text.
	XRef     string
	XRefText string

	// Link is an external hyperlink target URL. The run's Text is the
	// visible link text.
	Link string
}

// ImageRef references an externally stored image file.
type ImageRef struct {
	// Path of the image file, relative to the document's media
	// directory.
	Path string
	Alt  string
	// Declared dimensions in EMU. Zero means unspecified; renderers
	// fall back to intrinsic pixel dimensions at 96 DPI.
	WidthEMU  int64
	HeightEMU int64
	// Anchored marks the image for floating placement (for example a
	// cover background) rather than inline flow.
	Anchored bool
}

// IsImage reports whether the run is an image reference.
func (in Inline) IsImage() bool { return in.Image != nil }

// IsXRef reports whether the run is an internal cross-reference.
func (in Inline) IsXRef() bool { return in.XRef != "" }

// InlineText returns the plain text of a run sequence, ignoring images
// and using the visible text of cross-references.
func InlineText(runs []Inline) string {
	var sb strings.Builder
	for _, r := range runs {
		switch {
		case r.IsImage():
			// images contribute no text
		case r.IsXRef():
			sb.WriteString(r.XRefText)
		default:
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}
