package docx

import (
	"strconv"

	"github.com/docloom/docloom/contract"
)

// Stock word-processing defaults, used when the style part declares
// nothing.
const (
	defaultFont = "Calibri"
	defaultSize = 22 // half-points (11pt)
)

// flattenTheme collapses the style part's inheritance chains into a
// single resolved defaults value. The chains are walked once, here, at
// the start of extraction; nothing re-walks them per element.
func flattenTheme(ss *styleSheet) contract.ThemeDefaults {
	theme := contract.ThemeDefaults{
		BodyFont: defaultFont,
		BaseSize: defaultSize,
	}
	if f := ss.defaults.RPrDefault.RPr.Font.ASCII; f != "" {
		theme.BodyFont = f
	}
	if v := ss.defaults.RPrDefault.RPr.FontSize.Val; v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			theme.BaseSize = size
		}
	}

	theme.HeadingFont = theme.BodyFont
	for _, def := range ss.chain("Heading1") {
		if f := def.RPr.Font.ASCII; f != "" {
			theme.HeadingFont = f
		}
	}
	return theme
}
