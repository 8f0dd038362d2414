package docx

import (
	"encoding/xml"
	"strings"
)

// stylesXML represents the structure of word/styles.xml.
type stylesXML struct {
	XMLName     xml.Name       `xml:"styles"`
	DocDefaults docDefaultsXML `xml:"docDefaults"`
	Styles      []styleDefXML  `xml:"style"`
}

// docDefaultsXML represents document default properties.
type docDefaultsXML struct {
	RPrDefault rPrDefaultXML `xml:"rPrDefault"`
}

// rPrDefaultXML represents default run properties.
type rPrDefaultXML struct {
	RPr runPropsXML `xml:"rPr"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string            `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string            `xml:"styleId,attr"`
	Default string            `xml:"default,attr"`
	Name    valXML            `xml:"name"`
	BasedOn valXML            `xml:"basedOn"`
	PPr     paragraphPropsXML `xml:"pPr"`
	RPr     runPropsXML       `xml:"rPr"`
}

// styleSheet indexes parsed style definitions.
type styleSheet struct {
	defaults docDefaultsXML
	byID     map[string]*styleDefXML
}

func parseStyles(data []byte) (*styleSheet, error) {
	var doc stylesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	ss := &styleSheet{
		defaults: doc.DocDefaults,
		byID:     make(map[string]*styleDefXML, len(doc.Styles)),
	}
	for i := range doc.Styles {
		s := &doc.Styles[i]
		ss.byID[s.StyleID] = s
	}
	return ss, nil
}

func emptyStyleSheet() *styleSheet {
	return &styleSheet{byID: make(map[string]*styleDefXML)}
}

// get returns a style definition by id.
func (ss *styleSheet) get(id string) (*styleDefXML, bool) {
	s, ok := ss.byID[id]
	return s, ok
}

// chain returns the basedOn inheritance chain for a style, base first.
// Cycles terminate at the first repeated id.
func (ss *styleSheet) chain(id string) []*styleDefXML {
	var reversed []*styleDefXML
	visited := make(map[string]bool)
	for cur := id; cur != "" && !visited[cur]; {
		visited[cur] = true
		def, ok := ss.byID[cur]
		if !ok {
			break
		}
		reversed = append(reversed, def)
		cur = def.BasedOn.Val
	}
	chain := make([]*styleDefXML, len(reversed))
	for i, def := range reversed {
		chain[len(reversed)-1-i] = def
	}
	return chain
}

// Built-in heading style ids, as stock templates name them.
var builtinHeadings = map[string]int{
	"heading1": 1, "heading2": 2, "heading3": 3,
	"heading4": 4, "heading5": 5, "heading6": 6,
	"heading7": 7, "heading8": 8, "heading9": 9,
	"title": 1,
}

// headingLevel classifies a style id as a heading and infers its
// level: built-in naming first, then the style's outline level, then a
// "heading"-containing style name.
func (ss *styleSheet) headingLevel(styleID string) (bool, int) {
	if level, ok := builtinHeadings[strings.ToLower(styleID)]; ok {
		return true, level
	}
	def, ok := ss.byID[styleID]
	if !ok {
		return false, 0
	}
	if def.PPr.OutlineLvl.Val != "" {
		if lvl := parseOutlineLevel(def.PPr.OutlineLvl.Val); lvl >= 0 {
			return true, lvl + 1
		}
	}
	if strings.Contains(strings.ToLower(def.Name.Val), "heading") {
		return true, 1
	}
	return false, 0
}

// listKind reports whether a style is a list style and which kind.
func (ss *styleSheet) listKind(styleID string) (bool, string) {
	lower := strings.ToLower(styleID)
	switch {
	case strings.Contains(lower, "bullet"):
		return true, "unordered"
	case strings.Contains(lower, "number"):
		return true, "ordered"
	}
	def, ok := ss.byID[styleID]
	if ok && def.PPr.NumPr.NumID.Val != "" {
		return true, "unordered"
	}
	return false, ""
}

// isCodeStyle reports whether a style denotes monospace content.
func (ss *styleSheet) isCodeStyle(styleID string) bool {
	lower := strings.ToLower(styleID)
	if strings.Contains(lower, "code") || strings.Contains(lower, "sourcecode") {
		return true
	}
	def, ok := ss.byID[styleID]
	return ok && isMonospaceFont(def.RPr.Font.ASCII)
}

// parseOutlineLevel parses the 0-based outline level attribute.
func parseOutlineLevel(s string) int {
	level := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		level = level*10 + int(c-'0')
	}
	if level <= 8 {
		return level
	}
	return -1
}

// Monospace font families recognized as code formatting.
var monospaceFonts = map[string]bool{
	"courier new":      true,
	"courier":          true,
	"consolas":         true,
	"menlo":            true,
	"monaco":           true,
	"cascadia code":    true,
	"cascadia mono":    true,
	"jetbrains mono":   true,
	"fira code":        true,
	"source code pro":  true,
	"liberation mono":  true,
	"dejavu sans mono": true,
}

func isMonospaceFont(name string) bool {
	return monospaceFonts[strings.ToLower(strings.TrimSpace(name))]
}
