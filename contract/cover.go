package contract

import (
	"fmt"
	"strings"
)

// CoverLayout selects how the cover image and text relate.
type CoverLayout string

const (
	// CoverBackground places the image behind the text, full page.
	CoverBackground CoverLayout = "background"
	// CoverBlock places the image above the text as a block element.
	CoverBlock CoverLayout = "block"
)

// TextAlign is horizontal alignment for cover elements.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// CoverConfig describes the cover page layout and its text elements.
type CoverConfig struct {
	Layout   CoverLayout  `yaml:"layout,omitempty"`
	Image    string       `yaml:"image,omitempty"`
	Title    CoverElement `yaml:"title,omitempty"`
	Subtitle CoverElement `yaml:"subtitle,omitempty"`
	Authors  CoverElement `yaml:"authors,omitempty"`
	Revision CoverElement `yaml:"revision,omitempty"`
}

// CoverElement configures a single cover text element.
type CoverElement struct {
	StyleID string `yaml:"style,omitempty"`
	// Color is hex RGB without the leading '#', e.g. "1F2937".
	Color string `yaml:"color,omitempty"`
	// Size in half-points (72 = 36pt).
	Size int  `yaml:"size,omitempty"`
	Bold bool `yaml:"bold,omitempty"`
	// Top is the vertical position from the page top: "35%", "200pt",
	// "2in", "5cm", or "914400emu".
	Top   string    `yaml:"top,omitempty"`
	Align TextAlign `yaml:"align,omitempty"`
	// Content is a template over document metadata: {title},
	// {subtitle}, {author}, {email}, {revnumber}, {revdate}.
	Content string `yaml:"content,omitempty"`
}

// DefaultCover returns a cover configuration matching the stock layout:
// white centered text over a background image.
func DefaultCover() *CoverConfig {
	return &CoverConfig{
		Layout:   CoverBackground,
		Title:    CoverElement{Color: "FFFFFF", Size: 72, Bold: true, Top: "35%", Align: AlignCenter, Content: "{title}"},
		Subtitle: CoverElement{Color: "FFFFFF", Size: 32, Top: "45%", Align: AlignCenter, Content: "{subtitle}"},
		Authors:  CoverElement{Color: "FFFFFF", Size: 28, Top: "75%", Align: AlignCenter, Content: "{author}"},
		Revision: CoverElement{Color: "FFFFFF", Size: 24, Top: "80%", Align: AlignCenter, Content: "Version {revnumber} | {revdate}"},
	}
}

// Metadata values substituted into cover content templates.
type CoverMetadata struct {
	Title     string
	Subtitle  string
	Author    string
	Email     string
	RevNumber string
	RevDate   string
}

// ExpandTemplate substitutes metadata fields into a cover content
// template.
func ExpandTemplate(template string, meta CoverMetadata) string {
	r := strings.NewReplacer(
		"{title}", meta.Title,
		"{subtitle}", meta.Subtitle,
		"{author}", meta.Author,
		"{email}", meta.Email,
		"{revnumber}", meta.RevNumber,
		"{revdate}", meta.RevDate,
	)
	return r.Replace(template)
}

// EMU per unit. These are exact: all position math is integer, so
// repeated round trips cannot drift.
const (
	emuPerInch  = 914400
	emuPerPoint = 12700
	emuPerCM    = 360000
)

// ParsePosition converts a position string to EMU against a page height.
// Supported forms: "35%", "12.5%", "200pt", "2in", "5cm", "914400emu".
// A bare number is treated as a percentage.
func ParsePosition(position string, pageHeightEMU int64) (int64, error) {
	s := strings.TrimSpace(position)
	if s == "" {
		return 0, fmt.Errorf("empty position")
	}
	switch {
	case strings.HasSuffix(s, "%"):
		num, den, err := parseDecimal(strings.TrimSuffix(s, "%"))
		if err != nil {
			return 0, fmt.Errorf("position %q: %w", position, err)
		}
		return pageHeightEMU * num / (100 * den), nil
	case strings.HasSuffix(s, "emu"):
		num, den, err := parseDecimal(strings.TrimSuffix(s, "emu"))
		if err != nil {
			return 0, fmt.Errorf("position %q: %w", position, err)
		}
		return num / den, nil
	case strings.HasSuffix(s, "pt"):
		return parseUnit(s, "pt", emuPerPoint, position)
	case strings.HasSuffix(s, "in"):
		return parseUnit(s, "in", emuPerInch, position)
	case strings.HasSuffix(s, "cm"):
		return parseUnit(s, "cm", emuPerCM, position)
	default:
		num, den, err := parseDecimal(s)
		if err != nil {
			return 0, fmt.Errorf("position %q: %w", position, err)
		}
		return pageHeightEMU * num / (100 * den), nil
	}
}

func parseUnit(s, suffix string, emuPer int64, original string) (int64, error) {
	num, den, err := parseDecimal(strings.TrimSuffix(s, suffix))
	if err != nil {
		return 0, fmt.Errorf("position %q: %w", original, err)
	}
	return num * emuPer / den, nil
}

// parseDecimal parses a non-negative decimal number into an exact
// numerator/denominator pair.
func parseDecimal(s string) (num, den int64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty number")
	}
	den = 1
	seenDot := false
	seenDigit := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int64(c-'0')
			if seenDot {
				den *= 10
			}
			seenDigit = true
		case c == '.' && !seenDot:
			seenDot = true
		default:
			return 0, 0, fmt.Errorf("invalid number %q", s)
		}
	}
	if !seenDigit {
		return 0, 0, fmt.Errorf("invalid number %q", s)
	}
	return num, den, nil
}
