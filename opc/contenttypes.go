package opc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const contentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

// Content types for image extensions the engine registers on demand.
var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

// ContentTypes is the parsed content-type registry part.
type ContentTypes struct {
	defaults  map[string]string // extension (lowercase) -> content type
	overrides map[string]string // part name -> content type
	defOrder  []string
	ovrOrder  []string
}

type contentTypesXML struct {
	XMLName   xml.Name `xml:"Types"`
	Defaults  []ctDefaultXML  `xml:"Default"`
	Overrides []ctOverrideXML `xml:"Override"`
}

type ctDefaultXML struct {
	XMLName     xml.Name `xml:"Default"`
	Extension   string   `xml:"Extension,attr"`
	ContentType string   `xml:"ContentType,attr"`
}

type ctOverrideXML struct {
	XMLName     xml.Name `xml:"Override"`
	PartName    string   `xml:"PartName,attr"`
	ContentType string   `xml:"ContentType,attr"`
}

// ParseContentTypes parses the [Content_Types].xml part.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var doc contentTypesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}
	ct := &ContentTypes{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
	for _, d := range doc.Defaults {
		ext := strings.ToLower(d.Extension)
		ct.defaults[ext] = d.ContentType
		ct.defOrder = append(ct.defOrder, ext)
	}
	for _, o := range doc.Overrides {
		ct.overrides[o.PartName] = o.ContentType
		ct.ovrOrder = append(ct.ovrOrder, o.PartName)
	}
	return ct, nil
}

// HasExtension reports whether a default content type is registered
// for the extension.
func (ct *ContentTypes) HasExtension(ext string) bool {
	_, ok := ct.defaults[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// RegisterExtension adds a default content type for an extension if
// one is not already present. Unknown image extensions fall back to
// application/octet-stream.
func (ct *ContentTypes) RegisterExtension(ext string) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || ct.HasExtension(ext) {
		return
	}
	typ, ok := imageContentTypes[ext]
	if !ok {
		typ = "application/octet-stream"
	}
	ct.defaults[ext] = typ
	ct.defOrder = append(ct.defOrder, ext)
}

// RegisterOverride adds or replaces an override entry for a part.
func (ct *ContentTypes) RegisterOverride(partName, contentType string) {
	if _, ok := ct.overrides[partName]; !ok {
		ct.ovrOrder = append(ct.ovrOrder, partName)
	}
	ct.overrides[partName] = contentType
}

// Marshal serializes the registry back to XML in stable order.
func (ct *ContentTypes) Marshal() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<Types xmlns="` + contentTypesNS + `">`)
	for _, ext := range ct.defOrder {
		sb.WriteString(`<Default Extension="` + escapeAttr(ext) + `" ContentType="` + escapeAttr(ct.defaults[ext]) + `"/>`)
	}
	for _, part := range ct.ovrOrder {
		sb.WriteString(`<Override PartName="` + escapeAttr(part) + `" ContentType="` + escapeAttr(ct.overrides[part]) + `"/>`)
	}
	sb.WriteString(`</Types>`)
	return []byte(sb.String())
}
