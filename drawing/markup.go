package drawing

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Markup returns the w:drawing element for the image, suitable for
// placement inside a run. Inline images use wp:inline; anchored images
// use wp:anchor with the stored offsets and behind-text placement.
func (img *Image) Markup() string {
	var sb strings.Builder
	sb.WriteString(`<w:drawing>`)
	if img.Position.Anchored {
		sb.WriteString(`<wp:anchor distT="0" distB="0" distL="0" distR="0" simplePos="0" relativeHeight="0" behindDoc="1" locked="0" layoutInCell="1" allowOverlap="1">`)
		sb.WriteString(`<wp:simplePos x="0" y="0"/>`)
		fmt.Fprintf(&sb, `<wp:positionH relativeFrom="page"><wp:posOffset>%d</wp:posOffset></wp:positionH>`, img.Position.OffsetH)
		fmt.Fprintf(&sb, `<wp:positionV relativeFrom="page"><wp:posOffset>%d</wp:posOffset></wp:positionV>`, img.Position.OffsetV)
		fmt.Fprintf(&sb, `<wp:extent cx="%d" cy="%d"/>`, img.WidthEMU, img.HeightEMU)
		sb.WriteString(wrapMarkup(img.Position.Wrap))
		sb.WriteString(img.docPr())
		sb.WriteString(img.graphic())
		sb.WriteString(`</wp:anchor>`)
	} else {
		sb.WriteString(`<wp:inline distT="0" distB="0" distL="0" distR="0">`)
		fmt.Fprintf(&sb, `<wp:extent cx="%d" cy="%d"/>`, img.WidthEMU, img.HeightEMU)
		sb.WriteString(img.docPr())
		sb.WriteString(img.graphic())
		sb.WriteString(`</wp:inline>`)
	}
	sb.WriteString(`</w:drawing>`)
	return sb.String()
}

func wrapMarkup(w WrapKind) string {
	switch w {
	case WrapSquare:
		return `<wp:wrapSquare wrapText="bothSides"/>`
	case WrapTopAndBottom:
		return `<wp:wrapTopAndBottom/>`
	default:
		return `<wp:wrapNone/>`
	}
}

func (img *Image) docPr() string {
	return fmt.Sprintf(`<wp:docPr id="%d" name="Picture %d" descr="%s"/>`,
		img.ID, img.ID, escapeXML(img.Alt))
}

func (img *Image) graphic() string {
	var sb strings.Builder
	sb.WriteString(`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`)
	sb.WriteString(`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`)
	sb.WriteString(`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`)
	fmt.Fprintf(&sb, `<pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr>`, img.ID, img.ID)
	fmt.Fprintf(&sb, `<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`, escapeXML(img.RelID))
	fmt.Fprintf(&sb, `<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, img.WidthEMU, img.HeightEMU)
	sb.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	sb.WriteString(`</pic:pic></a:graphicData></a:graphic>`)
	return sb.String()
}

func escapeXML(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}
