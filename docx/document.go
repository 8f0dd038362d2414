// Package docx walks the wordprocessing package's document body and
// implements the two pipelines: permissive extraction into a semantic
// tree plus mapping contract, and strict rendering of a semantic tree
// through a contract into a template package.
package docx

import "encoding/xml"

// documentXML mirrors word/document.xml.
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

// bodyXML holds the body's block elements in document order. Order is
// load-bearing: identifier allocation during extraction follows it.
type bodyXML struct {
	Elements []bodyElement
}

// bodyElement is one ordered body child: a paragraph or a table.
type bodyElement struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

// UnmarshalXML collects paragraphs and tables in their original order,
// which encoding/xml's struct tags alone would not preserve.
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, bodyElement{Paragraph: &p})
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, bodyElement{Table: &tbl})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// paragraphXML represents a paragraph element (<w:p>) with its children
// in document order.
type paragraphXML struct {
	Properties paragraphPropsXML
	Children   []paraChild
}

// paraChild is one ordered paragraph child.
type paraChild struct {
	Run       *runXML
	Hyperlink *hyperlinkXML
	Bookmark  *bookmarkXML
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := d.DecodeElement(&p.Properties, &t); err != nil {
					return err
				}
			case "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, paraChild{Run: &r})
			case "hyperlink":
				var h hyperlinkXML
				if err := d.DecodeElement(&h, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, paraChild{Hyperlink: &h})
			case "bookmarkStart":
				var bm bookmarkXML
				if err := d.DecodeElement(&bm, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, paraChild{Bookmark: &bm})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// runs returns the paragraph's runs, including those nested in
// hyperlinks.
func (p *paragraphXML) runs() []runXML {
	var out []runXML
	for _, c := range p.Children {
		switch {
		case c.Run != nil:
			out = append(out, *c.Run)
		case c.Hyperlink != nil:
			out = append(out, c.Hyperlink.Runs...)
		}
	}
	return out
}

// text returns the concatenated plain text of the paragraph.
func (p *paragraphXML) text() string {
	var s string
	for _, r := range p.runs() {
		s += r.text()
	}
	return s
}

// firstBookmark returns the first bookmark declared on the paragraph,
// or "".
func (p *paragraphXML) firstBookmark() string {
	for _, c := range p.Children {
		if c.Bookmark != nil && c.Bookmark.Name != "" {
			return c.Bookmark.Name
		}
	}
	return ""
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style      styleRefXML       `xml:"pStyle"`
	NumPr      numberingPropsXML `xml:"numPr"`
	OutlineLvl valXML            `xml:"outlineLvl"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// valXML is a generic single-attribute value element.
type valXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	ILvl  valXML `xml:"ilvl"`
	NumID valXML `xml:"numId"`
}

// runXML represents a text run (<w:r>).
type runXML struct {
	Properties runPropsXML  `xml:"rPr"`
	Text       []textXML    `xml:"t"`
	Tabs       []tabXML     `xml:"tab"`
	Breaks     []breakXML   `xml:"br"`
	Drawings   []drawingXML `xml:"drawing"`
}

func (r *runXML) text() string {
	var s string
	for _, t := range r.Text {
		s += t.Value
	}
	for range r.Tabs {
		s += "\t"
	}
	return s
}

// hasPageBreak reports whether the run carries an explicit page break.
func (r *runXML) hasPageBreak() bool {
	for _, br := range r.Breaks {
		if br.Type == "page" {
			return true
		}
	}
	return false
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style     styleRefXML `xml:"rStyle"`
	Bold      *toggleXML  `xml:"b"`
	Italic    *toggleXML  `xml:"i"`
	Font      fontXML     `xml:"rFonts"`
	FontSize  valXML      `xml:"sz"`
	Color     valXML      `xml:"color"`
	Highlight valXML      `xml:"highlight"`
}

// toggleXML is an on/off run property; presence means on unless
// val="false" or val="0".
type toggleXML struct {
	Val string `xml:"val,attr"`
}

func (t *toggleXML) on() bool {
	return t != nil && t.Val != "false" && t.Val != "0"
}

// fontXML represents font settings.
type fontXML struct {
	ASCII string `xml:"ascii,attr"`
	HAnsi string `xml:"hAnsi,attr"`
}

// textXML represents text content (<w:t>).
type textXML struct {
	Space string `xml:"space,attr"`
	Value string `xml:",chardata"`
}

// tabXML represents a tab character.
type tabXML struct{}

// breakXML represents a line, column, or page break.
type breakXML struct {
	Type string `xml:"type,attr"`
}

// hyperlinkXML represents a hyperlink: external (relationship id) or
// internal (bookmark anchor).
type hyperlinkXML struct {
	ID     string   `xml:"id,attr"`
	Anchor string   `xml:"anchor,attr"`
	Runs   []runXML `xml:"r"`
}

func (h *hyperlinkXML) text() string {
	var s string
	for i := range h.Runs {
		s += h.Runs[i].text()
	}
	return s
}

// bookmarkXML represents a bookmark start marker.
type bookmarkXML struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	Properties tablePropsXML `xml:"tblPr"`
	Grid       tableGridXML  `xml:"tblGrid"`
	Rows       []tableRowXML `xml:"tr"`
}

// tablePropsXML represents table properties.
type tablePropsXML struct {
	Style styleRefXML `xml:"tblStyle"`
}

// tableGridXML represents the table grid definition.
type tableGridXML struct {
	Cols []gridColXML `xml:"gridCol"`
}

// gridColXML represents a grid column.
type gridColXML struct {
	W string `xml:"w,attr"`
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	Header *toggleXML `xml:"tblHeader"`
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	Properties cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan valXML `xml:"gridSpan"`
}

// drawingXML represents an embedded drawing (<w:drawing>).
type drawingXML struct {
	Inline *drawingBodyXML `xml:"inline"`
	Anchor *drawingBodyXML `xml:"anchor"`
}

// drawingBodyXML is the common shape of wp:inline and wp:anchor.
type drawingBodyXML struct {
	Extent    extentXML      `xml:"extent"`
	DocPr     docPrXML       `xml:"docPr"`
	PositionH posOffsetXML   `xml:"positionH"`
	PositionV posOffsetXML   `xml:"positionV"`
	Graphic   graphicDataXML `xml:"graphic>graphicData"`
}

// extentXML represents drawing dimensions in EMU.
type extentXML struct {
	CX string `xml:"cx,attr"`
	CY string `xml:"cy,attr"`
}

// docPrXML represents drawing document properties; Descr is alt text.
type docPrXML struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

// posOffsetXML represents an anchored drawing's offset.
type posOffsetXML struct {
	Offset string `xml:"posOffset"`
}

// graphicDataXML holds either a single picture or a shape group.
type graphicDataXML struct {
	Pic   *picXML   `xml:"pic"`
	Group *groupXML `xml:"wgp"`
}

// picXML is a picture reference inside a drawing.
type picXML struct {
	Blip blipXML `xml:"blipFill>blip"`
}

// blipXML carries the image relationship id.
type blipXML struct {
	Embed string `xml:"embed,attr"`
}

// groupXML is a shape group. Groups nest arbitrarily; walkers use an
// explicit work list rather than recursion, since depth is
// input-controlled.
type groupXML struct {
	Pics   []picXML   `xml:"pic"`
	Groups []groupXML `xml:"grpSp"`
}

// collectPics gathers every picture in a drawing, flattening nested
// shape groups iteratively with a work list.
func (d *drawingXML) collectPics() []picXML {
	body := d.Inline
	if body == nil {
		body = d.Anchor
	}
	if body == nil {
		return nil
	}
	if body.Graphic.Pic != nil {
		return []picXML{*body.Graphic.Pic}
	}
	if body.Graphic.Group == nil {
		return nil
	}
	var pics []picXML
	work := []*groupXML{body.Graphic.Group}
	for len(work) > 0 {
		g := work[len(work)-1]
		work = work[:len(work)-1]
		pics = append(pics, g.Pics...)
		for i := range g.Groups {
			work = append(work, &g.Groups[i])
		}
	}
	return pics
}

// corePropertiesXML represents docProps/core.xml metadata.
type corePropertiesXML struct {
	XMLName  xml.Name `xml:"coreProperties"`
	Title    string   `xml:"title"`
	Subject  string   `xml:"subject"`
	Creator  string   `xml:"creator"`
	Revision string   `xml:"revision"`
	Modified string   `xml:"modified"`
}
