package docx

import "encoding/xml"

// numberingXML mirrors word/numbering.xml.
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition.
type abstractNumXML struct {
	AbstractNumID string   `xml:"abstractNumId,attr"`
	Levels        []lvlXML `xml:"lvl"`
}

// lvlXML represents one level of an abstract definition.
type lvlXML struct {
	ILvl   string `xml:"ilvl,attr"`
	NumFmt valXML `xml:"numFmt"`
}

// numXML binds a concrete numbering id to its abstract definition.
type numXML struct {
	NumID         string `xml:"numId,attr"`
	AbstractNumID valXML `xml:"abstractNumId"`
}

// numberingResolver resolves concrete numbering ids to list kinds
// through their abstract definitions.
type numberingResolver struct {
	abstractNums map[string]*abstractNumXML
	numMappings  map[string]string // numId -> abstractNumId
}

func emptyNumbering() *numberingResolver {
	return &numberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
		numMappings:  make(map[string]string),
	}
}

// parseNumbering indexes word/numbering.xml.
func parseNumbering(data []byte) (*numberingResolver, error) {
	var doc numberingXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	nr := emptyNumbering()
	for i := range doc.AbstractNums {
		an := &doc.AbstractNums[i]
		nr.abstractNums[an.AbstractNumID] = an
	}
	for _, num := range doc.Nums {
		nr.numMappings[num.NumID] = num.AbstractNumID.Val
	}
	return nr, nil
}

// listKind returns the list kind declared for a numbering id at an
// indentation level. ok is false when the id or level has no
// definition.
func (nr *numberingResolver) listKind(numID, ilvl string) (kind string, ok bool) {
	if numID == "" {
		return "", false
	}
	an, found := nr.abstractNums[nr.numMappings[numID]]
	if !found {
		return "", false
	}
	if ilvl == "" {
		ilvl = "0"
	}
	for i := range an.Levels {
		if an.Levels[i].ILvl != ilvl {
			continue
		}
		switch an.Levels[i].NumFmt.Val {
		case "bullet", "none", "":
			return "unordered", true
		default:
			// decimal, lowerLetter, upperLetter, lowerRoman, upperRoman
			// and the rarer counted formats all number their items.
			return "ordered", true
		}
	}
	return "", false
}
