package docx

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/docloom/docloom/anchor"
	"github.com/docloom/docloom/contract"
	"github.com/docloom/docloom/drawing"
	"github.com/docloom/docloom/manifest"
	"github.com/docloom/docloom/opc"
	"github.com/docloom/docloom/semantic"
)

// RenderOptions configures a render run.
type RenderOptions struct {
	// MediaDir is where image files referenced by the tree are read
	// from.
	MediaDir string
	// GenerateTOC inserts a table-of-contents field built from the
	// document's heading anchors, placed after the cover page.
	GenerateTOC bool
	// Logger receives advisory progress logging; nil means silent.
	Logger *slog.Logger
}

const (
	emuPerTwip = 635

	// US Letter, used when the template carries no section properties.
	defaultPageWidthTwips  = 12240
	defaultPageHeightTwips = 15840
)

// Renderer renders semantic trees into copies of one template package.
// The template is loaded and validated once; each Render call works on
// its own copy, so a Renderer may serve concurrent renders of
// independent documents.
type Renderer struct {
	template *opc.Archive
	styles   *styleSheet
	sectPr   string
	pageW    int64 // EMU
	pageH    int64 // EMU
}

// NewRenderer validates the template package and prepares it for
// rendering. A template missing a required part fails here, before any
// document work starts.
func NewRenderer(template *opc.Archive) (*Renderer, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}
	styles, err := parseStyles(template.Get(opc.PartStyles))
	if err != nil {
		return nil, &opc.MalformedPackageError{Part: opc.PartStyles, Err: err}
	}
	r := &Renderer{template: template, styles: styles}
	r.sectPr, r.pageW, r.pageH = sectionProperties(template.Get(opc.PartDocument))
	return r, nil
}

// sectionProperties extracts the trailing section properties element
// from a template body, so page geometry and headers survive the
// rebuild. Absent section properties fall back to US Letter.
func sectionProperties(docXML []byte) (string, int64, int64) {
	w := int64(defaultPageWidthTwips) * emuPerTwip
	h := int64(defaultPageHeightTwips) * emuPerTwip
	s := string(docXML)
	start := strings.LastIndex(s, "<w:sectPr")
	if start < 0 {
		return fmt.Sprintf(`<w:sectPr><w:pgSz w:w="%d" w:h="%d"/></w:sectPr>`,
			defaultPageWidthTwips, defaultPageHeightTwips), w, h
	}
	end := strings.Index(s[start:], "</w:sectPr>")
	if end < 0 {
		return fmt.Sprintf(`<w:sectPr><w:pgSz w:w="%d" w:h="%d"/></w:sectPr>`,
			defaultPageWidthTwips, defaultPageHeightTwips), w, h
	}
	sect := s[start : start+end+len("</w:sectPr>")]
	if tw := attrValue(sect, "<w:pgSz", "w:w"); tw > 0 {
		w = tw * emuPerTwip
	}
	if th := attrValue(sect, "<w:pgSz", "w:h"); th > 0 {
		h = th * emuPerTwip
	}
	return sect, w, h
}

// attrValue scans markup for the first occurrence of element and reads
// the named numeric attribute.
func attrValue(markup, element, attr string) int64 {
	i := strings.Index(markup, element)
	if i < 0 {
		return 0
	}
	rest := markup[i:]
	if j := strings.Index(rest, ">"); j >= 0 {
		rest = rest[:j]
	}
	key := attr + `="`
	k := strings.Index(rest, key)
	if k < 0 {
		return 0
	}
	rest = rest[k+len(key):]
	if j := strings.Index(rest, `"`); j >= 0 {
		rest = rest[:j]
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// renderRun carries the state of a single render. State is per-run:
// the renderer itself stays read-only.
type renderRun struct {
	r          *Renderer
	archive    *opc.Archive
	rels       *opc.Relationships
	types      *opc.ContentTypes
	contract   *contract.Contract
	normalizer *anchor.Normalizer
	embedder   *drawing.Embedder
	manifest   *manifest.Manifest
	tree       *semantic.Document
	opts       RenderOptions

	body       strings.Builder
	nextBmID   int
	hyperlinks map[string]string // external target -> relationship id
}

// Render produces a new package from a semantic tree and its contract.
// Rendering is strict: an unresolvable style role or a dangling
// cross-reference aborts with a RenderError before any output exists.
func (r *Renderer) Render(tree *semantic.Document, c *contract.Contract, opts RenderOptions) (*opc.Archive, error) {
	if err := r.preflight(tree, c); err != nil {
		return nil, err
	}

	archive := r.template.Clone()

	rels := opc.NewRelationships()
	if data := archive.Get(opc.PartDocumentRels); data != nil {
		parsed, err := opc.ParseRelationships(data)
		if err != nil {
			return nil, &opc.MalformedPackageError{Part: opc.PartDocumentRels, Err: err}
		}
		rels = parsed
	}
	types, err := opc.ParseContentTypes(archive.Get(opc.PartContentTypes))
	if err != nil {
		return nil, &opc.MalformedPackageError{Part: opc.PartContentTypes, Err: err}
	}

	run := &renderRun{
		r:          r,
		archive:    archive,
		rels:       rels,
		types:      types,
		contract:   c,
		normalizer: anchor.NewNormalizer(c),
		embedder:   drawing.NewEmbedder(archive, rels, types, opts.MediaDir),
		manifest:   manifest.New(),
		tree:       tree,
		opts:       opts,
		nextBmID:   1,
		hyperlinks: make(map[string]string),
	}

	if err := run.renderBody(); err != nil {
		return nil, err
	}
	if err := run.finish(); err != nil {
		return nil, err
	}
	return archive, nil
}

// RenderFile renders and writes the package to path. The file appears
// only after the whole render succeeds; failures leave no output.
func (r *Renderer) RenderFile(tree *semantic.Document, c *contract.Contract, path string, opts RenderOptions) error {
	archive, err := r.Render(tree, c, opts)
	if err != nil {
		return err
	}
	return archive.WriteFile(path)
}

// preflight verifies every role and cross-reference in the tree before
// any mutation. A role resolves only if the contract maps it and the
// template defines the mapped style.
func (r *Renderer) preflight(tree *semantic.Document, c *contract.Contract) error {
	checkStyle := func(i int, id string, role string) error {
		if _, ok := r.styles.get(id); !ok {
			return &RenderError{BlockIndex: i, Err: &contract.UnmappedRoleError{Role: role}}
		}
		return nil
	}

	for i, b := range tree.Blocks {
		var runs []semantic.Inline
		switch blk := b.(type) {
		case *semantic.Heading:
			id, err := c.ResolveHeading(blk.Level)
			if err != nil {
				return &RenderError{BlockIndex: i, Err: err}
			}
			if err := checkStyle(i, id, "h"+strconv.Itoa(blk.Level)); err != nil {
				return err
			}
			runs = blk.Runs
		case *semantic.Paragraph:
			role := blk.StyleRole
			if role == "" {
				role = "body"
			}
			id, err := c.Resolve(role)
			if err != nil {
				return &RenderError{BlockIndex: i, Err: err}
			}
			if err := checkStyle(i, id, role); err != nil {
				return err
			}
			runs = blk.Runs
		case *semantic.List:
			id, err := listStyle(c, blk.ListKind)
			if err != nil {
				return &RenderError{BlockIndex: i, Err: err}
			}
			if err := checkStyle(i, id, "list"); err != nil {
				return err
			}
			for _, item := range blk.Items {
				if err := checkXRefs(tree, c, i, item.Runs); err != nil {
					return err
				}
			}
		case *semantic.Literal:
			id, err := c.Resolve("literal")
			if err != nil {
				return &RenderError{BlockIndex: i, Err: err}
			}
			if err := checkStyle(i, id, "literal"); err != nil {
				return err
			}
		case *semantic.Table:
			role := blk.StyleRole
			if role == "" {
				role = "table"
			}
			id, err := c.ResolveTable(role)
			if err != nil {
				return &RenderError{BlockIndex: i, Err: err}
			}
			if err := checkStyle(i, id, role); err != nil {
				return err
			}
			for _, row := range blk.Rows {
				for _, cell := range row.Cells {
					if err := checkXRefs(tree, c, i, cell.Runs); err != nil {
						return err
					}
				}
			}
		}
		if err := checkXRefs(tree, c, i, runs); err != nil {
			return err
		}
	}
	return nil
}

// checkXRefs rejects cross-references that neither the tree nor the
// contract can resolve. An id the contract maps is acceptable even
// without a tree anchor: its original bookmark still names a target.
func checkXRefs(tree *semantic.Document, c *contract.Contract, blockIndex int, runs []semantic.Inline) error {
	for _, in := range runs {
		if in.XRef == "" || tree.HasAnchor(in.XRef) {
			continue
		}
		if _, ok := c.Bookmark(in.XRef); ok {
			continue
		}
		return &RenderError{
			BlockIndex: blockIndex,
			Err:        &anchor.DanglingReferenceError{Ref: in.XRef, BlockIndex: blockIndex},
		}
	}
	return nil
}

// listStyle resolves the paragraph style for a list kind. The
// alphabetically first matching style id wins.
func listStyle(c *contract.Contract, kind semantic.ListKind) (string, error) {
	var ids []string
	for id, m := range c.ParagraphStyles {
		if m.IsList && m.ListKind == kind.String() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		// Fall back to any list mapping before giving up.
		for id, m := range c.ParagraphStyles {
			if m.IsList {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return "", &contract.UnmappedRoleError{Role: "list"}
	}
	sort.Strings(ids)
	return ids[0], nil
}

func (run *renderRun) renderBody() error {
	if run.contract.Cover != nil {
		if err := run.renderCover(); err != nil {
			return err
		}
	}
	if run.opts.GenerateTOC {
		run.renderTOC()
	}

	for i, b := range run.tree.Blocks {
		var err error
		switch blk := b.(type) {
		case *semantic.Heading:
			err = run.renderHeading(blk)
		case *semantic.Paragraph:
			err = run.renderParagraph(blk)
		case *semantic.List:
			err = run.renderList(blk)
		case *semantic.Literal:
			err = run.renderLiteral(blk)
		case *semantic.Table:
			err = run.renderTable(blk)
		case *semantic.PageBreak:
			run.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
		if err != nil {
			return &RenderError{BlockIndex: i, Err: err}
		}
	}
	return nil
}

// finish assembles document.xml around the rendered body and updates
// the package's relationship, content-type, metadata, and sidecar
// parts.
func (run *renderRun) finish() error {
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	doc.WriteString(`<w:document` +
		` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`)
	doc.WriteString(`<w:body>`)
	doc.WriteString(run.body.String())
	doc.WriteString(run.r.sectPr)
	doc.WriteString(`</w:body></w:document>`)

	run.archive.Set(opc.PartDocument, []byte(doc.String()))
	run.archive.Set(opc.PartDocumentRels, run.rels.Marshal())
	run.writeCoreProperties()
	run.archive.Set(opc.PartContentTypes, run.types.Marshal())
	if err := run.manifest.WriteTo(run.archive); err != nil {
		return err
	}

	if run.opts.Logger != nil {
		run.opts.Logger.Info("rendered package",
			"blocks", len(run.tree.Blocks),
			"parts", len(run.archive.Parts()))
	}
	return nil
}

func (run *renderRun) writeCoreProperties() {
	meta := run.tree.Meta
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	fmt.Fprintf(&sb, `<dc:title>%s</dc:title>`, escapeXML(meta.Title))
	if meta.Subtitle != "" {
		fmt.Fprintf(&sb, `<dc:subject>%s</dc:subject>`, escapeXML(meta.Subtitle))
	}
	fmt.Fprintf(&sb, `<dc:creator>%s</dc:creator>`, escapeXML(meta.Author))
	if meta.RevNumber != "" {
		fmt.Fprintf(&sb, `<cp:revision>%s</cp:revision>`, escapeXML(meta.RevNumber))
	}
	if !meta.Created.IsZero() {
		fmt.Fprintf(&sb, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`,
			meta.Created.UTC().Format("2006-01-02T15:04:05Z"))
	}
	sb.WriteString(`</cp:coreProperties>`)
	run.archive.Set(opc.PartCoreProps, []byte(sb.String()))
	run.types.RegisterOverride("/"+opc.PartCoreProps,
		"application/vnd.openxmlformats-package.core-properties+xml")
}

// renderCover writes the cover page: an optional full-page background
// image behind absolutely positioned text frames, then a page break.
func (run *renderRun) renderCover() error {
	cover := run.contract.Cover
	meta := contract.CoverMetadata{
		Title:     run.tree.Meta.Title,
		Subtitle:  run.tree.Meta.Subtitle,
		Author:    run.tree.Meta.Author,
		Email:     run.tree.Meta.Email,
		RevNumber: run.tree.Meta.RevNumber,
		RevDate:   run.tree.Meta.RevDate,
	}

	if cover.Image != "" {
		ref := &semantic.ImageRef{
			Path:      cover.Image,
			Alt:       "cover",
			WidthEMU:  run.r.pageW,
			HeightEMU: run.r.pageH,
			Anchored:  cover.Layout != contract.CoverBlock,
		}
		img, err := run.embedder.Embed(ref)
		if err != nil {
			return fmt.Errorf("cover image: %w", err)
		}
		run.manifest.Add("cover", manifest.ElementMeta{Type: "figure", Source: cover.Image})
		run.body.WriteString(`<w:p><w:r>` + img.Markup() + `</w:r></w:p>`)
	}

	elements := []contract.CoverElement{cover.Title, cover.Subtitle, cover.Authors, cover.Revision}
	for _, el := range elements {
		if el.Content == "" {
			continue
		}
		text := contract.ExpandTemplate(el.Content, meta)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := run.renderCoverElement(el, text); err != nil {
			return err
		}
	}

	run.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
	return nil
}

// renderCoverElement writes one positioned cover text paragraph. The
// vertical position resolves against the page height, so percentage
// positions round trip exactly across page sizes.
func (run *renderRun) renderCoverElement(el contract.CoverElement, text string) error {
	topEMU := int64(0)
	if el.Top != "" {
		v, err := contract.ParsePosition(el.Top, run.r.pageH)
		if err != nil {
			return fmt.Errorf("cover element: %w", err)
		}
		topEMU = v
	}
	topTwips := topEMU / emuPerTwip
	pageWTwips := run.r.pageW / emuPerTwip

	align := "center"
	switch el.Align {
	case contract.AlignLeft:
		align = "left"
	case contract.AlignRight:
		align = "right"
	}

	var sb strings.Builder
	sb.WriteString(`<w:p><w:pPr>`)
	if el.StyleID != "" {
		fmt.Fprintf(&sb, `<w:pStyle w:val="%s"/>`, escapeXML(el.StyleID))
	}
	fmt.Fprintf(&sb, `<w:framePr w:w="%d" w:wrap="notBeside" w:hAnchor="page" w:vAnchor="page" w:x="0" w:y="%d"/>`,
		pageWTwips, topTwips)
	fmt.Fprintf(&sb, `<w:jc w:val="%s"/>`, align)
	sb.WriteString(`</w:pPr><w:r><w:rPr>`)
	if el.Bold {
		sb.WriteString(`<w:b/>`)
	}
	if el.Color != "" {
		fmt.Fprintf(&sb, `<w:color w:val="%s"/>`, escapeXML(el.Color))
	}
	if el.Size > 0 {
		fmt.Fprintf(&sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, el.Size, el.Size)
	}
	sb.WriteString(`</w:rPr>`)
	fmt.Fprintf(&sb, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(text))
	sb.WriteString(`</w:r></w:p>`)
	run.body.WriteString(sb.String())
	return nil
}

// renderTOC writes a table-of-contents field. The entries are built
// from the document's heading anchors, and the field code lets host
// applications refresh page numbers on open.
func (run *renderRun) renderTOC() {
	run.body.WriteString(`<w:p><w:r><w:fldChar w:fldCharType="begin"/></w:r>`)
	run.body.WriteString(`<w:r><w:instrText xml:space="preserve"> TOC \o "1-9" \h </w:instrText></w:r>`)
	run.body.WriteString(`<w:r><w:fldChar w:fldCharType="separate"/></w:r></w:p>`)
	for _, h := range run.tree.Headings() {
		bm := run.normalizer.Bookmark(h.Anchor)
		run.body.WriteString(`<w:p>`)
		fmt.Fprintf(&run.body, `<w:hyperlink w:anchor="%s"><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:hyperlink>`,
			escapeXML(bm), escapeXML(h.Text()))
		run.body.WriteString(`</w:p>`)
	}
	run.body.WriteString(`<w:p><w:r><w:fldChar w:fldCharType="end"/></w:r></w:p>`)
}

// openBookmark writes a bookmarkStart for the semantic anchor id and
// returns the closing markup. Bookmark names come from the contract
// when the anchor was seen before, so external links keep resolving.
func (run *renderRun) openBookmark(anchorID string) string {
	if anchorID == "" {
		return ""
	}
	name := run.normalizer.Bookmark(anchorID)
	id := run.nextBmID
	run.nextBmID++
	fmt.Fprintf(&run.body, `<w:bookmarkStart w:id="%d" w:name="%s"/>`, id, escapeXML(name))
	return fmt.Sprintf(`<w:bookmarkEnd w:id="%d"/>`, id)
}

func (run *renderRun) renderHeading(h *semantic.Heading) error {
	styleID, err := run.contract.ResolveHeading(h.Level)
	if err != nil {
		return err
	}
	fmt.Fprintf(&run.body, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>`, escapeXML(styleID))
	closeBm := run.openBookmark(h.Anchor)
	if err := run.renderInlines(h.Runs); err != nil {
		return err
	}
	run.body.WriteString(closeBm)
	run.body.WriteString(`</w:p>`)
	if h.Anchor != "" {
		run.manifest.Add(h.Anchor, manifest.ElementMeta{Type: "section"})
	}
	return nil
}

func (run *renderRun) renderParagraph(p *semantic.Paragraph) error {
	role := p.StyleRole
	if role == "" {
		role = "body"
	}
	styleID, err := run.contract.Resolve(role)
	if err != nil {
		return err
	}
	fmt.Fprintf(&run.body, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>`, escapeXML(styleID))
	closeBm := run.openBookmark(p.Anchor)
	if err := run.renderInlines(p.Runs); err != nil {
		return err
	}
	run.body.WriteString(closeBm)
	run.body.WriteString(`</w:p>`)
	return nil
}

func (run *renderRun) renderList(l *semantic.List) error {
	styleID, err := listStyle(run.contract, l.ListKind)
	if err != nil {
		return err
	}
	numID := 1
	if l.ListKind == semantic.ListKindOrdered {
		numID = 2
	}
	for _, item := range l.Items {
		fmt.Fprintf(&run.body, `<w:p><w:pPr><w:pStyle w:val="%s"/>`, escapeXML(styleID))
		fmt.Fprintf(&run.body, `<w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr></w:pPr>`,
			item.Level, numID)
		if err := run.renderInlines(item.Runs); err != nil {
			return err
		}
		run.body.WriteString(`</w:p>`)
	}
	return nil
}

// renderLiteral writes a code block line by line through the literal
// style, preserving whitespace. A pre-rasterized diagram renders as an
// image instead of the source text, with its hash recorded for drift
// detection.
func (run *renderRun) renderLiteral(l *semantic.Literal) error {
	if l.Diagram != nil {
		img, err := run.embedder.Embed(l.Diagram)
		if err != nil {
			return fmt.Errorf("diagram image: %w", err)
		}
		run.body.WriteString(`<w:p>`)
		closeBm := run.openBookmark(l.Anchor)
		run.body.WriteString(`<w:r>` + img.Markup() + `</w:r>`)
		run.body.WriteString(closeBm)
		run.body.WriteString(`</w:p>`)
		if l.Anchor != "" {
			run.manifest.Add(l.Anchor, manifest.ElementMeta{
				Type:   "diagram",
				Source: l.Diagram.Path,
				Hash:   l.DiagramHash,
			})
		}
		return nil
	}

	styleID, err := run.contract.Resolve("literal")
	if err != nil {
		return err
	}
	lines := strings.Split(l.Content, "\n")
	for i, line := range lines {
		fmt.Fprintf(&run.body, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>`, escapeXML(styleID))
		var closeBm string
		if i == 0 {
			closeBm = run.openBookmark(l.Anchor)
		}
		fmt.Fprintf(&run.body, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, escapeXML(line))
		run.body.WriteString(closeBm)
		run.body.WriteString(`</w:p>`)
	}
	return nil
}

func (run *renderRun) renderTable(t *semantic.Table) error {
	role := t.StyleRole
	if role == "" {
		role = "table"
	}
	styleID, err := run.contract.ResolveTable(role)
	if err != nil {
		return err
	}

	columns := t.Columns
	if columns == 0 && len(t.Rows) > 0 {
		columns = len(t.Rows[0].Cells)
	}
	if columns == 0 {
		return nil
	}
	colWidth := (run.r.pageW / emuPerTwip) * 8 / 10 / int64(columns)

	run.body.WriteString(`<w:tbl><w:tblPr>`)
	fmt.Fprintf(&run.body, `<w:tblStyle w:val="%s"/>`, escapeXML(styleID))
	run.body.WriteString(`<w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	run.body.WriteString(`<w:tblGrid>`)
	for i := 0; i < columns; i++ {
		fmt.Fprintf(&run.body, `<w:gridCol w:w="%d"/>`, colWidth)
	}
	run.body.WriteString(`</w:tblGrid>`)

	for _, row := range t.Rows {
		run.body.WriteString(`<w:tr>`)
		if row.IsHeader {
			run.body.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
		}
		for _, cell := range row.Cells {
			run.body.WriteString(`<w:tc><w:tcPr>`)
			if cell.Span > 1 {
				fmt.Fprintf(&run.body, `<w:gridSpan w:val="%d"/>`, cell.Span)
			}
			run.body.WriteString(`</w:tcPr><w:p>`)
			if err := run.renderInlines(cell.Runs); err != nil {
				return err
			}
			run.body.WriteString(`</w:p></w:tc>`)
		}
		run.body.WriteString(`</w:tr>`)
	}
	run.body.WriteString(`</w:tbl>`)
	return nil
}

func (run *renderRun) renderInlines(runs []semantic.Inline) error {
	for _, in := range runs {
		switch {
		case in.Image != nil:
			img, err := run.embedder.Embed(in.Image)
			if err != nil {
				return fmt.Errorf("image %s: %w", in.Image.Path, err)
			}
			run.manifest.Add(img.Target, manifest.ElementMeta{
				Type:   "figure",
				Source: in.Image.Path,
			})
			run.body.WriteString(`<w:r>` + img.Markup() + `</w:r>`)

		case in.XRef != "":
			bm := run.normalizer.Bookmark(in.XRef)
			text := in.XRefText
			if text == "" {
				text = run.headingText(in.XRef)
			}
			fmt.Fprintf(&run.body, `<w:hyperlink w:anchor="%s">`, escapeXML(bm))
			run.writeTextRun(semantic.Inline{Text: text})
			run.body.WriteString(`</w:hyperlink>`)

		case in.Link != "":
			relID, ok := run.hyperlinks[in.Link]
			if !ok {
				relID = run.rels.AddWithMode(in.Link, opc.RelTypeHyperlink, "External")
				run.hyperlinks[in.Link] = relID
			}
			fmt.Fprintf(&run.body, `<w:hyperlink r:id="%s">`, escapeXML(relID))
			run.writeTextRun(in)
			run.body.WriteString(`</w:hyperlink>`)

		default:
			run.writeTextRun(in)
		}
	}
	return nil
}

// headingText looks up the text of the heading carrying an anchor id,
// used when a cross-reference has no explicit link text. An id mapped
// only in the contract falls back to its recorded target heading.
func (run *renderRun) headingText(anchorID string) string {
	for _, h := range run.tree.Headings() {
		if h.Anchor == anchorID {
			return h.Text()
		}
	}
	for _, m := range run.contract.Anchors {
		if m.SemanticID == anchorID && m.TargetHeading != "" {
			return m.TargetHeading
		}
	}
	return anchorID
}

func (run *renderRun) writeTextRun(in semantic.Inline) {
	if in.Text == "" {
		return
	}
	run.body.WriteString(`<w:r>`)
	if in.Strong || in.Emph || in.Code {
		run.body.WriteString(`<w:rPr>`)
		if in.Code {
			if id, err := run.contract.ResolveCharacter("code"); err == nil {
				fmt.Fprintf(&run.body, `<w:rStyle w:val="%s"/>`, escapeXML(id))
			} else {
				run.body.WriteString(`<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/>`)
			}
		}
		if in.Strong {
			run.body.WriteString(`<w:b/>`)
		}
		if in.Emph {
			run.body.WriteString(`<w:i/>`)
		}
		run.body.WriteString(`</w:rPr>`)
	}
	fmt.Fprintf(&run.body, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(in.Text))
	run.body.WriteString(`</w:r>`)
}

func escapeXML(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}
