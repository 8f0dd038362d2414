package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/docloom/docloom/anchor"
	"github.com/docloom/docloom/contract"
	"github.com/docloom/docloom/drawing"
	"github.com/docloom/docloom/manifest"
	"github.com/docloom/docloom/opc"
	"github.com/docloom/docloom/semantic"
)

// ExtractOptions configures an extraction run.
type ExtractOptions struct {
	// MediaDir is where extracted image files are written. Empty
	// means image bytes are not copied out (references still carry
	// dimensions and alt text).
	MediaDir string
	// Source is recorded in the contract's provenance metadata.
	Source string
	// Logger receives advisory progress and diagnostic logging; nil
	// means silent. Diagnostics are always returned as values.
	Logger *slog.Logger
}

// ExtractResult is the output of one extraction: the semantic tree,
// the populated contract, the sidecar manifest, and the diagnostics
// accumulated along the way.
type ExtractResult struct {
	Tree        *semantic.Document
	Contract    *contract.Contract
	Manifest    *manifest.Manifest
	Diagnostics []Diagnostic
}

// extractor carries the state of a single extraction run. State is
// per-run and never shared: independent documents may extract in
// parallel, but one document is walked strictly sequentially so that
// identifier allocation is deterministic.
type extractor struct {
	archive    *opc.Archive
	styles     *styleSheet
	numbering  *numberingResolver
	rels       *opc.Relationships
	contract   *contract.Contract
	normalizer *anchor.Normalizer
	drawings   *drawing.Extractor
	manifest   *manifest.Manifest
	tree       *semantic.Document
	diags      []Diagnostic
	logger     *slog.Logger

	blockIndex int
	// forwardRefs maps eagerly derived cross-reference ids to the
	// bookmark names they came from, for post-walk repair when the
	// bookmark's definition re-derives its id.
	forwardRefs map[string]string
}

// Extract walks a package's document body in document order and
// produces a semantic tree plus a populated mapping contract.
// Extraction is permissive: constructs without a known semantic
// equivalent degrade to plain text or a diagnostic, never an abort.
// Only an unreadable package fails.
func Extract(a *opc.Archive, opts ExtractOptions) (*ExtractResult, error) {
	docData := a.Get(opc.PartDocument)
	if docData == nil {
		return nil, &opc.MissingPartError{Part: opc.PartDocument}
	}
	var doc documentXML
	if err := xml.Unmarshal(docData, &doc); err != nil {
		return nil, &opc.MalformedPackageError{Part: opc.PartDocument, Err: err}
	}

	styles := emptyStyleSheet()
	if data := a.Get(opc.PartStyles); data != nil {
		parsed, err := parseStyles(data)
		if err != nil {
			return nil, &opc.MalformedPackageError{Part: opc.PartStyles, Err: err}
		}
		styles = parsed
	}

	numbering := emptyNumbering()
	if data := a.Get(opc.PartNumbering); data != nil {
		parsed, err := parseNumbering(data)
		if err != nil {
			return nil, &opc.MalformedPackageError{Part: opc.PartNumbering, Err: err}
		}
		numbering = parsed
	}

	rels := opc.NewRelationships()
	if data := a.Get(opc.PartDocumentRels); data != nil {
		parsed, err := opc.ParseRelationships(data)
		if err != nil {
			return nil, &opc.MalformedPackageError{Part: opc.PartDocumentRels, Err: err}
		}
		rels = parsed
	}

	c := contract.WithSource(opts.Source)
	e := &extractor{
		archive:     a,
		styles:      styles,
		numbering:   numbering,
		rels:        rels,
		contract:    c,
		normalizer:  anchor.NewNormalizer(c),
		drawings:    drawing.NewExtractor(a, rels, opts.MediaDir),
		manifest:    manifest.New(),
		tree:        semantic.NewDocument(),
		logger:      opts.Logger,
		forwardRefs: make(map[string]string),
	}

	c.Theme = flattenTheme(styles)
	e.extractMetadata()
	e.walkBody(doc.Body)
	e.resolveForwardReferences()
	e.checkReferences()

	return &ExtractResult{
		Tree:        e.tree,
		Contract:    c,
		Manifest:    e.manifest,
		Diagnostics: e.diags,
	}, nil
}

func (e *extractor) warn(code DiagnosticCode, format string, args ...any) {
	d := Diagnostic{Code: code, BlockIndex: e.blockIndex, Message: fmt.Sprintf(format, args...)}
	e.diags = append(e.diags, d)
	if e.logger != nil {
		e.logger.Warn(d.Message, "code", string(code), "block", d.BlockIndex)
	}
}

func (e *extractor) extractMetadata() {
	data := e.archive.Get(opc.PartCoreProps)
	if data == nil {
		return
	}
	var props corePropertiesXML
	if err := xml.Unmarshal(data, &props); err != nil {
		// Metadata is optional; a broken part is not worth a failure.
		return
	}
	e.tree.Meta.Title = props.Title
	e.tree.Meta.Subtitle = props.Subject
	e.tree.Meta.Author = props.Creator
	e.tree.Meta.RevNumber = props.Revision
	if props.Modified != "" {
		if t, err := time.Parse(time.RFC3339, props.Modified); err == nil {
			e.tree.Meta.Created = t
			e.tree.Meta.RevDate = t.Format("2006-01-02")
		}
	}
}

// blockRuns returns a block's inline run slices. The slices alias the
// tree's storage, so element mutation through them is visible.
func blockRuns(b semantic.Block) [][]semantic.Inline {
	switch blk := b.(type) {
	case *semantic.Heading:
		return [][]semantic.Inline{blk.Runs}
	case *semantic.Paragraph:
		return [][]semantic.Inline{blk.Runs}
	case *semantic.List:
		var out [][]semantic.Inline
		for _, item := range blk.Items {
			out = append(out, item.Runs)
		}
		return out
	case *semantic.Table:
		var out [][]semantic.Inline
		for _, row := range blk.Rows {
			for _, cell := range row.Cells {
				out = append(out, cell.Runs)
			}
		}
		return out
	default:
		return nil
	}
}

// resolveForwardReferences repairs cross-references whose id was
// derived from link text before the target bookmark was reached. When
// the bookmark's later definition re-derived its semantic id, the
// contract holds the final id under the bookmark name and the stale
// reference is rewritten to it.
func (e *extractor) resolveForwardReferences() {
	if len(e.forwardRefs) == 0 {
		return
	}
	for _, b := range e.tree.Blocks {
		for _, runs := range blockRuns(b) {
			for ri := range runs {
				id := runs[ri].XRef
				if id == "" || e.tree.HasAnchor(id) {
					continue
				}
				bm, ok := e.forwardRefs[id]
				if !ok {
					continue
				}
				if cur, ok := e.contract.SemanticAnchor(bm); ok && cur != id {
					runs[ri].XRef = cur
				}
			}
		}
	}
}

// checkReferences scans the finished tree for cross-references whose
// target anchor was never defined. Forward references resolve only
// once the whole body has been walked, so this runs last. Extraction
// keeps the reference and warns; rendering would reject it.
func (e *extractor) checkReferences() {
	for i, b := range e.tree.Blocks {
		for _, runs := range blockRuns(b) {
			for _, in := range runs {
				if in.XRef != "" && !e.tree.HasAnchor(in.XRef) {
					e.blockIndex = i
					e.warn(DiagDanglingReference, "cross-reference %q has no target", in.XRef)
				}
			}
		}
	}
}

func (e *extractor) walkBody(body bodyXML) {
	for _, el := range body.Elements {
		e.blockIndex = len(e.tree.Blocks)
		switch {
		case el.Paragraph != nil:
			e.extractParagraph(el.Paragraph)
		case el.Table != nil:
			e.extractTable(el.Table)
		}
	}
}

// paragraphRole resolves a paragraph style id against the contract,
// classifying it heuristically on first sight. Extraction never fails
// on an unknown style.
func (e *extractor) paragraphRole(styleID string) contract.ParagraphStyleMapping {
	if styleID == "" {
		styleID = "Normal"
	}
	if m, ok := e.contract.ParagraphStyles[styleID]; ok {
		return m
	}

	var m contract.ParagraphStyleMapping
	if isHeading, level := e.styles.headingLevel(styleID); isHeading {
		m = contract.ParagraphStyleMapping{Role: "h" + strconv.Itoa(level), HeadingLevel: level}
	} else if isList, kind := e.styles.listKind(styleID); isList {
		// The style's numbering definition is authoritative for the
		// kind; style-name heuristics only cover templates without a
		// numbering part.
		if def, ok := e.styles.get(styleID); ok {
			if k, ok := e.numbering.listKind(def.PPr.NumPr.NumID.Val, def.PPr.NumPr.ILvl.Val); ok {
				kind = k
			}
		}
		m = contract.ParagraphStyleMapping{Role: "list", IsList: true, ListKind: kind}
	} else if e.styles.isCodeStyle(styleID) {
		m = contract.ParagraphStyleMapping{Role: "literal"}
	} else {
		m = contract.ParagraphStyleMapping{Role: "body"}
	}

	if _, known := e.styles.get(styleID); !known && styleID != "Normal" {
		e.warn(DiagUnmappedStyle, "style %q has no definition; classified as %q", styleID, m.Role)
	} else if _, seen := e.contract.ParagraphStyles[styleID]; !seen && styleID != "Normal" && m.HeadingLevel == 0 && !m.IsList && m.Role == "body" {
		e.warn(DiagUnmappedStyle, "style %q mapped to body role heuristically", styleID)
	}
	e.contract.RecordParagraphStyle(styleID, m)
	return m
}

func (e *extractor) extractParagraph(p *paragraphXML) {
	styleID := p.Properties.Style.Val
	m := e.paragraphRole(styleID)

	// Page breaks split out as their own blocks.
	for _, c := range p.Children {
		if c.Run != nil && c.Run.hasPageBreak() {
			e.tree.AddBlock(&semantic.PageBreak{})
			break
		}
	}

	runs := e.extractInlines(p)
	text := p.text()

	switch {
	case m.HeadingLevel > 0:
		if strings.TrimSpace(text) == "" {
			return
		}
		id := e.normalizer.DeriveHeading(text, p.firstBookmark())
		e.manifest.Add(id, manifest.ElementMeta{Type: "section", ElementID: p.firstBookmark()})
		e.tree.AddBlock(&semantic.Heading{Level: m.HeadingLevel, Runs: runs, Anchor: id})

	case m.IsList:
		kind := semantic.ListKindUnordered
		if m.ListKind == "ordered" {
			kind = semantic.ListKindOrdered
		}
		// Direct paragraph numbering overrides the style's kind.
		if k, ok := e.numbering.listKind(p.Properties.NumPr.NumID.Val, p.Properties.NumPr.ILvl.Val); ok {
			kind = semantic.ListKindUnordered
			if k == "ordered" {
				kind = semantic.ListKindOrdered
			}
		}
		level := 0
		if v := p.Properties.NumPr.ILvl.Val; v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				level = n
			}
		}
		item := semantic.ListItem{Runs: runs, Level: level}
		// Consecutive list paragraphs of the same kind merge into one
		// list block.
		if len(e.tree.Blocks) > 0 {
			if last, ok := e.tree.Blocks[len(e.tree.Blocks)-1].(*semantic.List); ok && last.ListKind == kind {
				last.Items = append(last.Items, item)
				return
			}
		}
		e.tree.AddBlock(&semantic.List{ListKind: kind, Items: []semantic.ListItem{item}})

	case m.Role == "literal":
		e.tree.AddBlock(&semantic.Literal{Content: text, Anchor: e.userAnchor(p)})

	default:
		if len(runs) == 0 {
			return
		}
		block := &semantic.Paragraph{Runs: runs, Anchor: e.userAnchor(p)}
		if m.Role != "body" {
			block.StyleRole = m.Role
		}
		e.tree.AddBlock(block)
	}
}

// userAnchor derives a semantic id for a user-defined bookmark on a
// non-heading paragraph.
func (e *extractor) userAnchor(p *paragraphXML) string {
	bm := p.firstBookmark()
	if bm == "" {
		return ""
	}
	if id, ok := e.contract.SemanticAnchor(bm); ok {
		return id
	}
	return e.normalizer.DeriveBookmark(bm, p.text())
}

// extractInlines converts paragraph children to inline runs in order.
// Direct bold/italic/monospace becomes inline markers; direct color
// and highlight formatting is dropped with a warning, never merged
// into a style.
func (e *extractor) extractInlines(p *paragraphXML) []semantic.Inline {
	var out []semantic.Inline
	for _, c := range p.Children {
		switch {
		case c.Run != nil:
			out = append(out, e.extractRun(c.Run)...)
		case c.Hyperlink != nil:
			if in, ok := e.extractHyperlink(c.Hyperlink); ok {
				out = append(out, in)
			}
		}
	}
	return out
}

func (e *extractor) extractRun(r *runXML) []semantic.Inline {
	var out []semantic.Inline

	for _, d := range r.Drawings {
		out = append(out, e.extractDrawing(&d)...)
	}

	text := r.text()
	if text == "" {
		return out
	}

	if r.Properties.Color.Val != "" && r.Properties.Color.Val != "auto" {
		e.warn(DiagDroppedFormatting, "direct color %q dropped", r.Properties.Color.Val)
	}
	if r.Properties.Highlight.Val != "" {
		e.warn(DiagDroppedFormatting, "direct highlight %q dropped", r.Properties.Highlight.Val)
	}

	in := semantic.Inline{
		Text:   text,
		Strong: r.Properties.Bold.on(),
		Emph:   r.Properties.Italic.on(),
		Code:   isMonospaceFont(r.Properties.Font.ASCII),
	}
	if rs := r.Properties.Style.Val; rs != "" {
		if m, ok := e.contract.CharacterStyles[rs]; ok {
			in.Strong = in.Strong || m.Strong
			in.Emph = in.Emph || m.Emphasis
			in.Code = in.Code || m.Code
		} else {
			cm := contract.CharacterStyleMapping{Role: strings.ToLower(rs), Code: e.styles.isCodeStyle(rs)}
			e.contract.RecordCharacterStyle(rs, cm)
			in.Code = in.Code || cm.Code
		}
	}
	return append(out, in)
}

func (e *extractor) extractDrawing(d *drawingXML) []semantic.Inline {
	var out []semantic.Inline
	body := d.Inline
	anchored := false
	if body == nil {
		body = d.Anchor
		anchored = true
	}
	if body == nil {
		return nil
	}
	width, _ := strconv.ParseInt(body.Extent.CX, 10, 64)
	height, _ := strconv.ParseInt(body.Extent.CY, 10, 64)

	for _, pic := range d.collectPics() {
		ref, err := e.drawings.Extract(pic.Blip.Embed, body.DocPr.Descr, width, height)
		if err != nil {
			var unresolved *drawing.UnresolvedRelationshipError
			if errors.As(err, &unresolved) {
				e.warn(DiagUnresolvedRelationship, "drawing skipped: %v", err)
			} else {
				e.warn(DiagMediaError, "drawing skipped: %v", err)
			}
			continue
		}
		ref.Anchored = anchored
		if data, ok := e.drawings.Bytes(pic.Blip.Embed); ok {
			e.manifest.Add(ref.Path, manifest.ElementMeta{
				Type:      "figure",
				ElementID: body.DocPr.ID,
				Hash:      manifest.HashBytes(data),
			})
		}
		out = append(out, semantic.Inline{Image: ref})
	}
	return out
}

func (e *extractor) extractHyperlink(h *hyperlinkXML) (semantic.Inline, bool) {
	text := h.text()
	switch {
	case h.Anchor != "":
		// Internal link: map the bookmark to its semantic id if known,
		// otherwise keep plain text with a warning.
		if id, ok := e.contract.SemanticAnchor(h.Anchor); ok {
			return semantic.Inline{XRef: id, XRefText: text}, true
		}
		// The bookmark may be defined later in the document; map it
		// eagerly and remember the bookmark so the post-walk pass can
		// repair the id once the definition is seen.
		id := e.normalizer.DeriveBookmark(h.Anchor, text)
		e.forwardRefs[id] = h.Anchor
		return semantic.Inline{XRef: id, XRefText: text}, true
	case h.ID != "":
		if target, ok := e.rels.Target(h.ID); ok && e.rels.IsExternal(h.ID) {
			return semantic.Inline{Text: text, Link: target}, true
		}
		if _, ok := e.rels.Target(h.ID); !ok {
			e.warn(DiagUnresolvedRelationship, "hyperlink %q has no target; kept as text", h.ID)
		}
		return semantic.Inline{Text: text}, text != ""
	default:
		return semantic.Inline{Text: text}, text != ""
	}
}

func (e *extractor) extractTable(t *tableXML) {
	styleID := t.Properties.Style.Val
	if styleID == "" {
		styleID = "TableGrid"
	}
	// A row marked tblHeader is a header row. When no row is marked,
	// the first row is treated as the header.
	anyMarked := false
	for _, row := range t.Rows {
		if row.Properties.Header.on() {
			anyMarked = true
			break
		}
	}
	if _, ok := e.contract.TableStyles[styleID]; !ok {
		e.contract.RecordTableStyle(styleID, contract.TableStyleMapping{
			Role:           "table",
			FirstRowHeader: !anyMarked || (len(t.Rows) > 0 && t.Rows[0].Properties.Header.on()),
		})
	}

	columns := len(t.Grid.Cols)
	if columns == 0 && len(t.Rows) > 0 {
		columns = len(t.Rows[0].Cells)
	}

	table := &semantic.Table{Columns: columns}
	for i, row := range t.Rows {
		sr := semantic.TableRow{IsHeader: row.Properties.Header.on() || (!anyMarked && i == 0)}
		for _, cell := range row.Cells {
			sc := semantic.TableCell{}
			if v := cell.Properties.GridSpan.Val; v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					sc.Span = n
				}
			}
			for pi := range cell.Paragraphs {
				sc.Runs = append(sc.Runs, e.extractInlines(&cell.Paragraphs[pi])...)
			}
			sr.Cells = append(sr.Cells, sc)
		}
		table.Rows = append(table.Rows, sr)
	}
	e.tree.AddBlock(table)
}
