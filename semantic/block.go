package semantic

// BlockKind identifies the kind of a block node.
type BlockKind int

const (
	BlockKindHeading BlockKind = iota
	BlockKindParagraph
	BlockKindList
	BlockKindTable
	BlockKindLiteral
	BlockKindPageBreak
)

func (bk BlockKind) String() string {
	switch bk {
	case BlockKindHeading:
		return "heading"
	case BlockKindParagraph:
		return "paragraph"
	case BlockKindList:
		return "list"
	case BlockKindTable:
		return "table"
	case BlockKindLiteral:
		return "literal"
	case BlockKindPageBreak:
		return "pagebreak"
	default:
		return "unknown"
	}
}

// Block is a node in the semantic tree.
type Block interface {
	Kind() BlockKind
	// AnchorID returns the semantic anchor id declared on this block,
	// or "" if the block is not an anchor target.
	AnchorID() string
	// Role returns the semantic role the block renders through, or ""
	// for the kind's default role.
	Role() string
}

// Heading is a section heading with a level from 1 to 9.
type Heading struct {
	Level  int
	Runs   []Inline
	Anchor string
	// StyleRole overrides the default hN role when set.
	StyleRole string
}

func (h *Heading) Kind() BlockKind  { return BlockKindHeading }
func (h *Heading) AnchorID() string { return h.Anchor }
func (h *Heading) Role() string     { return h.StyleRole }

// Text returns the plain text of the heading.
func (h *Heading) Text() string { return InlineText(h.Runs) }

// Paragraph is a body paragraph.
type Paragraph struct {
	Runs      []Inline
	Anchor    string
	StyleRole string
}

func (p *Paragraph) Kind() BlockKind  { return BlockKindParagraph }
func (p *Paragraph) AnchorID() string { return p.Anchor }
func (p *Paragraph) Role() string     { return p.StyleRole }

// ListKind distinguishes bullet and numbered lists.
type ListKind int

const (
	ListKindUnordered ListKind = iota
	ListKindOrdered
)

func (lk ListKind) String() string {
	if lk == ListKindOrdered {
		return "ordered"
	}
	return "unordered"
}

// List is a bullet or numbered list.
type List struct {
	ListKind  ListKind
	Items     []ListItem
	Anchor    string
	StyleRole string
}

func (l *List) Kind() BlockKind  { return BlockKindList }
func (l *List) AnchorID() string { return l.Anchor }
func (l *List) Role() string     { return l.StyleRole }

// ListItem is a single list entry. Level is the nesting depth, starting
// at zero.
type ListItem struct {
	Runs  []Inline
	Level int
}

// Table is a grid of cells. Every row has the same number of cells as
// the table's column count; short rows are padded with empty cells.
type Table struct {
	Columns   int
	Rows      []TableRow
	Anchor    string
	StyleRole string
}

func (t *Table) Kind() BlockKind  { return BlockKindTable }
func (t *Table) AnchorID() string { return t.Anchor }
func (t *Table) Role() string     { return t.StyleRole }

// TableRow is one row of a table.
type TableRow struct {
	Cells    []TableCell
	IsHeader bool
}

// TableCell is one cell, holding inline content.
type TableCell struct {
	Runs []Inline
	Span int // column span, 0 or 1 means no span
}

// Literal is a verbatim block: source code, or diagram source with an
// already-rasterized image supplied by the diagram renderer.
type Literal struct {
	Content string
	// Language tag for code, or the diagram engine name.
	Language string
	// Diagram holds the rasterized rendering when this literal is a
	// diagram block. The engine never rasterizes; it receives the image
	// and its content hash from the caller.
	Diagram     *ImageRef
	DiagramHash string
	Anchor      string
	StyleRole   string
}

func (l *Literal) Kind() BlockKind  { return BlockKindLiteral }
func (l *Literal) AnchorID() string { return l.Anchor }
func (l *Literal) Role() string     { return l.StyleRole }

// PageBreak forces a page (or slide) boundary.
type PageBreak struct{}

func (pb *PageBreak) Kind() BlockKind  { return BlockKindPageBreak }
func (pb *PageBreak) AnchorID() string { return "" }
func (pb *PageBreak) Role() string     { return "" }

// GroupCells groups a flat cell sequence into rows of a fixed column
// count. A short final row is padded with empty cells. This is the
// deterministic row-grouping rule used throughout the engine.
func GroupCells(cells []TableCell, columns int) []TableRow {
	if columns <= 0 {
		columns = 1
	}
	var rows []TableRow
	for start := 0; start < len(cells); start += columns {
		end := start + columns
		if end > len(cells) {
			end = len(cells)
		}
		row := TableRow{Cells: append([]TableCell(nil), cells[start:end]...)}
		for len(row.Cells) < columns {
			row.Cells = append(row.Cells, TableCell{})
		}
		rows = append(rows, row)
	}
	return rows
}
