package semantic

import "testing"

func cell(text string) TableCell {
	return TableCell{Runs: []Inline{{Text: text}}}
}

func TestGroupCells(t *testing.T) {
	cells := []TableCell{cell("a"), cell("b"), cell("c"), cell("d"), cell("e"), cell("f")}
	rows := GroupCells(cells, 3)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for i, row := range rows {
		if len(row.Cells) != 3 {
			t.Errorf("row %d has %d cells", i, len(row.Cells))
		}
	}
	if got := InlineText(rows[1].Cells[0].Runs); got != "d" {
		t.Errorf("second row starts with %q", got)
	}
}

// A short final row is padded with empty cells so every row has the
// table's column count.
func TestGroupCellsPadsShortFinalRow(t *testing.T) {
	cells := []TableCell{cell("a"), cell("b"), cell("c"), cell("d"), cell("e")}
	rows := GroupCells(cells, 3)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	last := rows[1]
	if len(last.Cells) != 3 {
		t.Fatalf("last row has %d cells, want 3", len(last.Cells))
	}
	if len(last.Cells[2].Runs) != 0 {
		t.Errorf("padding cell should be empty, got %+v", last.Cells[2])
	}
}

func TestGroupCellsEdgeCases(t *testing.T) {
	if rows := GroupCells(nil, 3); len(rows) != 0 {
		t.Errorf("nil cells gave %d rows", len(rows))
	}
	// A non-positive column count degrades to one cell per row.
	if rows := GroupCells([]TableCell{cell("a"), cell("b")}, 0); len(rows) != 2 {
		t.Errorf("zero columns gave %d rows, want 2", len(rows))
	}
}

func TestDocumentAnchors(t *testing.T) {
	d := NewDocument()
	d.AddBlock(&Heading{Level: 1, Anchor: "one"})
	d.AddBlock(&Paragraph{Runs: []Inline{{Text: "x"}}})
	d.AddBlock(&Heading{Level: 2, Anchor: "two"})
	d.AddBlock(&Paragraph{Anchor: "note"})

	if !d.HasAnchor("one") || !d.HasAnchor("note") {
		t.Error("anchors should be findable")
	}
	if d.HasAnchor("absent") {
		t.Error("unknown anchor should not be found")
	}
	if got := len(d.Headings()); got != 2 {
		t.Errorf("Headings = %d", got)
	}
	if got := len(d.Anchors()); got != 3 {
		t.Errorf("Anchors = %d", got)
	}
}

func TestInlineText(t *testing.T) {
	runs := []Inline{{Text: "Hello "}, {Text: "world", Strong: true}, {XRef: "x", XRefText: "ref"}}
	if got := InlineText(runs); got != "Hello worldref" {
		t.Errorf("InlineText = %q", got)
	}
}
