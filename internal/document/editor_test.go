package document

import (
	"testing"
)

func para(children ...Node) *Paragraph {
	return NewParagraph(children...)
}

func txt(s string) *Text {
	return &Text{Content: s}
}

func newTag(id string) *Tag {
	return &Tag{DisplayID: id, SourceItemID: "item-" + id, Name: "Name " + id, Value: NumberValue(1), Filter: DefaultDateFilter}
}

func caretAt(block, child, offset int) Range {
	return Caret(Point{Path: Path{block, child}, Offset: offset})
}

// shape renders the normalized tree as a compact string: paragraphs separated
// by '|', text runs quoted and tags as <id>
func shape(nodes []Node) string {
	out := ""
	for i, n := range nodes {
		if i > 0 {
			out += "|"
		}
		for _, c := range n.(*Paragraph).Children {
			switch c := c.(type) {
			case *Text:
				out += "'" + c.Content + "'"
			case *Tag:
				out += "<" + c.DisplayID + ">"
			}
		}
	}
	return out
}

func TestNewEditorNormalizes(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []Node
		expected string
	}{
		{"empty document", nil, "''"},
		{"single text", []Node{para(txt("1 + 2"))}, "'1 + 2'"},
		{"adjacent texts merge", []Node{para(txt("1"), txt(" + "), txt("2"))}, "'1 + 2'"},
		{"tag gets surrounding texts", []Node{para(newTag("a"))}, "''<a>''"},
		{"adjacent tags", []Node{para(newTag("a"), newTag("b"))}, "''<a>''<b>''"},
		{"two paragraphs", []Node{para(txt("1")), para(txt("2"))}, "'1'|'2'"},
		{"top level inlines wrapped", []Node{txt("3"), newTag("a")}, "'3'<a>''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(tt.nodes)
			if got := shape(e.Nodes()); got != tt.expected {
				t.Errorf("shape = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestTagChildrenPlaceholder(t *testing.T) {
	children := newTag("a").Children()
	if len(children) != 1 {
		t.Fatalf("Expected one placeholder child, got %d", len(children))
	}
	if text, ok := children[0].(*Text); !ok || text.Content != "" {
		t.Errorf("Expected empty text placeholder, got %#v", children[0])
	}
}

func TestInsertTextAndNode(t *testing.T) {
	e := NewEditor(nil)
	e.SelectStart()
	e.InsertText("2 * ")
	e.InsertNode(newTag("a"))
	e.InsertText(" ")

	if got := shape(e.Nodes()); got != "'2 * '<a>' '" {
		t.Errorf("shape = %s", got)
	}
	sel, ok := e.Selection()
	if !ok || !sel.IsCollapsed() {
		t.Fatal("Expected collapsed selection")
	}
	want := Point{Path: Path{0, 2}, Offset: 1}
	if sel.Focus.Compare(want) != 0 {
		t.Errorf("caret = %v, want %v", sel.Focus, want)
	}
}

func TestInsertWithoutSelectionIsNoop(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"))})
	e.InsertText("2")
	e.InsertNode(newTag("a"))
	if got := shape(e.Nodes()); got != "'1'" {
		t.Errorf("shape = %s, want '1'", got)
	}
}

func TestInsertTextDropsNewlines(t *testing.T) {
	e := NewEditor(nil)
	e.SelectStart()
	e.InsertText("1\n+\r\n2")
	if got := e.String(); got != "1+2" {
		t.Errorf("String() = %q, want %q", got, "1+2")
	}
}

func TestInsertParagraphSplitsBlock(t *testing.T) {
	e := NewEditor([]Node{para(txt("12"))})
	e.Select(caretAt(0, 0, 1))
	e.InsertNode(para())

	if got := shape(e.Nodes()); got != "'1'|'2'" {
		t.Errorf("shape = %s, want '1'|'2'", got)
	}
	sel, _ := e.Selection()
	if sel.Focus.Compare(Point{Path: Path{1, 0}, Offset: 0}) != 0 {
		t.Errorf("caret = %v, want [1 0]:0", sel.Focus)
	}
}

func TestDeleteBackwardRemovesWholeTag(t *testing.T) {
	e := NewEditor([]Node{para(txt("1+"), newTag("a"), txt(" 2"))})
	e.Select(caretAt(0, 2, 0))

	var changes []Change
	e.OnChange(func(c Change) { changes = append(changes, c) })
	e.DeleteBackward()

	if got := shape(e.Nodes()); got != "'1+ 2'" {
		t.Errorf("shape = %s, want '1+ 2'", got)
	}
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}
	if len(changes[0].Removed) != 1 || changes[0].Removed[0].DisplayID != "a" {
		t.Errorf("Expected removed tag a, got %v", changes[0].Removed)
	}
	sel, _ := e.Selection()
	if sel.Focus.Compare(Point{Path: Path{0, 0}, Offset: 2}) != 0 {
		t.Errorf("caret = %v, want [0 0]:2", sel.Focus)
	}
}

func TestDeleteBackwardCharacter(t *testing.T) {
	e := NewEditor([]Node{para(txt("123"))})
	e.Select(caretAt(0, 0, 3))
	e.DeleteBackward()
	if got := e.String(); got != "12" {
		t.Errorf("String() = %q, want 12", got)
	}
}

func TestDeleteBackwardMergesBlocks(t *testing.T) {
	e := NewEditor([]Node{para(txt("1")), para(txt("2"))})
	e.Select(caretAt(1, 0, 0))
	e.DeleteBackward()
	if got := shape(e.Nodes()); got != "'12'" {
		t.Errorf("shape = %s, want '12'", got)
	}
}

func TestDeleteBackwardAtStartIsNoop(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"))})
	e.SelectStart()
	fired := false
	e.OnChange(func(Change) { fired = true })
	e.DeleteBackward()
	if fired {
		t.Error("Expected no change at document start")
	}
}

func TestDeleteForward(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"), newTag("a"), txt("2"))})
	e.Select(caretAt(0, 0, 1))
	var removed []*Tag
	e.OnChange(func(c Change) { removed = append(removed, c.Removed...) })
	e.DeleteForward()

	if got := shape(e.Nodes()); got != "'12'" {
		t.Errorf("shape = %s, want '12'", got)
	}
	if len(removed) != 1 || removed[0].DisplayID != "a" {
		t.Errorf("Expected tag a removed, got %v", removed)
	}
}

func TestDeleteRange(t *testing.T) {
	e := NewEditor([]Node{para(txt("ab"), newTag("x"), txt("cd")), para(txt("ef"))})
	e.Select(caretAt(1, 0, 2))

	var removed []*Tag
	e.OnChange(func(c Change) { removed = append(removed, c.Removed...) })
	e.Delete(Range{
		Anchor: Point{Path: Path{0, 0}, Offset: 1},
		Focus:  Point{Path: Path{1, 0}, Offset: 1},
	})

	if got := shape(e.Nodes()); got != "'af'" {
		t.Errorf("shape = %s, want 'af'", got)
	}
	if len(removed) != 1 || removed[0].DisplayID != "x" {
		t.Errorf("Expected tag x removed, got %v", removed)
	}
	// caret was after the range and shifts back with the content
	sel, _ := e.Selection()
	if sel.Focus.Compare(Point{Path: Path{0, 0}, Offset: 2}) != 0 {
		t.Errorf("caret = %v, want [0 0]:2", sel.Focus)
	}
}

func TestBefore(t *testing.T) {
	e := NewEditor([]Node{para(txt("ab"), newTag("x"), txt("cd"))})
	end := Point{Path: Path{0, 2}, Offset: 2}

	p, ok := e.Before(end, 2)
	if !ok || p.Compare(Point{Path: Path{0, 2}, Offset: 0}) != 0 {
		t.Errorf("Before(2) = %v, %v", p, ok)
	}
	p, ok = e.Before(end, 3)
	if !ok || p.Compare(Point{Path: Path{0, 0}, Offset: 2}) != 0 {
		t.Errorf("Before(3) = %v, %v (tag counts as one step)", p, ok)
	}
	if _, ok := e.Before(end, 6); ok {
		t.Error("Expected Before past document start to fail")
	}
}

func TestWordBefore(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []Node
		caret    Range
		expected string
	}{
		{"trailing word", []Node{para(txt("2 + rev"))}, caretAt(0, 0, 7), "rev"},
		{"trailing spaces included", []Node{para(txt("2 + rev  "))}, caretAt(0, 0, 9), "rev  "},
		{"operator only", []Node{para(txt("2 +"))}, caretAt(0, 0, 3), "2 +"},
		{"stops at tag", []Node{para(txt("ab"), newTag("x"), txt(" cd"))}, caretAt(0, 2, 3), "cd"},
		{"right after tag", []Node{para(txt("ab"), newTag("x"), txt(""))}, caretAt(0, 2, 0), ""},
		{"mid word", []Node{para(txt("revenue"))}, caretAt(0, 0, 3), "rev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(tt.nodes)
			if got := e.WordBefore(tt.caret.Focus); got != tt.expected {
				t.Errorf("WordBefore = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTagBefore(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"), newTag("a"), txt("2"))})

	path, tag, ok := e.TagBefore(Point{Path: Path{0, 2}, Offset: 0})
	if !ok {
		t.Fatal("Expected tag before caret")
	}
	if tag.DisplayID != "a" || len(path) != 2 || path[0] != 0 || path[1] != 1 {
		t.Errorf("TagBefore = %v %v", path, tag.DisplayID)
	}
	if _, _, ok := e.TagBefore(Point{Path: Path{0, 2}, Offset: 1}); ok {
		t.Error("Expected no tag before a text character")
	}
}

func TestFindTagAndSetFilter(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"), newTag("a"), txt("+"), newTag("b"))})

	path, tag, ok := e.FindTag("b")
	if !ok {
		t.Fatal("Expected to find tag b")
	}
	if path[0] != 0 || path[1] != 3 || tag.DisplayID != "b" {
		t.Errorf("FindTag = %v %v", path, tag.DisplayID)
	}

	for _, f := range DateFilters {
		if err := e.SetTagFilter(path, f); err != nil {
			t.Fatalf("SetTagFilter(%q) failed: %v", f, err)
		}
		_, got, _ := e.FindTag("b")
		if got.Filter != f {
			t.Errorf("Expected filter %q, got %q", f, got.Filter)
		}
	}

	if err := e.SetTagFilter(Path{0, 2}, FilterCustom); err == nil {
		t.Error("Expected error when path is a text run")
	}
	if _, _, ok := e.FindTag("missing"); ok {
		t.Error("Expected missing tag not to be found")
	}
}

func TestFindTagIndexInvalidatedOnMutation(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"), newTag("a"))})
	e.SelectStart()
	if _, _, ok := e.FindTag("a"); !ok {
		t.Fatal("Expected tag a")
	}
	e.InsertNode(newTag("b"))
	path, _, ok := e.FindTag("a")
	if !ok || path[1] != 3 {
		t.Errorf("Expected tag a at child 3 after insert, got %v", path)
	}
}

func TestRemoveNode(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"), newTag("a"), txt("2")), para(txt("3"))})

	if err := e.RemoveNode(Path{0, 1}); err != nil {
		t.Fatalf("RemoveNode failed: %v", err)
	}
	if got := shape(e.Nodes()); got != "'12'|'3'" {
		t.Errorf("shape = %s", got)
	}
	if err := e.RemoveNode(Path{1}); err != nil {
		t.Fatalf("RemoveNode block failed: %v", err)
	}
	if got := shape(e.Nodes()); got != "'12'" {
		t.Errorf("shape = %s", got)
	}
	if err := e.RemoveNode(Path{4, 0}); err == nil {
		t.Error("Expected error for invalid path")
	}
}

func TestMoveAcrossTag(t *testing.T) {
	e := NewEditor([]Node{para(txt("1"), newTag("a"), txt("2"))})
	e.Select(caretAt(0, 0, 1))
	e.MoveRight()
	sel, _ := e.Selection()
	if sel.Focus.Compare(Point{Path: Path{0, 2}, Offset: 0}) != 0 {
		t.Errorf("caret after MoveRight = %v, want [0 2]:0", sel.Focus)
	}
	e.MoveLeft()
	sel, _ = e.Selection()
	if sel.Focus.Compare(Point{Path: Path{0, 0}, Offset: 1}) != 0 {
		t.Errorf("caret after MoveLeft = %v, want [0 0]:1", sel.Focus)
	}
	e.MoveEnd()
	sel, _ = e.Selection()
	if sel.Focus.Compare(Point{Path: Path{0, 2}, Offset: 1}) != 0 {
		t.Errorf("caret after MoveEnd = %v", sel.Focus)
	}
	e.MoveHome()
	sel, _ = e.Selection()
	if sel.Focus.Compare(e.Start()) != 0 {
		t.Errorf("caret after MoveHome = %v", sel.Focus)
	}
}

func TestExtendAndReplaceSelection(t *testing.T) {
	e := NewEditor([]Node{para(txt("1234"))})
	e.Select(caretAt(0, 0, 1))
	e.ExtendRight()
	e.ExtendRight()
	sel, _ := e.Selection()
	if sel.IsCollapsed() {
		t.Fatal("Expected expanded selection")
	}
	e.InsertText("x")
	if got := e.String(); got != "1x4" {
		t.Errorf("String() = %q, want 1x4", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !NewEditor([]Node{para(txt("  "))}).IsBlank() {
		t.Error("Expected whitespace document to be blank")
	}
	if NewEditor([]Node{para(newTag("a"))}).IsBlank() {
		t.Error("Expected document with a tag not to be blank")
	}
}

func TestParseDateFilter(t *testing.T) {
	f, err := ParseDateFilter(" Last 3 Months ")
	if err != nil || f != FilterLast3Months {
		t.Errorf("ParseDateFilter = %q, %v", f, err)
	}
	if _, err := ParseDateFilter("yesterday"); err == nil {
		t.Error("Expected error for unknown filter")
	}
}

func TestValueFloat(t *testing.T) {
	if f, ok := TextValue("12.5").Float(); !ok || f != 12.5 {
		t.Errorf("TextValue(12.5).Float() = %v, %v", f, ok)
	}
	if _, ok := TextValue("abc").Float(); ok {
		t.Error("Expected abc not to parse")
	}
	if f, ok := NumberValue(3).Float(); !ok || f != 3 {
		t.Errorf("NumberValue(3).Float() = %v, %v", f, ok)
	}
}
