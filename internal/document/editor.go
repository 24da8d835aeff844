package document

import (
	"fmt"
	"strings"
	"unicode"
)

// Path addresses a node: [block] for a paragraph, [block, child] for an inline node
type Path []int

// Point is a caret position inside a text run. Offset counts runes.
type Point struct {
	Path   Path
	Offset int
}

func (p Point) String() string {
	return fmt.Sprintf("%v:%d", []int(p.Path), p.Offset)
}

// Compare orders two points in document order
func (p Point) Compare(o Point) int {
	for i := 0; i < len(p.Path) && i < len(o.Path); i++ {
		if p.Path[i] != o.Path[i] {
			if p.Path[i] < o.Path[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case p.Offset < o.Offset:
		return -1
	case p.Offset > o.Offset:
		return 1
	}
	return 0
}

// Range is a selection between an anchor and a focus point
type Range struct {
	Anchor Point
	Focus  Point
}

// Caret returns a collapsed range at p
func Caret(p Point) Range {
	return Range{Anchor: p, Focus: p}
}

// IsCollapsed reports whether the range is a bare caret
func (r Range) IsCollapsed() bool {
	return r.Anchor.Compare(r.Focus) == 0
}

// Edges returns the range's points in document order
func (r Range) Edges() (Point, Point) {
	if r.Anchor.Compare(r.Focus) <= 0 {
		return r.Anchor, r.Focus
	}
	return r.Focus, r.Anchor
}

// Change is delivered to listeners after every mutation
type Change struct {
	Nodes   []Node
	Removed []*Tag // tags the mutation deleted from the document
}

// atom is one caret step: a rune, a whole tag or a paragraph break
type atom struct {
	r   rune
	tag *Tag
	brk bool
}

// Editor hosts a formula document: a sequence of paragraphs whose inline children
// alternate text runs and void tags, always starting and ending with a text run.
// Every caret position therefore lives inside a text run.
type Editor struct {
	atoms     []atom
	sel       *rangePos
	listeners []func(Change)
	index     map[string]int
}

// rangePos is a selection in flat atom positions
type rangePos struct {
	anchor, focus int
}

func (r rangePos) edges() (int, int) {
	if r.anchor <= r.focus {
		return r.anchor, r.focus
	}
	return r.focus, r.anchor
}

func (r rangePos) collapsed() bool {
	return r.anchor == r.focus
}

// NewEditor creates an editor over a copy of nodes. Top-level inline nodes are
// gathered into paragraphs and an empty document gets one empty paragraph.
func NewEditor(nodes []Node) *Editor {
	e := &Editor{}
	started := false
	inBlock := false
	for _, n := range nodes {
		switch n := n.(type) {
		case *Paragraph:
			if started {
				e.atoms = append(e.atoms, atom{brk: true})
			}
			e.atoms = appendInline(e.atoms, n.Children)
			started = true
			inBlock = false
		case *Tag, *Text:
			if started && !inBlock {
				e.atoms = append(e.atoms, atom{brk: true})
			}
			e.atoms = appendInline(e.atoms, []Node{n})
			started = true
			inBlock = true
		default:
			panic(fmt.Sprintf("document: unknown node type %T", n))
		}
	}
	return e
}

func appendInline(atoms []atom, nodes []Node) []atom {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			for _, r := range n.Content {
				atoms = append(atoms, atom{r: r})
			}
		case *Tag:
			c := *n
			atoms = append(atoms, atom{tag: &c})
		case *Paragraph:
			atoms = appendInline(atoms, n.Children)
		default:
			panic(fmt.Sprintf("document: unknown node type %T", n))
		}
	}
	return atoms
}

// OnChange registers a listener fired after every mutation
func (e *Editor) OnChange(fn func(Change)) {
	e.listeners = append(e.listeners, fn)
}

// Nodes returns a copy of the normalized document tree
func (e *Editor) Nodes() []Node {
	var blocks []Node
	cur := &Paragraph{}
	var buf strings.Builder
	flush := func() {
		cur.Children = append(cur.Children, &Text{Content: buf.String()})
		buf.Reset()
	}
	for _, a := range e.atoms {
		switch {
		case a.brk:
			flush()
			blocks = append(blocks, cur)
			cur = &Paragraph{}
		case a.tag != nil:
			flush()
			c := *a.tag
			cur.Children = append(cur.Children, &c)
		default:
			buf.WriteRune(a.r)
		}
	}
	flush()
	return append(blocks, cur)
}

// String returns the text content of the document. Tags contribute nothing.
func (e *Editor) String() string {
	var b strings.Builder
	for _, a := range e.atoms {
		if a.tag == nil && !a.brk {
			b.WriteRune(a.r)
		}
	}
	return b.String()
}

// IsBlank reports whether the document holds no tags and only whitespace
func (e *Editor) IsBlank() bool {
	for _, a := range e.atoms {
		if a.tag != nil {
			return false
		}
		if !a.brk && !unicode.IsSpace(a.r) {
			return false
		}
	}
	return true
}

// Tags returns copies of the tags in document order
func (e *Editor) Tags() []*Tag {
	var tags []*Tag
	for _, a := range e.atoms {
		if a.tag != nil {
			c := *a.tag
			tags = append(tags, &c)
		}
	}
	return tags
}

// Start is the first caret position of the document
func (e *Editor) Start() Point {
	return Point{Path: Path{0, 0}, Offset: 0}
}

// End is the last caret position of the document
func (e *Editor) End() Point {
	return e.point(len(e.atoms))
}

// Selection returns the current selection, if any
func (e *Editor) Selection() (Range, bool) {
	if e.sel == nil {
		return Range{}, false
	}
	return Range{Anchor: e.point(e.sel.anchor), Focus: e.point(e.sel.focus)}, true
}

// Select sets the selection. Points outside the document are clamped.
func (e *Editor) Select(r Range) {
	e.sel = &rangePos{anchor: e.pos(r.Anchor), focus: e.pos(r.Focus)}
}

// SelectStart places a collapsed caret at the start of the document
func (e *Editor) SelectStart() {
	e.sel = &rangePos{}
}

// SelectEnd places a collapsed caret at the end of the document
func (e *Editor) SelectEnd() {
	e.sel = &rangePos{anchor: len(e.atoms), focus: len(e.atoms)}
}

// Deselect drops the selection
func (e *Editor) Deselect() {
	e.sel = nil
}

// InsertText inserts s at the caret, replacing any expanded selection.
// Line breaks are dropped; use InsertNode with a paragraph to split blocks.
func (e *Editor) InsertText(s string) {
	if e.sel == nil {
		return
	}
	removed := e.deleteSelection()
	at := e.sel.focus
	var ins []atom
	for _, r := range s {
		if r == '\n' || r == '\r' {
			continue
		}
		ins = append(ins, atom{r: r})
	}
	e.insertAt(at, ins)
	e.emit(removed)
}

// InsertNode inserts n at the caret. Tags are placed inline and the caret ends
// right after them; a paragraph splits the current block and its content starts
// the new block.
func (e *Editor) InsertNode(n Node) {
	if e.sel == nil {
		return
	}
	removed := e.deleteSelection()
	at := e.sel.focus
	switch n := n.(type) {
	case *Tag:
		c := *n
		e.insertAt(at, []atom{{tag: &c}})
	case *Text:
		e.insertAt(at, appendInline(nil, []Node{n}))
	case *Paragraph:
		ins := append([]atom{{brk: true}}, appendInline(nil, n.Children)...)
		e.insertAt(at, ins)
	default:
		panic(fmt.Sprintf("document: unknown node type %T", n))
	}
	e.emit(removed)
}

// Delete removes the content of r. Tags inside the range are removed whole.
func (e *Editor) Delete(r Range) {
	start, end := e.pos(r.Anchor), e.pos(r.Focus)
	if start > end {
		start, end = end, start
	}
	if start == end {
		return
	}
	removed := e.deleteSpan(start, end)
	e.emit(removed)
}

// DeleteBackward removes the selection, or the single step before the caret. A
// tag before the caret goes as one unit; at a block start the block merges into
// the previous one.
func (e *Editor) DeleteBackward() {
	if e.sel == nil {
		return
	}
	if !e.sel.collapsed() {
		e.emit(e.deleteSelection())
		return
	}
	at := e.sel.focus
	if at == 0 {
		return
	}
	e.emit(e.deleteSpan(at-1, at))
}

// DeleteForward removes the selection, or the single step after the caret
func (e *Editor) DeleteForward() {
	if e.sel == nil {
		return
	}
	if !e.sel.collapsed() {
		e.emit(e.deleteSelection())
		return
	}
	at := e.sel.focus
	if at >= len(e.atoms) {
		return
	}
	e.emit(e.deleteSpan(at, at+1))
}

// RemoveNode removes the node at path. A tag is removed whole, a text run loses
// its content and a paragraph is removed together with its break.
func (e *Editor) RemoveNode(path Path) error {
	start, end, err := e.span(path)
	if err != nil {
		return err
	}
	if len(path) == 1 {
		// take a neighbouring break so the block disappears entirely
		if end < len(e.atoms) {
			end++
		} else if start > 0 {
			start--
		}
	}
	if start == end {
		return nil
	}
	e.emit(e.deleteSpan(start, end))
	return nil
}

// SetTagFilter sets the filter field of the tag at path
func (e *Editor) SetTagFilter(path Path, filter DateFilter) error {
	start, end, err := e.span(path)
	if err != nil {
		return err
	}
	if len(path) != 2 || end-start != 1 || e.atoms[start].tag == nil {
		return fmt.Errorf("node at path %v is not a tag", []int(path))
	}
	e.atoms[start].tag.Filter = filter
	e.emit(nil)
	return nil
}

// FindTag locates the tag with the given display id
func (e *Editor) FindTag(displayID string) (Path, *Tag, bool) {
	if e.index == nil {
		e.index = make(map[string]int)
		for i, a := range e.atoms {
			if a.tag != nil {
				e.index[a.tag.DisplayID] = i
			}
		}
	}
	i, ok := e.index[displayID]
	if !ok {
		return nil, nil, false
	}
	c := *e.atoms[i].tag
	return e.tagPath(i), &c, true
}

// TagBefore returns the tag immediately before p, if there is one
func (e *Editor) TagBefore(p Point) (Path, *Tag, bool) {
	at := e.pos(p)
	if at == 0 || e.atoms[at-1].tag == nil {
		return nil, nil, false
	}
	c := *e.atoms[at-1].tag
	return e.tagPath(at - 1), &c, true
}

// Before returns the point n steps before p. A tag and a paragraph break each
// count as one step.
func (e *Editor) Before(p Point, n int) (Point, bool) {
	at := e.pos(p) - n
	if at < 0 {
		return Point{}, false
	}
	return e.point(at), true
}

// WordBefore returns the text from the previous word boundary up to p. The scan
// stays inside p's text run: trailing non-word characters are included, then the
// run of letters and digits before them.
func (e *Editor) WordBefore(p Point) string {
	at := e.pos(p)
	start := at
	for start > 0 && e.atoms[start-1].tag == nil && !e.atoms[start-1].brk && !isWordRune(e.atoms[start-1].r) {
		start--
	}
	for start > 0 && e.atoms[start-1].tag == nil && !e.atoms[start-1].brk && isWordRune(e.atoms[start-1].r) {
		start--
	}
	runes := make([]rune, 0, at-start)
	for _, a := range e.atoms[start:at] {
		runes = append(runes, a.r)
	}
	return string(runes)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// MoveLeft collapses an expanded selection to its start, otherwise steps back
func (e *Editor) MoveLeft() {
	e.move(-1, false)
}

// MoveRight collapses an expanded selection to its end, otherwise steps forward
func (e *Editor) MoveRight() {
	e.move(1, false)
}

// ExtendLeft moves the selection focus one step back
func (e *Editor) ExtendLeft() {
	e.move(-1, true)
}

// ExtendRight moves the selection focus one step forward
func (e *Editor) ExtendRight() {
	e.move(1, true)
}

// MoveHome places the caret at the start of the current block
func (e *Editor) MoveHome() {
	if e.sel == nil {
		return
	}
	at := e.sel.focus
	for at > 0 && !e.atoms[at-1].brk {
		at--
	}
	e.sel = &rangePos{anchor: at, focus: at}
}

// MoveEnd places the caret at the end of the current block
func (e *Editor) MoveEnd() {
	if e.sel == nil {
		return
	}
	at := e.sel.focus
	for at < len(e.atoms) && !e.atoms[at].brk {
		at++
	}
	e.sel = &rangePos{anchor: at, focus: at}
}

func (e *Editor) move(delta int, extend bool) {
	if e.sel == nil {
		return
	}
	if !extend && !e.sel.collapsed() {
		start, end := e.sel.edges()
		at := start
		if delta > 0 {
			at = end
		}
		e.sel = &rangePos{anchor: at, focus: at}
		return
	}
	at := clamp(e.sel.focus+delta, 0, len(e.atoms))
	if extend {
		e.sel = &rangePos{anchor: e.sel.anchor, focus: at}
		return
	}
	e.sel = &rangePos{anchor: at, focus: at}
}

// deleteSelection removes an expanded selection and collapses the caret
func (e *Editor) deleteSelection() []*Tag {
	if e.sel == nil || e.sel.collapsed() {
		return nil
	}
	start, end := e.sel.edges()
	return e.deleteSpan(start, end)
}

// deleteSpan removes atoms [start, end) and shifts the selection accordingly
func (e *Editor) deleteSpan(start, end int) []*Tag {
	var removed []*Tag
	for _, a := range e.atoms[start:end] {
		if a.tag != nil {
			removed = append(removed, a.tag)
		}
	}
	e.atoms = append(e.atoms[:start:start], e.atoms[end:]...)
	if e.sel != nil {
		shift := func(p int) int {
			switch {
			case p >= end:
				return p - (end - start)
			case p > start:
				return start
			}
			return p
		}
		e.sel = &rangePos{anchor: shift(e.sel.anchor), focus: shift(e.sel.focus)}
	}
	return removed
}

// insertAt splices ins at position at; a caret at or after at moves past it
func (e *Editor) insertAt(at int, ins []atom) {
	if len(ins) == 0 {
		return
	}
	atoms := make([]atom, 0, len(e.atoms)+len(ins))
	atoms = append(atoms, e.atoms[:at]...)
	atoms = append(atoms, ins...)
	atoms = append(atoms, e.atoms[at:]...)
	e.atoms = atoms
	if e.sel != nil {
		shift := func(p int) int {
			if p >= at {
				return p + len(ins)
			}
			return p
		}
		e.sel = &rangePos{anchor: shift(e.sel.anchor), focus: shift(e.sel.focus)}
	}
}

func (e *Editor) emit(removed []*Tag) {
	e.index = nil
	if len(e.listeners) == 0 {
		return
	}
	change := Change{Nodes: e.Nodes()}
	for _, t := range removed {
		c := *t
		change.Removed = append(change.Removed, &c)
	}
	for _, fn := range e.listeners {
		fn(change)
	}
}

// blockStart returns the atom position where block b begins
func (e *Editor) blockStart(b int) (int, bool) {
	if b == 0 {
		return 0, true
	}
	seen := 0
	for i, a := range e.atoms {
		if a.brk {
			seen++
			if seen == b {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// span resolves path to its atom interval
func (e *Editor) span(path Path) (int, int, error) {
	if len(path) == 0 || len(path) > 2 {
		return 0, 0, fmt.Errorf("no node at path %v", []int(path))
	}
	start, ok := e.blockStart(path[0])
	if path[0] < 0 || !ok {
		return 0, 0, fmt.Errorf("no node at path %v", []int(path))
	}
	end := start
	for end < len(e.atoms) && !e.atoms[end].brk {
		end++
	}
	if len(path) == 1 {
		return start, end, nil
	}
	child := 0
	runStart := start
	for i := start; i <= end; i++ {
		if i == end || e.atoms[i].tag != nil {
			if child == path[1] {
				return runStart, i, nil
			}
			if i == end {
				break
			}
			if child+1 == path[1] {
				return i, i + 1, nil
			}
			child += 2
			runStart = i + 1
		}
	}
	return 0, 0, fmt.Errorf("no node at path %v", []int(path))
}

// pos converts a point to a flat atom position, clamping out-of-range points
func (e *Editor) pos(p Point) int {
	if len(p.Path) == 0 {
		return 0
	}
	block := p.Path[0]
	start, ok := e.blockStart(block)
	if block < 0 {
		return 0
	}
	if !ok {
		return len(e.atoms)
	}
	child := 0
	if len(p.Path) > 1 {
		child = p.Path[1]
	}
	i := start
	for c := 0; c < child; {
		if i >= len(e.atoms) || e.atoms[i].brk {
			return i
		}
		if e.atoms[i].tag != nil {
			c += 2
		}
		i++
	}
	for off := 0; off < p.Offset; off++ {
		if i >= len(e.atoms) || e.atoms[i].brk || e.atoms[i].tag != nil {
			break
		}
		i++
	}
	return i
}

// point converts a flat atom position to a point inside a text run
func (e *Editor) point(at int) Point {
	block, child, off := 0, 0, 0
	for _, a := range e.atoms[:at] {
		switch {
		case a.brk:
			block++
			child, off = 0, 0
		case a.tag != nil:
			child += 2
			off = 0
		default:
			off++
		}
	}
	return Point{Path: Path{block, child}, Offset: off}
}

// tagPath returns the path of the tag atom at position i
func (e *Editor) tagPath(i int) Path {
	p := e.point(i)
	return Path{p.Path[0], p.Path[1] + 1}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
