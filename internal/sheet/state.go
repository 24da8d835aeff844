package sheet

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/document"
	"github.com/ohare93/formula/internal/formula"
	"go.uber.org/zap"
)

// Options configures a new State
type Options struct {
	Columns       []formula.Column
	Document      []document.Node
	Logger        *zap.Logger
	MaxCandidates int
	// NewDisplayID generates a unique display id for a tag referencing itemID
	NewDisplayID func(itemID string) string
}

// State is the formula cell being edited: the document, the records of its tags,
// the autocomplete dropdown, the open tag menu and the projected column results.
// All mutation goes through its methods.
type State struct {
	editor       *document.Editor
	registry     *Registry
	autocomplete *Autocomplete
	projector    *formula.Projector
	results      formula.Results
	logger       *zap.Logger
	newDisplayID func(itemID string) string

	items         []catalog.Item
	catalogLoaded bool
	catalogErr    error

	editable bool
	openMenu string // display id of the tag whose filter menu is open
}

// DefaultDisplayID returns "tag-<itemID>-<uuid>"
func DefaultDisplayID(itemID string) string {
	return fmt.Sprintf("tag-%s-%s", itemID, uuid.NewString())
}

// New creates the state and projects the initial document
func New(opts Options) *State {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := opts.NewDisplayID
	if newID == nil {
		newID = DefaultDisplayID
	}

	s := &State{
		editor:       document.NewEditor(opts.Document),
		registry:     NewRegistry(),
		autocomplete: NewAutocomplete(opts.MaxCandidates),
		projector:    formula.NewProjector(opts.Columns),
		logger:       logger,
		newDisplayID: newID,
	}
	for _, t := range s.editor.Tags() {
		s.registry.Add(TagRecord{
			DisplayID:    t.DisplayID,
			SourceItemID: t.SourceItemID,
			Name:         t.Name,
			Value:        t.Value,
			Filter:       t.Filter,
		})
	}
	s.editor.OnChange(s.handleChange)
	s.project()
	return s
}

// FormulaFor implements formula.Source. Every column shares the one document.
func (s *State) FormulaFor(formula.Column) []document.Node {
	return s.editor.Nodes()
}

// handleChange runs after every document mutation
func (s *State) handleChange(c document.Change) {
	for _, t := range c.Removed {
		if s.registry.Remove(t.DisplayID) {
			s.logger.Debug("tag removed", zap.String("display_id", t.DisplayID))
		}
	}
	if err := s.CheckConsistency(); err != nil {
		s.logger.Error("tag records out of sync with document", zap.Error(err))
	}
	s.selectionChanged()
	s.project()
}

// selectionChanged re-derives the query and closes any tag menu
func (s *State) selectionChanged() {
	s.openMenu = ""
	sel, ok := s.editor.Selection()
	if !ok || !sel.IsCollapsed() {
		s.autocomplete.Reset()
		return
	}
	query := DeriveQuery(s.editor.WordBefore(sel.Focus))
	if query == "" {
		s.autocomplete.Reset()
		return
	}
	s.autocomplete.Update(query, s.items)
}

func (s *State) project() {
	s.results = s.projector.Project(s)
}

// Editor exposes the document for rendering
func (s *State) Editor() *document.Editor {
	return s.editor
}

// Nodes returns a copy of the document tree
func (s *State) Nodes() []document.Node {
	return s.editor.Nodes()
}

// Registry exposes the tag records
func (s *State) Registry() *Registry {
	return s.registry
}

// Autocomplete exposes the dropdown state
func (s *State) Autocomplete() *Autocomplete {
	return s.autocomplete
}

// Columns returns the result columns in display order
func (s *State) Columns() []formula.Column {
	return s.projector.Columns()
}

// Results returns the display value of every column
func (s *State) Results() formula.Results {
	return s.results
}

// ExecutableFormula returns the arithmetic string the document evaluates to
func (s *State) ExecutableFormula() string {
	return formula.Extract(s.editor.Nodes())
}

// Editable reports whether the formula accepts input
func (s *State) Editable() bool {
	return s.editable
}

// BeginEditing makes the formula editable and places the caret at the end
func (s *State) BeginEditing() {
	s.editable = true
	if s.editor.IsBlank() {
		s.editor.SelectStart()
	} else {
		s.editor.SelectEnd()
	}
	s.selectionChanged()
}

// StopEditing leaves edit mode, dropping the caret, dropdown and tag menu
func (s *State) StopEditing() {
	s.editable = false
	s.editor.Deselect()
	s.autocomplete.Reset()
	s.openMenu = ""
}

// TypeText inserts text at the caret
func (s *State) TypeText(text string) {
	if !s.editable {
		return
	}
	s.editor.InsertText(text)
}

// InsertParagraph splits the current paragraph at the caret
func (s *State) InsertParagraph() {
	if !s.editable {
		return
	}
	s.editor.InsertNode(document.NewParagraph())
}

// Backspace deletes before the caret. A tag right before a collapsed caret is
// removed whole together with its record.
func (s *State) Backspace() {
	if !s.editable {
		return
	}
	sel, ok := s.editor.Selection()
	if !ok {
		return
	}
	if sel.IsCollapsed() {
		if path, tag, found := s.editor.TagBefore(sel.Focus); found {
			s.registry.Remove(tag.DisplayID)
			if err := s.editor.RemoveNode(path); err != nil {
				s.logger.Error("failed to remove tag node", zap.String("display_id", tag.DisplayID), zap.Error(err))
			}
			return
		}
	}
	s.editor.DeleteBackward()
}

// DeleteForward deletes after the caret
func (s *State) DeleteForward() {
	if !s.editable {
		return
	}
	s.editor.DeleteForward()
}

// MoveLeft moves the caret one step back
func (s *State) MoveLeft() { s.moveCaret(s.editor.MoveLeft) }

// MoveRight moves the caret one step forward
func (s *State) MoveRight() { s.moveCaret(s.editor.MoveRight) }

// MoveHome moves the caret to the start of the paragraph
func (s *State) MoveHome() { s.moveCaret(s.editor.MoveHome) }

// MoveEnd moves the caret to the end of the paragraph
func (s *State) MoveEnd() { s.moveCaret(s.editor.MoveEnd) }

// ExtendLeft grows the selection one step back
func (s *State) ExtendLeft() { s.moveCaret(s.editor.ExtendLeft) }

// ExtendRight grows the selection one step forward
func (s *State) ExtendRight() { s.moveCaret(s.editor.ExtendRight) }

// SetCaret places a collapsed caret at p, as a pointer click inside the formula does
func (s *State) SetCaret(p document.Point) {
	s.moveCaret(func() { s.editor.Select(document.Caret(p)) })
}

func (s *State) moveCaret(move func()) {
	if !s.editable {
		return
	}
	move()
	s.selectionChanged()
}

// Cancel clears the query and candidates and closes the open tag menu without
// touching the document. It reports false when there was nothing to cancel.
func (s *State) Cancel() bool {
	active := s.openMenu != "" || s.autocomplete.Query != "" || len(s.autocomplete.Candidates) > 0
	s.autocomplete.Reset()
	s.openMenu = ""
	return active
}

// Dismiss handles a pointer interaction outside the dropdown and the input
func (s *State) Dismiss() {
	s.autocomplete.Reset()
	s.openMenu = ""
}

// Select replaces the query before the caret with a tag for item, followed by a
// space, and records the tag. It returns the new record.
func (s *State) Select(item catalog.Item) (TagRecord, bool) {
	if !s.editable {
		return TagRecord{}, false
	}
	sel, ok := s.editor.Selection()
	if !ok || !sel.IsCollapsed() {
		return TagRecord{}, false
	}

	query := s.autocomplete.Query
	if n := utf8.RuneCountInString(query); n > 0 {
		if start, ok := s.editor.Before(sel.Focus, n); ok {
			s.editor.Delete(document.Range{Anchor: start, Focus: sel.Focus})
		}
	}

	rec := TagRecord{
		DisplayID:    s.newDisplayID(item.ID),
		SourceItemID: item.ID,
		Name:         item.Name,
		Value:        item.Value,
		Filter:       document.DefaultDateFilter,
	}
	s.registry.Add(rec)
	s.editor.InsertNode(rec.Node())
	s.editor.InsertText(" ")

	s.autocomplete.Reset()
	s.logger.Debug("tag inserted", zap.String("display_id", rec.DisplayID), zap.String("item_id", item.ID))
	return rec, true
}

// AcceptSelected selects the highlighted candidate of a visible dropdown
func (s *State) AcceptSelected() (TagRecord, bool) {
	if !s.autocomplete.Visible() {
		return TagRecord{}, false
	}
	item, ok := s.autocomplete.SelectedCandidate()
	if !ok {
		return TagRecord{}, false
	}
	return s.Select(item)
}

// OpenMenu returns the display id of the tag whose filter menu is open
func (s *State) OpenMenu() string {
	return s.openMenu
}

// ToggleTagMenu opens the filter menu of displayID, closing any other, or closes
// it when it is already open
func (s *State) ToggleTagMenu(displayID string) {
	if s.openMenu == displayID {
		s.openMenu = ""
		return
	}
	s.openMenu = displayID
}

// CloseTagMenu closes the open filter menu
func (s *State) CloseTagMenu() {
	s.openMenu = ""
}

// TagBeforeCaret returns the tag immediately before a collapsed caret
func (s *State) TagBeforeCaret() (*document.Tag, bool) {
	sel, ok := s.editor.Selection()
	if !ok || !sel.IsCollapsed() {
		return nil, false
	}
	_, tag, found := s.editor.TagBefore(sel.Focus)
	return tag, found
}

// CycleTagMenu moves the open filter menu to the next tag in document order
func (s *State) CycleTagMenu() {
	tags := s.editor.Tags()
	if len(tags) == 0 {
		return
	}
	next := 0
	for i, t := range tags {
		if t.DisplayID == s.openMenu {
			next = (i + 1) % len(tags)
			break
		}
	}
	s.openMenu = tags[next].DisplayID
}

// ChooseTagFilter sets a tag's date filter on both its record and its node, and
// closes the menu. A node missing from the document is logged; the record is
// still updated.
func (s *State) ChooseTagFilter(displayID string, filter document.DateFilter) {
	if !s.registry.UpdateFilter(displayID, filter) {
		s.logger.Warn("tag record not found to update filter", zap.String("display_id", displayID))
	}
	if path, _, ok := s.editor.FindTag(displayID); ok {
		if err := s.editor.SetTagFilter(path, filter); err != nil {
			s.logger.Error("failed to set tag filter", zap.String("display_id", displayID), zap.Error(err))
		}
	} else {
		s.logger.Warn("tag not found in document to update filter",
			zap.String("display_id", displayID), zap.String("filter", string(filter)))
	}
	s.openMenu = ""
	s.project()
}

// SetCatalog makes the candidate list available. Filtering picks it up on the
// next query change.
func (s *State) SetCatalog(items []catalog.Item) {
	s.items = items
	s.catalogLoaded = true
	s.catalogErr = nil
}

// SetCatalogError records a failed catalog fetch
func (s *State) SetCatalogError(err error) {
	s.catalogErr = err
}

// CatalogLoaded reports whether the candidate list arrived
func (s *State) CatalogLoaded() bool {
	return s.catalogLoaded
}

// CatalogErr returns the catalog fetch failure, if any
func (s *State) CatalogErr() error {
	return s.catalogErr
}

// CheckConsistency verifies that document tags and records match one to one
func (s *State) CheckConsistency() error {
	var inDoc []string
	for _, t := range s.editor.Tags() {
		inDoc = append(inDoc, t.DisplayID)
	}
	var inRegistry []string
	for _, r := range s.registry.All() {
		inRegistry = append(inRegistry, r.DisplayID)
	}
	sort.Strings(inDoc)
	sort.Strings(inRegistry)
	if len(inDoc) != len(inRegistry) {
		return fmt.Errorf("document has %d tags, registry has %d records", len(inDoc), len(inRegistry))
	}
	for i := range inDoc {
		if inDoc[i] != inRegistry[i] {
			return fmt.Errorf("tag %s has no matching record", inDoc[i])
		}
	}
	return nil
}
