package sheet

import (
	"regexp"
	"strings"

	"github.com/ohare93/formula/internal/catalog"
)

// Phase is the autocomplete controller state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseQuerying
)

func (p Phase) String() string {
	if p == PhaseQuerying {
		return "querying"
	}
	return "idle"
}

// trailingQuery matches the run of letters, digits and spaces ending the text
var trailingQuery = regexp.MustCompile(`([a-zA-Z0-9\s]+)$`)

// DeriveQuery extracts the autocomplete query from the text before the caret
func DeriveQuery(textBefore string) string {
	m := trailingQuery.FindStringSubmatch(textBefore)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Autocomplete tracks the candidate dropdown
type Autocomplete struct {
	Query      string         // Active query derived from the text before the caret
	Candidates []catalog.Item // Items matching Query
	Selected   int            // Highlighted candidate index
	Limit      int            // Maximum candidates kept, 0 for no limit
}

// NewAutocomplete creates an idle autocomplete state
func NewAutocomplete(limit int) *Autocomplete {
	return &Autocomplete{Limit: limit}
}

// Reset clears the query and candidates
func (a *Autocomplete) Reset() {
	a.Query = ""
	a.Candidates = nil
	a.Selected = 0
}

// Update sets the query and refilters items. Returns true if the visible state changed.
func (a *Autocomplete) Update(query string, items []catalog.Item) bool {
	wasVisible := a.Visible()
	oldQuery := a.Query
	oldCount := len(a.Candidates)

	a.Query = query
	a.Candidates = catalog.Filter(items, query)
	if a.Limit > 0 && len(a.Candidates) > a.Limit {
		a.Candidates = a.Candidates[:a.Limit]
	}
	if query != oldQuery || a.Selected >= len(a.Candidates) {
		a.Selected = 0
	}

	return wasVisible != a.Visible() || query != oldQuery || oldCount != len(a.Candidates)
}

// Visible reports whether the dropdown is shown
func (a *Autocomplete) Visible() bool {
	return a.Query != "" && len(a.Candidates) > 0
}

// Phase reports the controller state
func (a *Autocomplete) Phase() Phase {
	if a.Visible() {
		return PhaseQuerying
	}
	return PhaseIdle
}

// SelectNext moves selection to next candidate
func (a *Autocomplete) SelectNext() {
	if len(a.Candidates) > 0 {
		a.Selected = (a.Selected + 1) % len(a.Candidates)
	}
}

// SelectPrev moves selection to previous candidate
func (a *Autocomplete) SelectPrev() {
	if len(a.Candidates) > 0 {
		a.Selected = (a.Selected - 1 + len(a.Candidates)) % len(a.Candidates)
	}
}

// SelectedCandidate returns the highlighted candidate
func (a *Autocomplete) SelectedCandidate() (catalog.Item, bool) {
	if a.Selected >= 0 && a.Selected < len(a.Candidates) {
		return a.Candidates[a.Selected], true
	}
	return catalog.Item{}, false
}
