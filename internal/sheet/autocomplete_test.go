package sheet

import (
	"testing"

	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/document"
)

func TestDeriveQuery(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"rev", "rev"},
		{"2 + rev", "rev"},
		{"2 +rev", "rev"},
		{"rev  ", "rev"},
		{"(co", "co"},
		{"12", "12"},
		{"+", ""},
		{"   ", ""},
		{"", ""},
		{"café", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := DeriveQuery(tt.text); got != tt.expected {
				t.Errorf("DeriveQuery(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestAutocompleteUpdate(t *testing.T) {
	items := []catalog.Item{
		{ID: "1", Name: "Revenue"},
		{ID: "2", Name: "Gross Revenue"},
		{ID: "3", Name: "Reserves"},
	}
	ac := NewAutocomplete(0)

	if ac.Visible() || ac.Phase() != PhaseIdle {
		t.Fatal("Expected idle autocomplete")
	}
	if !ac.Update("re", items) {
		t.Error("Expected update to report change")
	}
	if !ac.Visible() || len(ac.Candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(ac.Candidates))
	}

	ac.SelectNext()
	ac.SelectNext()
	if c, _ := ac.SelectedCandidate(); c.ID != "3" {
		t.Errorf("Expected third candidate, got %s", c.ID)
	}
	if ac.Update("re", items) {
		t.Error("Expected identical update to report no change")
	}
	if ac.Selected != 2 {
		t.Errorf("Expected selection kept for same query, got %d", ac.Selected)
	}

	ac.Update("rev", items)
	if ac.Selected != 0 || len(ac.Candidates) != 2 {
		t.Errorf("Expected reset selection and 2 candidates, got %d/%d", ac.Selected, len(ac.Candidates))
	}

	ac.Update("zzz", items)
	if ac.Visible() || ac.Phase() != PhaseIdle {
		t.Error("Expected hidden dropdown for query without matches")
	}
	if _, ok := ac.SelectedCandidate(); ok {
		t.Error("Expected no candidate")
	}
}

func TestAutocompleteLimit(t *testing.T) {
	items := []catalog.Item{{ID: "1", Name: "a1"}, {ID: "2", Name: "a2"}, {ID: "3", Name: "a3"}}
	ac := NewAutocomplete(2)
	ac.Update("a", items)
	if len(ac.Candidates) != 2 || ac.Candidates[1].ID != "2" {
		t.Errorf("Expected first 2 candidates, got %+v", ac.Candidates)
	}
}

func TestAutocompleteSelectWraps(t *testing.T) {
	ac := NewAutocomplete(0)
	ac.SelectNext()
	ac.SelectPrev()
	if ac.Selected != 0 {
		t.Errorf("Expected no movement without candidates, got %d", ac.Selected)
	}

	ac.Update("x", []catalog.Item{{ID: "1", Name: "x1"}, {ID: "2", Name: "x2"}})
	ac.SelectPrev()
	if ac.Selected != 1 {
		t.Errorf("Expected wrap to last, got %d", ac.Selected)
	}
	ac.SelectNext()
	if ac.Selected != 0 {
		t.Errorf("Expected wrap to first, got %d", ac.Selected)
	}

	ac.Reset()
	if ac.Query != "" || ac.Candidates != nil || ac.Selected != 0 {
		t.Errorf("Expected reset state, got %+v", ac)
	}
	if ac.Phase().String() != "idle" {
		t.Errorf("Phase string = %s", ac.Phase())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Add(TagRecord{DisplayID: "a", SourceItemID: "1", Name: "Revenue", Value: document.NumberValue(3), Filter: document.FilterAllMonths})
	r.Add(TagRecord{DisplayID: "b", SourceItemID: "1", Name: "Revenue", Filter: document.FilterAllMonths})

	if r.Len() != 2 {
		t.Fatalf("Expected 2 records, got %d", r.Len())
	}
	if !r.UpdateFilter("a", document.FilterLast3Months) {
		t.Error("Expected update to find record")
	}
	if r.UpdateFilter("missing", document.FilterCustom) {
		t.Error("Expected update of missing record to fail")
	}
	rec, ok := r.Get("a")
	if !ok || rec.Filter != document.FilterLast3Months {
		t.Errorf("Expected updated filter, got %+v", rec)
	}

	node := rec.Node()
	if node.DisplayID != "a" || node.Filter != document.FilterLast3Months || node.Value.String() != "3" {
		t.Errorf("Node fields mismatch: %+v", node)
	}

	all := r.All()
	all[0].Name = "mutated"
	if rec, _ := r.Get("a"); rec.Name != "Revenue" {
		t.Error("Expected All to return a copy")
	}

	if !r.Remove("a") || r.Remove("a") {
		t.Error("Expected remove to succeed once")
	}
	if r.Len() != 1 || r.All()[0].DisplayID != "b" {
		t.Errorf("Unexpected records after remove: %+v", r.All())
	}
}
