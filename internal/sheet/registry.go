package sheet

import (
	"github.com/ohare93/formula/internal/document"
)

// TagRecord describes one tag inserted into the formula
type TagRecord struct {
	DisplayID    string
	SourceItemID string
	Name         string
	Value        document.Value
	Filter       document.DateFilter
}

// Node builds the document node carrying the record's fields
func (r TagRecord) Node() *document.Tag {
	return &document.Tag{
		DisplayID:    r.DisplayID,
		SourceItemID: r.SourceItemID,
		Name:         r.Name,
		Value:        r.Value,
		Filter:       r.Filter,
	}
}

// Registry holds the records of every tag present in the document, in insertion order
type Registry struct {
	records []TagRecord
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a record
func (r *Registry) Add(rec TagRecord) {
	r.records = append(r.records, rec)
}

// Remove drops the record with displayID and reports whether one existed
func (r *Registry) Remove(displayID string) bool {
	for i, rec := range r.records {
		if rec.DisplayID == displayID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateFilter changes a record's date filter and reports whether it existed
func (r *Registry) UpdateFilter(displayID string, filter document.DateFilter) bool {
	for i := range r.records {
		if r.records[i].DisplayID == displayID {
			r.records[i].Filter = filter
			return true
		}
	}
	return false
}

// Get returns the record with displayID
func (r *Registry) Get(displayID string) (TagRecord, bool) {
	for _, rec := range r.records {
		if rec.DisplayID == displayID {
			return rec, true
		}
	}
	return TagRecord{}, false
}

// All returns a copy of the records
func (r *Registry) All() []TagRecord {
	out := make([]TagRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records
func (r *Registry) Len() int {
	return len(r.records)
}
