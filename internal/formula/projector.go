package formula

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ohare93/formula/internal/document"
)

// ColumnDateLayout is the date format columns are configured with
const ColumnDateLayout = "2006-01-02"

// Column is one result cell of the formula row
type Column struct {
	ID   string
	Date time.Time
}

// NewColumn creates a column with a fresh id
func NewColumn(date time.Time) Column {
	return Column{ID: uuid.NewString(), Date: date}
}

// ParseColumns builds columns from YYYY-MM-DD dates
func ParseColumns(dates []string) ([]Column, error) {
	columns := make([]Column, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(ColumnDateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("invalid column date %q: %w", d, err)
		}
		columns = append(columns, NewColumn(t))
	}
	return columns, nil
}

// Label renders the column header, e.g. "Jan 24"
func (c Column) Label() string {
	return c.Date.Format("Jan 2")
}

// Source supplies the document whose formula fills a column's cell
type Source interface {
	FormulaFor(col Column) []document.Node
}

// Results maps column ids to display values
type Results map[string]string

// Projector evaluates the formula once per column
type Projector struct {
	columns []Column
	last    map[string]projection
}

type projection struct {
	formula string
	result  string
}

// NewProjector creates a projector over columns in display order
func NewProjector(columns []Column) *Projector {
	return &Projector{
		columns: columns,
		last:    make(map[string]projection),
	}
}

// Columns returns the columns in display order
func (p *Projector) Columns() []Column {
	return p.columns
}

// Project recomputes every column. A column whose extracted formula did not
// change since the last call reuses its previous result.
func (p *Projector) Project(src Source) Results {
	results := make(Results, len(p.columns))
	for _, col := range p.columns {
		f := Extract(src.FormulaFor(col))
		if prev, ok := p.last[col.ID]; ok && prev.formula == f {
			results[col.ID] = prev.result
			continue
		}
		r := Evaluate(f)
		p.last[col.ID] = projection{formula: f, result: r}
		results[col.ID] = r
	}
	return results
}
