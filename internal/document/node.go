package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DateFilter restricts which months a tag's data covers
type DateFilter string

const (
	FilterThisMonth     DateFilter = "this month"
	FilterPreviousMonth DateFilter = "previous month"
	FilterLast3Months   DateFilter = "last 3 months"
	FilterAllMonths     DateFilter = "all months"
	FilterCustom        DateFilter = "custom"

	DefaultDateFilter = FilterAllMonths
)

// DateFilters lists every filter in menu order
var DateFilters = []DateFilter{
	FilterThisMonth,
	FilterPreviousMonth,
	FilterLast3Months,
	FilterAllMonths,
	FilterCustom,
}

// ParseDateFilter validates a filter name (case-insensitive)
func ParseDateFilter(s string) (DateFilter, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, f := range DateFilters {
		if string(f) == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid date filter: %q", s)
}

// Value is a tag's data value. Sources deliver either numbers or numeric strings.
type Value struct {
	num    float64
	text   string
	isText bool
}

// NumberValue wraps a numeric value
func NumberValue(f float64) Value {
	return Value{num: f}
}

// TextValue wraps a string value that may or may not be numeric
func TextValue(s string) Value {
	return Value{text: s, isText: true}
}

// IsText reports whether the value was delivered as a string
func (v Value) IsText() bool {
	return v.isText
}

// Float resolves the value to a number. Numbers are returned as-is; strings are
// parsed as plain decimals. NaN, infinities, hex floats and digit separators
// all report false.
func (v Value) Float() (float64, bool) {
	if !v.isText {
		return v.num, isFinite(v.num)
	}
	s := strings.TrimSpace(v.text)
	if strings.ContainsRune(s, '_') {
		return 0, false
	}
	if lower := strings.ToLower(strings.TrimLeft(s, "+-")); strings.HasPrefix(lower, "0x") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v Value) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// Node is one of *Paragraph, *Tag or *Text
type Node interface {
	node()
}

// Paragraph is a block container
type Paragraph struct {
	Children []Node
}

// Tag is an inline void node referencing a catalog item. Its content can only be
// removed as a whole.
type Tag struct {
	DisplayID    string
	SourceItemID string
	Name         string
	Value        Value
	Filter       DateFilter
}

// Text is a run of literal formula text
type Text struct {
	Content string
}

func (*Paragraph) node() {}
func (*Tag) node()       {}
func (*Text) node()      {}

// Children returns the placeholder content of a void tag: a single empty text run
func (t *Tag) Children() []Node {
	return []Node{&Text{}}
}

// Label is the text shown for the tag in the editor
func (t *Tag) Label() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Filter)
}

// NewParagraph returns a paragraph holding the given nodes
func NewParagraph(children ...Node) *Paragraph {
	return &Paragraph{Children: children}
}

// CloneNodes deep-copies a node tree
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, cloneNode(n))
	}
	return out
}

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case *Paragraph:
		return &Paragraph{Children: CloneNodes(n.Children)}
	case *Tag:
		c := *n
		return &c
	case *Text:
		return &Text{Content: n.Content}
	default:
		panic(fmt.Sprintf("document: unknown node type %T", n))
	}
}
