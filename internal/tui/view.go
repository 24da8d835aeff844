package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/ohare93/formula/internal/document"
	"github.com/ohare93/formula/internal/formula"
)

const promptWidth = 2

// cell is a clickable span of a rendered editor line
type cell struct {
	start, end int            // screen columns after the prompt, end exclusive
	point      document.Point // caret position right before the cell
	tagID      string         // set when the cell is a tag chip
}

type editorLine struct {
	text  string
	cells []cell
	start document.Point
	end   document.Point
}

// hit returns the cell under column x
func (l editorLine) hit(x int) (cell, bool) {
	for _, c := range l.cells {
		if x >= c.start && x < c.end {
			return c, true
		}
	}
	return cell{}, false
}

// layout records where each interactive part of the view is drawn
type layout struct {
	lines       []editorLine
	editorTop   int
	dropdownTop int // -1 when hidden
	candidates  int
	menuTop     int // first filter row, -1 when no menu is open
}

func (m Model) computeLayout() layout {
	lay := layout{
		lines:       m.renderEditor(),
		editorTop:   2, // title and a blank line
		dropdownTop: -1,
		menuTop:     -1,
	}
	row := lay.editorTop + len(lay.lines)

	if ac := m.state.Autocomplete(); m.state.Editable() && ac.Visible() {
		lay.dropdownTop = row
		lay.candidates = len(ac.Candidates)
		row += lay.candidates
	}
	if m.state.OpenMenu() != "" {
		lay.menuTop = row + 1 // below the menu title
	}
	return lay
}

// renderEditor draws each paragraph of the formula as one line
func (m Model) renderEditor() []editorLine {
	ed := m.state.Editor()
	sel, hasSel := ed.Selection()
	selStart, selEnd := sel.Edges()
	collapsed := hasSel && sel.IsCollapsed()

	isCaret := func(p document.Point) bool {
		return collapsed && sel.Focus.Compare(p) == 0
	}
	isSelected := func(p document.Point) bool {
		return hasSel && !collapsed && selStart.Compare(p) <= 0 && p.Compare(selEnd) < 0
	}

	var lines []editorLine
	for b, n := range ed.Nodes() {
		block, ok := n.(*document.Paragraph)
		if !ok {
			continue
		}
		var sb strings.Builder
		line := editorLine{start: document.Point{Path: document.Path{b, 0}}}
		col := 0
		var prev []rune

		for c, child := range block.Children {
			switch child := child.(type) {
			case *document.Text:
				runes := []rune(child.Content)
				for i, r := range runes {
					p := document.Point{Path: document.Path{b, c}, Offset: i}
					s := string(r)
					w := lipgloss.Width(s)
					switch {
					case isCaret(p):
						sb.WriteString(caretStyle.Render(s))
					case isSelected(p):
						sb.WriteString(selectionStyle.Render(s))
					default:
						sb.WriteString(s)
					}
					line.cells = append(line.cells, cell{start: col, end: col + w, point: p})
					col += w
				}
				prev = runes
				line.end = document.Point{Path: document.Path{b, c}, Offset: len(runes)}
			case *document.Tag:
				p := document.Point{Path: document.Path{b, c - 1}, Offset: len(prev)}
				chip := " " + child.Label() + " "
				style := tagStyle
				switch {
				case child.DisplayID == m.state.OpenMenu():
					style = tagOpenStyle
				case isCaret(p), isSelected(p):
					style = tagCaretStyle
				}
				w := lipgloss.Width(chip)
				sb.WriteString(style.Render(chip))
				line.cells = append(line.cells, cell{start: col, end: col + w, point: p, tagID: child.DisplayID})
				col += w
			}
		}

		if isCaret(line.end) {
			sb.WriteString(caretStyle.Render(" "))
		}
		line.text = sb.String()
		lines = append(lines, line)
	}
	return lines
}

func (m Model) View() string {
	if err := m.state.CatalogErr(); err != nil {
		return m.renderError(err)
	}

	lay := m.computeLayout()
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")

	for i, line := range lay.lines {
		prompt := strings.Repeat(" ", promptWidth)
		if i == 0 && m.state.Editable() {
			prompt = promptStyle.Render("= ")
		}
		text := line.text
		if i == 0 && len(lay.lines) == 1 && !m.state.Editable() && m.state.Editor().IsBlank() {
			text = placeholderStyle.Render("press enter to write a formula")
		}
		b.WriteString(prompt + text + "\n")
	}

	if lay.dropdownTop >= 0 {
		b.WriteString(m.renderDropdown())
	}
	if lay.menuTop >= 0 {
		b.WriteString(m.renderTagMenu())
	}

	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("formula: " + m.state.ExecutableFormula()))
	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderTitle() string {
	title := titleStyle.Render("formula")
	switch {
	case !m.state.CatalogLoaded() && m.cache != nil:
		return title + "  " + m.spinner.View() + helpStyle.Render(" loading items")
	case m.cache != nil:
		return title + "  " + helpStyle.Render(fmt.Sprintf("%d items", len(m.cache.Items())))
	}
	return title
}

func (m Model) renderDropdown() string {
	ac := m.state.Autocomplete()
	var b strings.Builder
	for i, item := range ac.Candidates {
		style, marker := candidateStyle, "  "
		if i == ac.Selected {
			style, marker = selectedCandidateStyle, "> "
		}
		b.WriteString(marker)
		b.WriteString(style.Render(item.Name))
		if item.Category != "" {
			b.WriteString(" " + categoryStyle.Render(item.Category))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTagMenu() string {
	id := m.state.OpenMenu()
	_, tag, ok := m.state.Editor().FindTag(id)
	name := id
	var current document.DateFilter
	if ok {
		name = tag.Name
		current = tag.Filter
	}

	var b strings.Builder
	b.WriteString(menuTitleStyle.Render("Date range for " + name))
	b.WriteString("\n")
	for i, f := range document.DateFilters {
		marker := "  "
		if i == m.menuCursor {
			marker = "> "
		}
		check := "○ "
		if f == current {
			check = "● "
		}
		line := check + string(f)
		if i == m.menuCursor {
			line = selectedCandidateStyle.Render(line)
		} else {
			line = candidateStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	return b.String()
}

func (m Model) renderGrid() string {
	results := m.state.Results()
	var headers, values []string
	for _, col := range m.state.Columns() {
		headers = append(headers, headerCellStyle.Render(col.Label()))
		v := results[col.ID]
		if v == formula.ErrorResult {
			values = append(values, errorCellStyle.Render(v))
		} else {
			values = append(values, valueCellStyle.Render(v))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, headers...) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, values...)
}

func (m Model) renderHelp() string {
	var bindings []key.Binding
	switch {
	case !m.state.Editable():
		bindings = []key.Binding{m.keys.Edit, m.keys.Copy, m.keys.Leave}
	case m.state.OpenMenu() != "":
		bindings = []key.Binding{m.keys.Enter, m.keys.Tab, m.keys.Escape}
	case m.state.Autocomplete().Visible():
		bindings = []key.Binding{m.keys.Enter, m.keys.Escape}
	default:
		bindings = []key.Binding{m.keys.TagMenu, m.keys.Tab, m.keys.Copy, m.keys.Escape}
	}

	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

func (m Model) renderError(err error) string {
	return errorStyle.Render("Error: "+err.Error()) + "\n\n" +
		helpStyle.Render("The item list could not be loaded. Press q to quit.")
}
