package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ohare93/formula/internal/document"
	"github.com/ohare93/formula/internal/watcher"
	"go.uber.org/zap"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.state.CatalogLoaded() || m.state.CatalogErr() != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogLoadedMsg:
		if msg.err != nil {
			m.state.SetCatalogError(msg.err)
			return m, nil
		}
		m.state.SetCatalog(msg.items)
		if msg.reload {
			m.message = fmt.Sprintf("Reloaded %d items", len(msg.items))
		}
		return m, nil

	case watcherEventMsg:
		cmds := []tea.Cmd{listenForWatcherEvents(m.fileWatcher)}
		switch msg.event.Type {
		case watcher.CatalogChanged:
			if m.cache != nil {
				cmds = append(cmds, reloadCatalog(m.cache))
			}
		case watcher.CatalogRemoved:
			m.logger.Warn("catalog file removed, keeping loaded items", zap.String("path", msg.event.Path))
		}
		return m, tea.Batch(cmds...)

	case watcherErrorMsg:
		m.logger.Warn("catalog watcher error", zap.Error(msg.err))
		return m, listenForWatcherEvents(m.fileWatcher)

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard copy failed", zap.Error(msg.err))
			m.message = "Copy failed: " + msg.err.Error()
		} else {
			m.message = "Copied: " + msg.text
		}
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	// A failed catalog fetch blocks the whole view
	if m.state.CatalogErr() != nil {
		if key.Matches(msg, m.keys.Leave) {
			return tea.Quit
		}
		return nil
	}

	m.message = ""

	if !m.state.Editable() {
		return m.handleIdleKey(msg)
	}
	if m.state.OpenMenu() != "" {
		if handled, cmd := m.handleMenuKey(msg); handled {
			return cmd
		}
	}
	if m.state.Autocomplete().Visible() {
		if handled := m.handleDropdownKey(msg); handled {
			return nil
		}
	}
	return m.handleEditKey(msg)
}

// handleIdleKey handles keys while the formula is read-only
func (m *Model) handleIdleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Edit):
		m.state.BeginEditing()
	case key.Matches(msg, m.keys.Copy):
		return copyFormula(m.copyToClipboard, m.state.ExecutableFormula())
	case key.Matches(msg, m.keys.Leave):
		return tea.Quit
	}
	return nil
}

// handleMenuKey handles keys while a tag's date filter menu is open
func (m *Model) handleMenuKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	n := len(document.DateFilters)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menuCursor = (m.menuCursor - 1 + n) % n
	case key.Matches(msg, m.keys.Down):
		m.menuCursor = (m.menuCursor + 1) % n
	case key.Matches(msg, m.keys.Enter):
		m.state.ChooseTagFilter(m.state.OpenMenu(), document.DateFilters[m.menuCursor])
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.TagMenu):
		m.state.CloseTagMenu()
	case key.Matches(msg, m.keys.Tab):
		m.state.CycleTagMenu()
		m.syncMenuCursor()
	default:
		return false, nil
	}
	return true, nil
}

// handleDropdownKey handles keys while candidates are shown
func (m *Model) handleDropdownKey(msg tea.KeyMsg) bool {
	ac := m.state.Autocomplete()
	switch {
	case key.Matches(msg, m.keys.Up):
		ac.SelectPrev()
	case key.Matches(msg, m.keys.Down):
		ac.SelectNext()
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Tab):
		m.state.AcceptSelected()
	case key.Matches(msg, m.keys.Escape):
		m.state.Cancel()
	default:
		return false
	}
	return true
}

// handleEditKey handles text entry and caret movement
func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		// a second escape with nothing left to cancel leaves edit mode
		if !m.state.Cancel() {
			m.state.StopEditing()
		}
	case key.Matches(msg, m.keys.Enter):
		m.state.InsertParagraph()
	case key.Matches(msg, m.keys.Tab):
		m.state.CycleTagMenu()
		m.syncMenuCursor()
	case key.Matches(msg, m.keys.TagMenu):
		if tag, ok := m.state.TagBeforeCaret(); ok {
			m.state.ToggleTagMenu(tag.DisplayID)
			m.syncMenuCursor()
		}
	case key.Matches(msg, m.keys.Copy):
		return copyFormula(m.copyToClipboard, m.state.ExecutableFormula())
	case key.Matches(msg, m.keys.Backspace):
		m.state.Backspace()
	case key.Matches(msg, m.keys.Delete):
		m.state.DeleteForward()
	case key.Matches(msg, m.keys.ExtendLeft):
		m.state.ExtendLeft()
	case key.Matches(msg, m.keys.ExtendRight):
		m.state.ExtendRight()
	case key.Matches(msg, m.keys.Left):
		m.state.MoveLeft()
	case key.Matches(msg, m.keys.Right):
		m.state.MoveRight()
	case key.Matches(msg, m.keys.Home):
		m.state.MoveHome()
	case key.Matches(msg, m.keys.End):
		m.state.MoveEnd()
	case msg.Type == tea.KeySpace:
		m.state.TypeText(" ")
	case msg.Type == tea.KeyRunes:
		m.state.TypeText(string(msg.Runes))
	}
	return nil
}

// syncMenuCursor points the menu cursor at the open tag's current filter
func (m *Model) syncMenuCursor() {
	m.menuCursor = 0
	_, tag, ok := m.state.Editor().FindTag(m.state.OpenMenu())
	if !ok {
		return
	}
	for i, f := range document.DateFilters {
		if f == tag.Filter {
			m.menuCursor = i
			return
		}
	}
}

// handleMouse routes a left click to the dropdown, the filter menu or the formula.
// A click anywhere else dismisses the dropdown and the menu.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if m.state.CatalogErr() != nil {
		return
	}
	m.message = ""

	lay := m.computeLayout()
	row := msg.Y

	switch {
	case lay.dropdownTop >= 0 && row >= lay.dropdownTop && row < lay.dropdownTop+lay.candidates:
		m.state.Autocomplete().Selected = row - lay.dropdownTop
		m.state.AcceptSelected()

	case lay.menuTop >= 0 && row >= lay.menuTop && row < lay.menuTop+len(document.DateFilters):
		m.menuCursor = row - lay.menuTop
		m.state.ChooseTagFilter(m.state.OpenMenu(), document.DateFilters[m.menuCursor])

	case row >= lay.editorTop && row < lay.editorTop+len(lay.lines):
		line := lay.lines[row-lay.editorTop]
		if !m.state.Editable() {
			m.state.BeginEditing()
		}
		x := msg.X - promptWidth
		c, ok := line.hit(x)
		if ok && c.tagID != "" {
			m.state.ToggleTagMenu(c.tagID)
			m.syncMenuCursor()
			return
		}
		switch {
		case ok:
			m.state.SetCaret(c.point)
		case x < 0:
			m.state.SetCaret(line.start)
		default:
			m.state.SetCaret(line.end)
		}

	default:
		m.state.Dismiss()
	}
}
