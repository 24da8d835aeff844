package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/watcher"
)

type catalogLoadedMsg struct {
	items  []catalog.Item
	err    error
	reload bool
}

// loadCatalog fetches the item list once
func loadCatalog(cache *catalog.Cache) tea.Cmd {
	return func() tea.Msg {
		items, err := cache.Load(context.Background())
		return catalogLoadedMsg{items: items, err: err}
	}
}

// reloadCatalog fetches the item list again after its file changed
func reloadCatalog(cache *catalog.Cache) tea.Cmd {
	return func() tea.Msg {
		items, err := cache.Reload(context.Background())
		return catalogLoadedMsg{items: items, err: err, reload: true}
	}
}

// Watcher event messages
type watcherEventMsg struct {
	event watcher.Event
}

type watcherErrorMsg struct {
	err error
}

// listenForWatcherEvents creates a command that listens for watcher events
func listenForWatcherEvents(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-w.Events:
			return watcherEventMsg{event: event}
		case err := <-w.Errors:
			return watcherErrorMsg{err: err}
		}
	}
}

type clipboardMsg struct {
	text string
	err  error
}

// copyFormula places the executable formula on the system clipboard
func copyFormula(copyFn func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{text: text, err: copyFn(text)}
	}
}
