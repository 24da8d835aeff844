package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/sheet"
	"github.com/ohare93/formula/internal/watcher"
	"go.uber.org/zap"
)

// Options configures the formula editor program
type Options struct {
	State   *sheet.State
	Catalog *catalog.Cache
	Watcher *watcher.Watcher // optional, set when the catalog is file-backed
	Logger  *zap.Logger
}

// Model is the bubbletea model hosting one formula cell and its result row
type Model struct {
	state       *sheet.State
	cache       *catalog.Cache
	fileWatcher *watcher.Watcher
	logger      *zap.Logger

	keys    keyMap
	spinner spinner.Model

	// Filter menu cursor, index into document.DateFilters
	menuCursor int

	// UI state
	width   int
	height  int
	message string

	// copyToClipboard is swapped out in tests
	copyToClipboard func(string) error
}

// New creates the program model
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = helpStyle

	return Model{
		state:           opts.State,
		cache:           opts.Catalog,
		fileWatcher:     opts.Watcher,
		logger:          logger,
		keys:            defaultKeyMap(),
		spinner:         spin,
		copyToClipboard: clipboard.WriteAll,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.cache != nil {
		cmds = append(cmds, loadCatalog(m.cache))
	}
	if m.fileWatcher != nil {
		cmds = append(cmds, listenForWatcherEvents(m.fileWatcher))
	}
	return tea.Batch(cmds...)
}

// State returns the formula state behind the view
func (m Model) State() *sheet.State {
	return m.state
}

// Run starts the full-screen program and blocks until it exits
func Run(opts Options) error {
	if opts.Watcher != nil {
		opts.Watcher.Start()
		defer opts.Watcher.Close()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
