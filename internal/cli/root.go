package cli

import (
	"fmt"
	"os"

	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/config"
	"github.com/ohare93/formula/internal/formula"
	"github.com/ohare93/formula/internal/logger"
	"github.com/ohare93/formula/internal/sheet"
	"github.com/ohare93/formula/internal/tui"
	"github.com/ohare93/formula/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "formula",
	Short:         "Edit a spreadsheet formula with tag autocomplete",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Formula opens a single spreadsheet formula cell in the terminal.

Type arithmetic as usual. Typing a word looks it up in the item list and
offers matching items; picking one inserts a tag that stands for the item's
value. The result is shown for every configured column.

Keys while editing:
  ↑/↓ enter tab  Choose and insert a suggested item
  esc            Close suggestions, press again to stop editing
  ctrl+f         Change the date range of the tag before the caret
  tab            Move the date range menu to the next tag
  ctrl+y         Copy the evaluated formula
  ctrl+c         Quit

Configuration lives in ~/.formula/config.yaml and is created on first run.`,
	RunE: runRootCommand,
	Args: cobra.NoArgs,
}

// GlobalOptions holds global flags and path overrides
type GlobalOptions struct {
	ConfigHome  string // Override for the home directory holding .formula
	CatalogURL  string // Override for catalog.url
	CatalogFile string // Override for catalog.file
	Debug       bool   // Log at debug level
}

// GlobalOpts holds the parsed global flags (exported for testing)
var GlobalOpts GlobalOptions

// isTerminal reports whether stdout is interactive; replaced in tests
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetConfigOptions returns ConfigOptions based on global flags
func GetConfigOptions() config.ConfigOptions {
	opts := config.DefaultConfigOptions()
	if GlobalOpts.ConfigHome != "" {
		opts.ConfigHome = GlobalOpts.ConfigHome
	}
	return opts
}

// LoadConfigForCommand loads Config and applies flag overrides
func LoadConfigForCommand() (*config.Config, error) {
	cfg, err := config.LoadConfigWithOptions(GetConfigOptions())
	if err != nil {
		return nil, err
	}
	if GlobalOpts.CatalogURL != "" {
		cfg.Catalog.URL = GlobalOpts.CatalogURL
	}
	if GlobalOpts.CatalogFile != "" {
		cfg.Catalog.File = GlobalOpts.CatalogFile
	}
	if GlobalOpts.Debug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func runRootCommand(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return fmt.Errorf("formula needs an interactive terminal; use 'formula eval' in scripts")
	}

	cfg, err := LoadConfigForCommand()
	if err != nil {
		return err
	}

	logPath, err := cfg.LogPath(GetConfigOptions())
	if err != nil {
		return err
	}
	log, err := logger.NewFileLogger(logPath, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logger.Sync(log)

	columns, err := formula.ParseColumns(cfg.Columns)
	if err != nil {
		return err
	}

	state := sheet.New(sheet.Options{
		Columns:       columns,
		Logger:        log,
		MaxCandidates: cfg.MaxCandidates,
	})
	cache := catalog.NewCache(catalog.NewSource(cfg.Catalog.URL, cfg.Catalog.File), log)

	var fileWatcher *watcher.Watcher
	if cfg.Catalog.File != "" {
		fileWatcher = watchCatalogFile(cfg.Catalog.File, log)
	}

	log.Info("starting formula editor",
		zap.String("catalog_url", cfg.Catalog.URL),
		zap.String("catalog_file", cfg.Catalog.File),
		zap.Int("columns", len(columns)))

	return tui.Run(tui.Options{
		State:   state,
		Catalog: cache,
		Watcher: fileWatcher,
		Logger:  log,
	})
}

// watchCatalogFile returns a watcher for path, or nil when it cannot be watched
func watchCatalogFile(path string, log *zap.Logger) *watcher.Watcher {
	w, err := watcher.New()
	if err != nil {
		log.Warn("catalog reload disabled", zap.Error(err))
		return nil
	}
	if err := w.WatchFile(path); err != nil {
		log.Warn("catalog reload disabled", zap.String("path", path), zap.Error(err))
		w.Close()
		return nil
	}
	return w
}

func init() {
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.ConfigHome, "config-home", "", "Override the directory holding .formula (for testing)")
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.CatalogURL, "catalog-url", "", "Fetch the item list from this URL")
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.CatalogFile, "catalog-file", "", "Read the item list from a JSON or YAML file")
	rootCmd.PersistentFlags().BoolVar(&GlobalOpts.Debug, "debug", false, "Log at debug level")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
}
