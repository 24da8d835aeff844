package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/cli"
	"github.com/ohare93/formula/internal/config"
	"github.com/ohare93/formula/internal/formula"
	"github.com/ohare93/formula/internal/sheet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestEnv holds the test environment setup
type TestEnv struct {
	TempDir       string
	ConfigHome    string
	CatalogFile   string
	Logs          *observer.ObservedLogs
	Logger        *zap.Logger
	OriginalFlags cli.GlobalOptions
}

// SetupTestEnv creates an isolated config home and a file-backed item list
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tempDir := t.TempDir()
	configHome := filepath.Join(tempDir, "config")
	catalogDir := filepath.Join(tempDir, "data")

	for _, dir := range []string{configHome, catalogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	core, logs := observer.New(zapcore.DebugLevel)
	env := &TestEnv{
		TempDir:       tempDir,
		ConfigHome:    configHome,
		CatalogFile:   filepath.Join(catalogDir, "items.yaml"),
		Logs:          logs,
		Logger:        zap.New(core),
		OriginalFlags: cli.GlobalOpts,
	}

	cli.GlobalOpts = cli.GlobalOptions{
		ConfigHome:  configHome,
		CatalogFile: env.CatalogFile,
	}
	t.Cleanup(func() {
		cli.GlobalOpts = env.OriginalFlags
	})

	return env
}

// WriteCatalog replaces the item list file
func (env *TestEnv) WriteCatalog(t *testing.T, yamlData string) {
	t.Helper()
	if err := os.WriteFile(env.CatalogFile, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
}

// LoadConfig resolves the config the same way the commands do
func (env *TestEnv) LoadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := cli.LoadConfigForCommand()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// NewState builds a formula state for the configured columns with its catalog loaded
func (env *TestEnv) NewState(t *testing.T) (*sheet.State, *catalog.Cache) {
	t.Helper()
	cfg := env.LoadConfig(t)

	columns, err := formula.ParseColumns(cfg.Columns)
	if err != nil {
		t.Fatalf("Failed to parse columns: %v", err)
	}

	state := sheet.New(sheet.Options{
		Columns:       columns,
		Logger:        env.Logger,
		MaxCandidates: cfg.MaxCandidates,
	})
	cache := catalog.NewCache(catalog.NewSource(cfg.Catalog.URL, cfg.Catalog.File), env.Logger)
	items, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	state.SetCatalog(items)
	state.BeginEditing()
	return state, cache
}

// AssertResults checks every column shows want
func AssertResults(t *testing.T, state *sheet.State, want string) {
	t.Helper()
	for _, col := range state.Columns() {
		if got := state.Results()[col.ID]; got != want {
			t.Errorf("column %s = %q, want %q", col.Label(), got, want)
		}
	}
}
