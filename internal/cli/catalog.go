package cli

import (
	"context"
	"fmt"

	"github.com/ohare93/formula/internal/catalog"
	"github.com/ohare93/formula/internal/logger"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [query]",
	Short: "List the items available for tags",
	Long: `Fetch the item list and print it. With a query, only items whose name
contains the query (case-insensitive) are shown, in the same order the
formula editor suggests them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigForCommand()
	if err != nil {
		return err
	}

	log, err := logger.NewConsoleLogger(cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	cache := catalog.NewCache(catalog.NewSource(cfg.Catalog.URL, cfg.Catalog.File), log)
	items, err := cache.Load(context.Background())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		items = catalog.Filter(items, args[0])
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, StyleDim.Render("No matching items"))
		return nil
	}
	for _, it := range items {
		value := StyleValue.Render(it.Value.String())
		if _, ok := it.Value.Float(); !ok {
			value = StyleInvalid.Render(it.Value.String() + " (counts as 0)")
		}
		fmt.Fprintf(out, "%s  %s  %s\n", StyleName.Render(it.Name), StyleDim.Render(it.Category), value)
	}
	return nil
}
