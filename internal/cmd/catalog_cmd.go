package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/palette/internal/config"
	"github.com/runger/palette/internal/modules/catalog"
	"github.com/runger/palette/internal/storage"
)

var (
	importSource  string
	itemsSource   string
	itemsCategory string
	itemsLimit    int
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Short:   "Manage imported catalog items",
	GroupID: groupSetup,
	Long: `Manage the catalog items stored in the palette database.

Imported items are searched together with the YAML catalogs listed in
catalog.files. Importing a source again replaces its items.

Examples:
  palette catalog import duties.yaml             # Import as source "duties"
  palette catalog import --source game all.yaml  # Import under a custom name
  palette catalog sources                        # List imported sources
  palette catalog items --category Duty          # List items
  palette catalog remove duties                  # Delete a source`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a YAML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st storage.Store) error {
			return importCatalog(cmd, st, args[0], importSource)
		})
	},
}

var catalogSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List imported sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st storage.Store) error {
			return listSources(cmd, st)
		})
	},
}

var catalogItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List imported items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st storage.Store) error {
			return listItems(cmd, st)
		})
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <source>",
	Short: "Delete an imported source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st storage.Store) error {
			n, err := st.DeleteSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no items imported from source %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d items from %s%s%s\n", n, colorCyan, args[0], colorReset)
			return nil
		})
	},
}

func init() {
	catalogImportCmd.Flags().StringVar(&importSource, "source", "", "source name (default: file name without extension)")
	catalogItemsCmd.Flags().StringVar(&itemsSource, "source", "", "only items from this source")
	catalogItemsCmd.Flags().StringVar(&itemsCategory, "category", "", "only items in this category")
	catalogItemsCmd.Flags().IntVarP(&itemsLimit, "limit", "n", 0, "maximum number of items (0 = all)")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogSourcesCmd)
	catalogCmd.AddCommand(catalogItemsCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
}

// withStore opens the configured catalog database for the duration of fn.
func withStore(cmd *cobra.Command, fn func(storage.Store) error) error {
	applyColorMode()

	cfg, paths, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := storage.NewSQLiteStore(storePath(cfg, paths))
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func storePath(cfg *config.Config, paths *config.Paths) string {
	if cfg.Catalog.DBPath != "" {
		return cfg.Catalog.DBPath
	}
	return paths.DatabaseFile()
}

// sourceName derives a source name from a catalog file path.
func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func importCatalog(cmd *cobra.Command, st storage.Store, path, source string) error {
	src, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	if source == "" {
		source = sourceName(path)
	}
	n, err := st.ImportCatalog(cmd.Context(), source, src)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%sImported%s %d items as %s%s%s\n", colorGreen, colorReset, n, colorCyan, source, colorReset)
	return nil
}

func listSources(cmd *cobra.Command, st storage.Store) error {
	sources, err := st.ListSources(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(sources) == 0 {
		fmt.Fprintln(out, "No imported sources.")
		return nil
	}
	for _, s := range sources {
		imported := time.UnixMilli(s.ImportedAtUnixMs).Format(time.DateTime)
		fmt.Fprintf(out, "  %s%s%s  %d items  %s(imported %s)%s\n",
			colorCyan, s.Source, colorReset, s.ItemCount, colorDim, imported, colorReset)
	}
	return nil
}

func listItems(cmd *cobra.Command, st storage.Store) error {
	items, err := st.ListItems(cmd.Context(), storage.ItemQuery{
		Source:   itemsSource,
		Category: itemsCategory,
		Limit:    itemsLimit,
	})
	if err != nil {
		return err
	}
	writeItems(cmd.OutOrStdout(), items)
	return nil
}

func writeItems(out io.Writer, items []catalog.Item) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No items found.")
		return
	}
	for _, it := range items {
		line := fmt.Sprintf("  %-12s  %s", it.Category, it.Name)
		if len(it.Aliases) > 0 {
			line += colorDim + " (" + strings.Join(it.Aliases, ", ") + ")" + colorReset
		}
		if len(it.Variants) > 0 {
			line += fmt.Sprintf(" %s[%d variants]%s", colorDim, len(it.Variants), colorReset)
		}
		fmt.Fprintln(out, line)
	}
}
