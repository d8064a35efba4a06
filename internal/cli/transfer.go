package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/bmai/internal/exporter"
	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/importer"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/picker"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		selectIDs   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a bookmark file into the library",
		Long: `Import a Netscape bookmark file (.html, as exported by browsers) or a JSON
backup. Folders whose title matches an existing top-level folder are merged
into it; everything else is appended.

With --interactive a checkbox tree lets you pick what to import. --select
takes node ids from a JSON backup instead; HTML files carry no ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if selectIDs != "" && !isJSON(args[0], data) {
				return errors.New("--select needs a JSON backup: HTML files get new ids on every read, use --interactive instead")
			}

			candidate, err := stage(a, args[0], data)
			if errors.Is(err, importer.ErrInvalidFile) {
				return fmt.Errorf("%s: %w", a.tr().T(i18n.InvalidFile), err)
			}
			if err != nil {
				return err
			}

			var selected map[string]bool
			switch {
			case interactive:
				p, err := picker.Run(picker.NewTree(candidate.Root(), filepath.Base(args[0])))
				if err != nil {
					a.lib.CancelImport()
					return fmt.Errorf("picker: %w", err)
				}
				if p.Cancelled() {
					a.lib.CancelImport()
					fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.ImportCancelled))
					return nil
				}
				selected = p.Selected()
			case selectIDs != "":
				selected = map[string]bool{}
				for _, id := range splitList(selectIDs) {
					selected[id] = true
				}
			}
			if selected != nil && len(selected) == 0 {
				a.lib.CancelImport()
				fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.NothingSelected))
				return nil
			}

			count, err := a.lib.ConfirmImport(selected)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s. %s\n", a.tr().T(i18n.ImportSuccessful), a.tr().T(i18n.ImportedCount, count))
			return nil
		},
	}

	cmd.Flags().StringVar(&selectIDs, "select", "", "comma separated node ids to import (JSON backups only)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose what to import")
	return cmd
}

// isJSON reports whether the file looks like a JSON backup.
func isJSON(name string, data []byte) bool {
	return strings.EqualFold(filepath.Ext(name), ".json") || bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}

// stage parses data as JSON when the file looks like JSON, as HTML otherwise.
func stage(a *app, name string, data []byte) (*model.Tree, error) {
	if isJSON(name, data) {
		return a.lib.StageJSON(data)
	}
	return a.lib.StageHTML(data)
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export html|json [path]",
		Short: "Export the library",
		Long: `Export the library as a Netscape bookmark file (html) or as a JSON backup
including settings (json). The default path is
~/Downloads/bookmarks-export-YYYY-MM-DD.<format>.`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"html", "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])

			var data []byte
			switch format {
			case "html":
				data = []byte(exporter.ExportHTML(a.lib.Tree()))
			case "json":
				var err error
				data, err = exporter.ExportJSON(a.lib.Tree(), a.lib.Settings())
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want html or json)", args[0])
			}

			path := ""
			if len(args) == 2 {
				path = args[1]
			} else {
				var err error
				if path, err = exporter.DefaultExportPath(format); err != nil {
					return err
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			folders, bookmarks := a.lib.Tree().Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n", bookmarks, folders, path)
			return nil
		},
	}
}
