package cli

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/picker"
	"github.com/nikbrunner/bmai/internal/search"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		semantic bool
		fuzzy    bool
		open     bool
		copyURL  bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search bookmarks",
		Long: `Search bookmarks by keyword (all terms in title, URL or summary), by fuzzy
title match, or semantically through the AI provider.

Examples:
  bmai search go docs            # keyword search
  bmai search --fuzzy ghub       # fuzzy title match
  bmai search --semantic "tools for writing css"
  bmai search react --open       # pick a hit and open it in the browser`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if semantic && fuzzy {
				return fmt.Errorf("--semantic and --fuzzy are exclusive")
			}
			query := strings.Join(args, " ")

			var (
				hits []*model.Node
				err  error
			)
			switch {
			case semantic:
				hits, err = a.lib.SemanticSearch(cmd.Context(), query)
				if err != nil {
					return a.aiError(err)
				}
			case fuzzy:
				for _, r := range search.Fuzzy(a.lib.Flat(), query) {
					hits = append(hits, r.Bookmark)
				}
			default:
				hits, err = search.Keyword(a.lib.Flat(), query)
				if err != nil {
					return err
				}
			}

			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.NoResultsFound))
				return nil
			}
			if !open && !copyURL {
				printBookmarks(cmd.OutOrStdout(), hits, verbose)
				return nil
			}

			chosen := hits[0]
			if len(hits) > 1 {
				results := make([]search.SearchResult, len(hits))
				for i, h := range hits {
					results[i] = search.SearchResult{Bookmark: h}
				}
				p, err := picker.Run(picker.New(results, query))
				if err != nil {
					return fmt.Errorf("picker: %w", err)
				}
				if chosen = p.SelectedBookmark(); chosen == nil {
					return nil
				}
			}

			if copyURL {
				if err := clipboard.WriteAll(chosen.URL); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied: %s\n", chosen.URL)
			}
			if open {
				fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", chosen.Title)
				openURL(chosen.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&semantic, "semantic", "s", false, "ask the AI provider")
	cmd.Flags().BoolVarP(&fuzzy, "fuzzy", "f", false, "fuzzy match on titles")
	cmd.Flags().BoolVarP(&open, "open", "o", false, "open the chosen bookmark in the browser")
	cmd.Flags().BoolVarP(&copyURL, "copy", "y", false, "copy the chosen URL to the clipboard")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show summaries")
	return cmd
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
