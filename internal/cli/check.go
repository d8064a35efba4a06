package cli

import (
	"fmt"

	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/linkcheck"
	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		deleteDead bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find dead links",
		Long: `Request every bookmark URL and report the ones that are gone (404/410)
or unreachable. A 404 on a domain listed in check.exclude_domains is reported
as possibly private instead of dead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bookmarks := withURL(a.lib.Flat())
			if len(bookmarks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.NoResultsFound))
				return nil
			}

			opts := linkcheck.Options{
				Concurrency:    a.cfg.Check.Concurrency,
				Timeout:        a.cfg.Check.Timeout,
				ExcludeDomains: a.cfg.Check.ExcludeDomains,
				Log:            a.log,
			}
			if !quiet {
				errOut := cmd.ErrOrStderr()
				opts.OnProgress = func(completed, total int) {
					fmt.Fprintf(errOut, "\rChecked %d/%d", completed, total)
					if completed == total {
						fmt.Fprintln(errOut)
					}
				}
			}

			results := linkcheck.Check(cmd.Context(), bookmarks, opts)
			healthy, dead, unreachable := linkcheck.Partition(results)

			w := cmd.OutOrStdout()
			for _, r := range dead {
				fmt.Fprintf(w, "dead         %s  %s  <%s>  (%d)\n", r.Bookmark.ID, r.Bookmark.Title, r.Bookmark.URL, r.StatusCode)
			}
			for _, r := range unreachable {
				fmt.Fprintf(w, "unreachable  %s  %s  <%s>  (%s)\n", r.Bookmark.ID, r.Bookmark.Title, r.Bookmark.URL, r.Error)
			}
			fmt.Fprintf(w, "%d healthy, %d dead, %d unreachable\n", len(healthy), len(dead), len(unreachable))

			if deleteDead && len(dead) > 0 {
				ids := make([]string, len(dead))
				for i, r := range dead {
					ids[i] = r.Bookmark.ID
				}
				diags, err := a.lib.DeleteBookmarks(ids)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, a.tr().T(i18n.DeletedCount, len(ids)-len(diags)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteDead, "delete-dead", false, "delete bookmarks that are gone")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress output")
	return cmd
}
