package cli

import (
	"fmt"

	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/search"
	"github.com/spf13/cobra"
)

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the folder hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTree(cmd.OutOrStdout(), a.lib.Tree().Root())
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		tags    []string
		recent  bool
		limit   int
		folder  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookmarks",
		Long: `List bookmarks, optionally filtered.

Examples:
  bmai list                      # every bookmark in tree order
  bmai list --tag dev --tag go   # bookmarks carrying all given tags
  bmai list --recent -n 10       # newest ten
  bmai list --folder 1           # bookmarks below folder 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bookmarks := a.lib.Flat()
			if folder != "" {
				n := a.lib.Tree().Find(folder)
				if n == nil || !n.IsFolder() {
					return fmt.Errorf("%w: %s", model.ErrNotFolder, folder)
				}
				bookmarks = bookmarksBelow(n)
			}
			if len(tags) > 0 {
				bookmarks = search.ByTags(bookmarks, tags)
			}
			if recent {
				bookmarks = search.Recent(bookmarks, limit)
			}
			if len(bookmarks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.NoResultsFound))
				return nil
			}
			printBookmarks(cmd.OutOrStdout(), bookmarks, verbose)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "only bookmarks with this tag (repeatable)")
	cmd.Flags().BoolVar(&recent, "recent", false, "newest first")
	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultRecentLimit, "number of bookmarks for --recent")
	cmd.Flags().StringVar(&folder, "folder", "", "only bookmarks below this folder id")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show summaries")
	return cmd
}

// bookmarksBelow lists the bookmarks in n's subtree in tree order.
func bookmarksBelow(n *model.Node) []*model.Node {
	var out []*model.Node
	var walk func(*model.Node)
	walk = func(n *model.Node) {
		for _, c := range n.Children {
			if c.IsFolder() {
				walk(c)
			} else {
				out = append(out, c)
			}
		}
	}
	walk(n)
	return out
}

func newAddCmd(a *app) *cobra.Command {
	var (
		title   string
		tags    string
		summary string
		parent  string
		analyze bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				title = a.tr().T(i18n.NewBookmark)
			}
			node, _, err := a.lib.AddBookmark(model.NewNodeParams{
				Title:   title,
				URL:     args[0],
				Type:    model.TypeBookmark,
				Tags:    splitList(tags),
				Summary: summary,
			}, parent)
			if err != nil {
				return err
			}
			if analyze {
				if _, err := a.lib.Annotate(cmd.Context(), []string{node.ID}); err != nil {
					return a.aiError(err)
				}
				if n := a.lib.Tree().Find(node.ID); n != nil {
					node = n
				}
			}
			printBookmarks(cmd.OutOrStdout(), []*model.Node{node}, true)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "bookmark title")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&summary, "summary", "", "short description")
	cmd.Flags().StringVarP(&parent, "parent", "p", model.RootID, "parent folder id")
	cmd.Flags().BoolVar(&analyze, "ai", false, "summarize and tag with the AI provider")
	return cmd
}

func newAddFolderCmd(a *app) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add-folder <title>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, _, err := a.lib.AddBookmark(model.NewNodeParams{Title: args[0], Type: model.TypeFolder}, parent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s/\n", node.ID, node.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", model.RootID, "parent folder id")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		title   string
		url     string
		tags    string
		summary string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a bookmark or folder",
		Long: `Change the given fields of a node. Only flags that are passed are applied;
--tags replaces the tag list (pass "" to clear it). Folders ignore --url.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.NodePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("url") {
				patch.URL = &url
			}
			if flags.Changed("tags") {
				patch.Tags = model.MergeTags(splitList(tags))
			}
			if flags.Changed("summary") {
				patch.Summary = &summary
			}

			diags, err := a.lib.UpdateBookmark(args[0], patch)
			if err != nil {
				return err
			}
			if len(diags) > 0 {
				return diags[0]
			}
			if n := a.lib.Tree().Find(args[0]); n != nil && n.IsBookmark() {
				printBookmarks(cmd.OutOrStdout(), []*model.Node{n}, true)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&url, "url", "", "new URL")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags, replacing the current ones")
	cmd.Flags().StringVar(&summary, "summary", "", "new summary")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete bookmarks or folders with their contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diags, err := a.lib.DeleteBookmarks(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.DeletedCount, len(args)-len(diags)))
			return nil
		},
	}
}

func newMvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <target-folder> <id>...",
		Short: "Move nodes into a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.lib.Tree().Find(args[0])
			if target == nil || !target.IsFolder() {
				return fmt.Errorf("%w: %s", model.ErrNotFolder, args[0])
			}
			ids := args[1:]
			diags, err := a.lib.MoveBookmarks(ids, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.MovedCount, len(ids)-len(diags)))
			return nil
		},
	}
}

func newTagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <tag,tag...> <id>...",
		Short: "Add tags to bookmarks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := splitList(args[0])
			if len(tags) == 0 {
				return fmt.Errorf("no tags given")
			}
			ids := args[1:]
			diags, err := a.lib.BatchAddTags(ids, tags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.TaggedCount, len(ids)-len(diags)))
			return nil
		},
	}
}

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tag := range a.lib.AllTags() {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}
