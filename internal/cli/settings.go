package cli

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmai/internal/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored settings",
	}

	var reveal bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.lib.Settings()
			if !reveal {
				s = s.Redacted()
			}
			out, err := s.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	show.Flags().BoolVar(&reveal, "reveal", false, "print password and API key in clear")

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting. Keys:\n  " + strings.Join(settings.Keys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.lib.UpdateSettings(func(s *settings.Settings) error {
				return s.Set(args[0], args[1])
			})
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
