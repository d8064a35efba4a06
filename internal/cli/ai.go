package cli

import (
	"errors"
	"fmt"

	"github.com/nikbrunner/bmai/internal/ai"
	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/library"
	"github.com/spf13/cobra"
)

// aiError turns provider configuration errors into the localized hint.
func (a *app) aiError(err error) error {
	if errors.Is(err, ai.ErrNoAPIKey) || errors.Is(err, ai.ErrProviderUnavailable) {
		return fmt.Errorf("%s: %w", a.tr().T(i18n.ConfigureAIFirst), err)
	}
	return err
}

func newAnnotateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate <id>...",
		Short: "Summarize and tag bookmarks with the AI provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.lib.Annotate(cmd.Context(), args)
			if err != nil {
				return a.aiError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.AnalyzedCount, n))
			return nil
		},
	}
}

func newOrganizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "organize",
		Short: "Classify the next batch of unclassified bookmarks",
		Long: fmt.Sprintf(`Send up to %d bookmarks that have not been classified yet to the AI
provider, one after another, and record summary and tags. Bookmarks that
fail are skipped and picked up by the next run.`, library.OrganizeBatchSize),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.lib.SmartOrganize(cmd.Context())
			if errors.Is(err, library.ErrAllClassified) {
				fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.AllClassified))
				return nil
			}
			if err != nil {
				return a.aiError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.OrganizedCount, n))
			return nil
		},
	}
}

func newAICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "AI provider commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Check the AI provider configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.lib.TestAI(cmd.Context()); err != nil {
				return fmt.Errorf("%s%w", a.tr().T(i18n.AITestFailed), a.aiError(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.AITestPassed))
			return nil
		},
	})
	return cmd
}
