package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikbrunner/bmai/internal/autosync"
	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/webdav"
	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "WebDAV backup commands",
	}

	report := func(cmd *cobra.Command, res webdav.Result) error {
		if !res.Success {
			return errors.New(res.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "now",
			Short: "Upload the library to WebDAV",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return report(cmd, a.lib.SaveToWebDAV(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "test",
			Short: "Check the WebDAV connection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return report(cmd, a.lib.TestWebDAV(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "pull",
			Short: "Merge the WebDAV backup into the library",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if a.lib.Settings().WebDAV.URL == "" {
					return errors.New(a.tr().T(i18n.SyncNotConfigured))
				}
				if _, err := a.lib.StageRemote(cmd.Context()); err != nil {
					return fmt.Errorf("%s: %w", a.tr().T(i18n.WebDAVFailed), err)
				}
				count, err := a.lib.ConfirmImport(nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.tr().T(i18n.ImportedCount, count))
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the auto-sync configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s := a.lib.Settings()
				last := a.tr().T(i18n.Never)
				if s.WebDAVSync.LastSyncTime > 0 {
					last = formatMillis(s.WebDAVSync.LastSyncTime)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "URL:        %s\n", s.WebDAV.URL)
				fmt.Fprintf(w, "Auto sync:  %t (%s)\n", s.WebDAVSync.AutoSync, s.WebDAVSync.Interval)
				fmt.Fprintf(w, "%s:  %s\n", a.tr().T(i18n.LastSync), last)
				return nil
			},
		},
	)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the WebDAV auto-sync schedule until interrupted",
		Long: `Keep running and push the library to WebDAV according to
webDavSync.interval: hourly, daily, once at start (on_open), or a few
seconds after each change made by this process (on_change).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.lib.Settings()
			if s.WebDAV.URL == "" {
				return errors.New(a.tr().T(i18n.SyncNotConfigured))
			}
			if !s.WebDAVSync.AutoSync {
				a.log.Warn("webDavSync.autoSync is off; nothing will be synced until it is enabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.WithField("interval", s.WebDAVSync.Interval).Info("watching")
			return autosync.New(a.lib, a.log).Run(ctx)
		},
	}
}
