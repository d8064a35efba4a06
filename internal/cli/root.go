// Package cli implements the bmai command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/nikbrunner/bmai/internal/i18n"
	"github.com/nikbrunner/bmai/internal/library"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries what the subcommands share. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfgFile string
	cfg     Config
	log     *logrus.Logger
	lib     *library.Library
}

func (a *app) tr() *i18n.Translator {
	return a.lib.Translator()
}

// newRootCmd builds the bmai command tree. The returned app must be run
// with app.run so the library is closed on every exit path.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "bmai",
		Short:         "AI-assisted bookmark manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/bmai/config.yaml)")
	flags.String("data-dir", "", "directory holding the bookmark store")
	flags.String("storage", "", "storage backend: json or sqlite")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newTreeCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newAddFolderCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newMvCmd(a),
		newTagCmd(a),
		newTagsCmd(a),
		newSearchCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newAnnotateCmd(a),
		newOrganizeCmd(a),
		newAICmd(a),
		newSyncCmd(a),
		newWatchCmd(a),
		newCheckCmd(a),
		newSettingsCmd(a),
	)
	return root, a
}

// setup loads the process config, builds the logger and opens the library.
func (a *app) setup(cmd *cobra.Command) error {
	v, err := newViper(a.cfgFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"data_dir":  "data-dir",
		"storage":   "storage",
		"log_level": "log-level",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	a.cfg, err = loadConfig(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(a.cfg.LogLevel)

	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.Open(a.cfg.Storage, a.cfg.DataDir)
	if err != nil {
		return err
	}

	a.lib, err = library.Open(library.Params{
		Storage: store,
		Log:     a.log,
		OnDiagnostic: func(d model.Diagnostic) {
			a.log.WithFields(logrus.Fields{"op": d.Op, "id": d.ID}).Warn(d.Err)
		},
	})
	if err != nil {
		return errors.Join(err, store.Close())
	}
	a.log.WithFields(logrus.Fields{"dir": a.cfg.DataDir, "storage": a.cfg.Storage}).Debug("library opened")
	return nil
}

// run executes root and closes the library, also when the command failed.
func (a *app) run(root *cobra.Command) error {
	err := root.Execute()
	if a.lib != nil {
		if cerr := a.lib.Close(); err == nil {
			err = cerr
		}
		a.lib = nil
	}
	return err
}

// Execute runs the root command with os.Args.
func Execute() error {
	root, a := newRootCmd()
	return a.run(root)
}
