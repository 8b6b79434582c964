// Package cli implements the diary command line on top of cobra.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/diary/internal/config"
	"github.com/mrlokans/diary/internal/entrypoint"
	"github.com/mrlokans/diary/internal/logger"
)

// BuildInfo identifies the binary. It is set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
}

type options struct {
	build    BuildInfo
	cfg      *config.Config
	dbPath   string
	logLevel string
}

// NewRootCommand builds the diary command tree. Running it without a
// subcommand starts the HTTP server.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &options{build: build}

	root := &cobra.Command{
		Use:           "diary",
		Short:         "Sentence-tagged journal with optional server sync",
		Version:       fmt.Sprintf("%s (%s)", build.Version, build.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.cfg, opts.build.Version)
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the local settings database (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		serveCmd(opts),
		serveRemoteCmd(opts),
		modeCmd(opts),
		addCmd(opts),
		listCmd(opts),
		showCmd(opts),
		keywordsCmd(opts),
		tagCmd(opts),
		exportCmd(opts),
		importCmd(opts),
		syncCmd(opts),
	)
	return root
}

// load reads configuration and applies flag overrides.
func (o *options) load() error {
	o.cfg = config.NewConfig()
	if o.dbPath != "" {
		o.cfg.Database.Path = o.dbPath
	}
	if o.logLevel != "" {
		o.cfg.Log.Level = o.logLevel
	}

	_, err := logger.Init(logger.Config{
		Level:      o.cfg.Log.Level,
		Format:     o.cfg.Log.Format,
		File:       o.cfg.Log.File,
		MaxSizeMB:  o.cfg.Log.MaxSizeMB,
		MaxBackups: o.cfg.Log.MaxBackups,
		MaxAgeDays: o.cfg.Log.MaxAgeDays,
	})
	return err
}

// withApp opens the diary for the duration of fn.
func (o *options) withApp(ctx context.Context, fn func(*entrypoint.App) error) error {
	app, err := entrypoint.Open(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func serveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the diary HTTP API (default when no command is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.cfg, opts.build.Version)
		},
	}
}

func serveRemoteCmd(opts *options) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve-remote",
		Short: "Start the reference remote diary server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath != "" {
				opts.cfg.RemoteServer.DatabasePath = dbPath
			}
			return entrypoint.RunRemote(opts.cfg)
		},
	}
	cmd.Flags().StringVar(&dbPath, "remote-db", "", "path to the remote server database (overrides REMOTE_SERVER_DATABASE_PATH)")
	return cmd
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
