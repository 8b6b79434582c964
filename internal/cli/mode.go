package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/diary/internal/entrypoint"
	"github.com/mrlokans/diary/internal/settingsstore"
)

func modeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Show the active store mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				printMode(cmd, app)
				return nil
			})
		},
	}
	cmd.AddCommand(modeSetCmd(opts))
	return cmd
}

func modeSetCmd(opts *options) *cobra.Command {
	var (
		serverMode bool
		origin     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Persist the store mode and reinitialize",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				err := app.Settings.SetModeConfig(settingsstore.ModeConfig{
					ServerMode: serverMode,
					Origin:     origin,
				})
				if err != nil {
					return err
				}
				if _, err := app.Service.Initialize(cmd.Context(), serverMode, origin); err != nil {
					return err
				}
				printMode(cmd, app)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&serverMode, "server", false, "enable server mode")
	cmd.Flags().StringVar(&origin, "origin", "", "remote server origin, e.g. http://localhost:8000")
	return cmd
}

func printMode(cmd *cobra.Command, app *entrypoint.App) {
	mode := app.Service.Mode()
	info := app.Settings.GetModeConfigInfo()
	out := cmd.OutOrStdout()

	active := "local"
	if mode.ServerMode {
		active = "server"
	}
	printf(out, "Active mode: %s\n", active)
	if mode.Fallback {
		printf(out, "Server unreachable, using the local store\n")
	}
	printf(out, "Server mode setting: %t (%s)\n", info.ServerMode, info.ServerModeSource)
	printf(out, "Origin: %q (%s)\n", info.Origin, info.OriginSource)
}
