package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/diary/internal/entrypoint"
	"github.com/mrlokans/diary/internal/scheduler"
)

func syncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass against the remote server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				runner := scheduler.NewSyncScheduler(app.Service, app.Settings, opts.cfg.Tasks.TaskTimeout)
				report, err := runner.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Sync finished: %s\n", report.Summary())
				return nil
			})
		},
	}
}
