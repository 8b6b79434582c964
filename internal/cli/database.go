package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrlokans/diary/internal/entrypoint"
	"github.com/mrlokans/diary/internal/utils"
)

func exportCmd(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the active store to a SQLite file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = opts.cfg.Diary.ExportDir
			}
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				path, err := app.Service.ExportToDir(dir)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "target directory (overrides DIARY_EXPORT_DIR)")
	return cmd
}

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the active store with a SQLite file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := utils.ValidateUpload(filepath.Base(path), "", info.Size()); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				report, err := app.Service.ImportDatabase(cmd.Context(), f)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printf(out, "Imported %s\n", path)
				if report != nil {
					printf(out, "Synced: %s\n", report.Summary())
				}
				return nil
			})
		},
	}
}
