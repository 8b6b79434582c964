package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/diary/internal/entrypoint"
)

func tagCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage sentence tags",
	}
	cmd.AddCommand(tagAddCmd(opts), tagDeleteCmd(opts), tagListCmd(opts))
	return cmd
}

func tagAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <entry-id> <sentence-index> <tag>",
		Short: "Tag one sentence of an entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				tag, err := app.Service.AddTag(cmd.Context(), entryID, index, args[2])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Added tag %d\n", tag.ID)
				return nil
			})
		},
	}
}

func tagDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag-id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tagID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				if err := app.Service.DeleteTag(cmd.Context(), tagID); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted tag %d\n", tagID)
				return nil
			})
		},
	}
}

func tagListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <entry-id>",
		Short: "List the tags of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				tags, err := app.Service.TagsForEntry(entryID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, t := range tags {
					printf(out, "%d\t%d\t%s\n", t.ID, t.SentenceIndex, t.Tag)
				}
				return nil
			})
		},
	}
}
