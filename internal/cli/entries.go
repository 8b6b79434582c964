package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/diary/internal/entrypoint"
	"github.com/mrlokans/diary/internal/store"
)

const timeLayout = "2006-01-02 15:04"

func addCmd(opts *options) *cobra.Command {
	var keywords string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a journal entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				entry, err := app.Service.AddEntry(cmd.Context(), content, store.ParseKeywords(keywords))
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Added entry %d\n", entry.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&keywords, "keywords", "k", "", "comma separated keywords")
	return cmd
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				entries, err := app.Service.ListEntries()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					printf(out, "No entries\n")
					return nil
				}
				for _, e := range entries {
					printf(out, "%d\t%s\t%s", e.ID, e.CreatedAt.Local().Format(timeLayout), e.Content)
					if len(e.Keywords) > 0 {
						printf(out, "\t[%s]", strings.Join(e.Keywords, ", "))
					}
					printf(out, "\n")
				}
				return nil
			})
		},
	}
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show an entry's sentences and their tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				sentences, err := app.Service.Sentences(entryID)
				if err != nil {
					return err
				}
				tags, err := app.Service.TagsForEntry(entryID)
				if err != nil {
					return err
				}

				bySentence := make(map[int][]string)
				for _, t := range tags {
					bySentence[t.SentenceIndex] = append(bySentence[t.SentenceIndex], fmt.Sprintf("%s#%d", t.Tag, t.ID))
				}

				out := cmd.OutOrStdout()
				for i, s := range sentences {
					printf(out, "[%d] %s", i, s)
					if labels := bySentence[i]; len(labels) > 0 {
						printf(out, "  {%s}", strings.Join(labels, ", "))
					}
					printf(out, "\n")
				}
				return nil
			})
		},
	}
}

func keywordsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords <entry-id> <keywords>",
		Short: "Replace an entry's comma separated keywords",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(app *entrypoint.App) error {
				if err := app.Service.UpdateEntryKeywords(cmd.Context(), entryID, store.ParseKeywords(args[1])); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Updated keywords of entry %d\n", entryID)
				return nil
			})
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
