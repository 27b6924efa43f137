package cmd

import (
	"context"
	"fmt"

	internalApp "github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes // 管理笔记",
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently updated first // 列出笔记",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			notes, err := a.Notes(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(notes))
			for _, n := range notes {
				folder := "-"
				if n.Folder != nil {
					folder = *n.Folder
				}
				rows = append(rows, []string{n.ID.String(), n.Title, folder, formatTime(n.UpdatedAt)})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "FOLDER", "UPDATED"}, rows)
			return nil
		})
	},
}

var noteNewFlags struct {
	title   string
	content string
	folder  string
}

var noteNewCmd = &cobra.Command{
	Use:   "new [--title t] [--content c] [--folder f]",
	Short: "Create a note // 新建笔记",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			events, err := a.Dispatch(ctx, service.CreateNote{Title: noteNewFlags.title, Content: noteNewFlags.content})
			if err != nil {
				return err
			}
			id, ok := selectedID(events)
			if !ok {
				return errors.New("created note was not selected")
			}
			if noteNewFlags.folder != "" {
				if _, err := a.Dispatch(ctx, service.MoveNoteToFolder{ID: id, Folder: noteNewFlags.folder}); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		})
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note // 输出笔记内容",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid note id %q", args[0])
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			n, err := a.Note(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n%s\n", n.Title, n.Content)
			return nil
		})
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note // 删除笔记",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid note id %q", args[0])
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			if _, err := a.Dispatch(ctx, service.SelectNote{ID: id}); err != nil {
				return err
			}
			if _, err := a.Dispatch(ctx, service.DeleteSelected{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id.String())
			return nil
		})
	},
}

func init() {
	fs := noteNewCmd.Flags()
	fs.StringVarP(&noteNewFlags.title, "title", "t", "", "note title")
	fs.StringVar(&noteNewFlags.content, "content", "", "note content")
	fs.StringVarP(&noteNewFlags.folder, "folder", "f", "", "folder name")

	noteCmd.AddCommand(noteListCmd, noteNewCmd, noteShowCmd, noteDeleteCmd)
	rootCmd.AddCommand(noteCmd)
}
