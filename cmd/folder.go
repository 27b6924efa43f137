package cmd

import (
	"context"
	"fmt"
	"strconv"

	internalApp "github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/service"

	"github.com/spf13/cobra"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders // 管理文件夹",
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders // 列出文件夹",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			names, err := a.Folders(ctx)
			if err != nil {
				return err
			}
			notes, err := a.Notes(ctx)
			if err != nil {
				return err
			}
			counts := make(map[string]int, len(names))
			for _, n := range notes {
				if n.Folder != nil {
					counts[*n.Folder]++
				}
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, strconv.Itoa(counts[name])})
			}
			printTable(cmd.OutOrStdout(), []string{"FOLDER", "NOTES"}, rows)
			return nil
		})
	},
}

var folderAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a folder // 新增文件夹",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			if _, err := a.Dispatch(ctx, service.AddFolder{Name: args[0]}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "added", args[0])
			return nil
		})
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a folder and move its notes // 重命名文件夹",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *internalApp.App) error {
			if _, err := a.Dispatch(ctx, service.RenameFolder{Old: args[0], New: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s -> %s\n", args[0], args[1])
			return nil
		})
	},
}

func init() {
	folderCmd.AddCommand(folderListCmd, folderAddCmd, folderRenameCmd)
	rootCmd.AddCommand(folderCmd)
}
