package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"xscribe/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the batch queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file...>",
		Short: "Enqueue files for the next batch run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					path, err := filepath.Abs(arg)
					if err != nil {
						return err
					}
					file, err := store.Add(cmd.Context(), path)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Queued %s (entry %d)\n", path, file.ID)
				}
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			for _, value := range listStatuses {
				status := queue.Status(value)
				if !status.Valid() {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store *queue.Store) error {
				files, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(files) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}

				rows := make([]table.Row, 0, len(files))
				for _, file := range files {
					detail := file.ErrorMessage
					if detail == "" && file.Status == queue.StatusProcessing {
						detail = fmt.Sprintf("%s %.0f%%", file.Stage, file.Progress)
					}
					rows = append(rows, table.Row{
						file.ID,
						filepath.Base(file.Path),
						string(file.Status),
						file.CreatedAt.Local().Format(time.DateTime),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(table.Row{"ID", "File", "Status", "Added", "Detail"}, rows, 1))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				printQueueStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withStore(func(store *queue.Store) error {
				var statuses []queue.Status
				label := "queue entries"
				switch {
				case clearCompleted:
					statuses = []queue.Status{queue.StatusCompleted}
					label = "completed entries"
				case clearFailed:
					statuses = []queue.Status{queue.StatusFailed}
					label = "failed entries"
				}
				removed, err := store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed entries")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed entries")
	return cmd
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return in-flight entries to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				updated, err := store.ResetStuck(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d entries\n", updated)
				return nil
			})
		},
	}
}
