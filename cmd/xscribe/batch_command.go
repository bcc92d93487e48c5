package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"xscribe/internal/batch"
	"xscribe/internal/notifications"
	"xscribe/internal/pipeline"
	"xscribe/internal/queue"
	"xscribe/internal/result"
	"xscribe/internal/session"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [file...]",
		Short: "Transcribe the queued files on one worker",
		Long: "Enqueues any files given as arguments, then processes every pending " +
			"queue entry in order. A failing file is reported and skipped; the batch " +
			"continues. Interrupting with Ctrl-C stops after the current file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withLock(func() error {
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

					// Entries orphaned by a previous crash run again.
					if reset, err := store.ResetStuck(cmd.Context()); err != nil {
						return err
					} else if reset > 0 {
						fmt.Fprintf(out, "Reset %d interrupted entries to pending\n", reset)
					}

					cache, err := ctx.engineCache(logger)
					if err != nil {
						return err
					}
					orch := pipeline.New(cfg, cache, logger)
					registry := session.NewRegistry(logger)
					notifier := notifications.NewService(cfg)
					sched := batch.New(cfg, store, orch, cache, notifier, registry, logger)

					sigCh := make(chan os.Signal, 1)
					signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
					defer signal.Stop(sigCh)
					go func() {
						if _, ok := <-sigCh; ok {
							fmt.Fprintln(out, "Stop requested; finishing the current file")
							sched.Stop()
							registry.EmergencySave()
						}
					}()

					if err := sched.Start(cmd.Context(), &consoleListener{out: out}); err != nil {
						return err
					}
					sched.Wait()

					stats, err := store.Stats(cmd.Context())
					if err != nil {
						return err
					}
					printQueueStats(out, stats)
					return nil
				})
			})
		},
	}
	return cmd
}

// consoleListener renders scheduler events as terminal output.
type consoleListener struct {
	out io.Writer
}

func (l *consoleListener) FileStarted(index int, name string) {
	fmt.Fprintf(l.out, "[%d] Transcribing %s\n", index+1, name)
}

func (l *consoleListener) FileProgress(index int, _, message string, percent float64) {
	fmt.Fprintf(l.out, "[%d]   %3.0f%% %s\n", index+1, percent, message)
}

func (l *consoleListener) FileCompleted(index int, res *result.Result) {
	fmt.Fprintf(l.out, "[%d] Done (%d segments, %.1fs audio)\n", index+1, len(res.Segments), res.Duration)
}

func (l *consoleListener) FileFailed(index int, message string) {
	fmt.Fprintf(l.out, "[%d] Failed: %s\n", index+1, message)
}

func (l *consoleListener) BatchCompleted() {
	fmt.Fprintln(l.out, "Batch complete")
}

func printQueueStats(out io.Writer, stats map[queue.Status]int) {
	var rows []table.Row
	for _, status := range []queue.Status{queue.StatusPending, queue.StatusProcessing, queue.StatusCompleted, queue.StatusFailed} {
		if count, ok := stats[status]; ok && count > 0 {
			rows = append(rows, table.Row{string(status), count})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "Queue is empty")
		return
	}
	fmt.Fprintln(out, renderTable(table.Row{"Status", "Count"}, rows, 2))
}
