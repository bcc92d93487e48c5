package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"xscribe/internal/audio"
	"xscribe/internal/media"
	"xscribe/internal/modelconfig"
	"xscribe/internal/pipeline"
	"xscribe/internal/preflight"
	"xscribe/internal/result"
	"xscribe/internal/subtitles"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var language string
	var domain string
	var priority string
	var formatFlag string
	var outputDir string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe a single recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			formats, err := captionFormats(formatFlag)
			if err != nil {
				return err
			}
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			return ctx.withLock(func() error {
				out := cmd.OutOrStdout()

				if warnings := inputWarnings(cmd, ctx, input); len(warnings) > 0 {
					proceed, err := confirmProceed(cmd, warnings, assumeYes)
					if err != nil {
						return err
					}
					if !proceed {
						fmt.Fprintln(out, "Aborted")
						return nil
					}
				}

				cache, err := ctx.engineCache(logger)
				if err != nil {
					return err
				}
				orch := pipeline.New(cfg, cache, logger)

				req := pipeline.Request{
					Path:     input,
					Language: language,
					Domain:   domain,
				}
				if strings.TrimSpace(priority) != "" {
					req.Priority = modelconfig.ParsePriority(priority)
				}

				res, err := orch.Transcribe(cmd.Context(), req, func(stage, message string, percent float64) {
					fmt.Fprintf(out, "[%3.0f%%] %s\n", percent, message)
				})
				if err != nil {
					return err
				}

				dir := outputDir
				if dir == "" {
					dir = cfg.Paths.OutputDir
				}
				stem := inputStem(input)

				resultPath := filepath.Join(dir, stem+".json")
				if err := result.Save(resultPath, res); err != nil {
					return err
				}
				written := []string{resultPath}

				if len(formats) > 0 {
					engine := subtitles.New(logger, subtitleOptions(cfg))
					captionPaths, err := writeCaptions(engine, res, dir, stem, formats)
					if err != nil {
						return err
					}
					written = append(written, captionPaths...)
				}

				printTranscriptionSummary(cmd, res, written)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Spoken language hint (auto-detect when empty)")
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "Domain tag for term correction (medical, legal, technical)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Speed/accuracy trade-off (speed, balanced, accuracy)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "both", "Caption formats to write (srt, vtt, both, none)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the configured one)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Proceed without confirmation on warnings")
	return cmd
}

// inputWarnings returns advisory long-file warnings before the run
// starts. Quality warnings surface later from analysis inside the
// pipeline.
func inputWarnings(cmd *cobra.Command, ctx *commandContext, input string) []string {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil
	}

	var duration float64
	if strings.EqualFold(filepath.Ext(input), ".wav") {
		if w, err := audio.DecodeWAVFile(input); err == nil {
			duration = w.Duration()
		}
	} else if probe, err := media.Inspect(cmd.Context(), cfg.Tools.FFprobeBinary, input, cfg.Workflow.ProbeTimeout()); err == nil {
		duration = probe.DurationSeconds()
	}
	if duration <= 0 {
		return nil
	}
	// Quality is unknown before analysis; pass a passing score so only
	// the duration threshold applies here.
	return preflight.FileWarnings(cfg, duration, 100)
}

func printTranscriptionSummary(cmd *cobra.Command, res *result.Result, written []string) {
	out := cmd.OutOrStdout()
	rows := []table.Row{
		{"Language", fmt.Sprintf("%s (%.0f%%)", res.Language, res.LanguageProbability*100)},
		{"Duration", fmt.Sprintf("%.1fs", res.Duration)},
		{"Processing time", fmt.Sprintf("%.1fs", res.ProcessingTime)},
		{"Engine tier", res.EngineUsed},
		{"Segments", len(res.Segments)},
		{"Words", res.WordCount},
		{"Avg confidence", fmt.Sprintf("%.2f", res.AverageConfidence)},
	}
	if len(res.UniqueSpeakers) > 0 {
		rows = append(rows, table.Row{"Speakers", strings.Join(res.UniqueSpeakers, ", ")})
	}
	fmt.Fprintln(out, renderTable(table.Row{"Field", "Value"}, rows))
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
}
