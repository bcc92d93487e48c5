package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"xscribe/internal/analysis"
	"xscribe/internal/audio"
	"xscribe/internal/media"
	"xscribe/internal/preflight"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Score recording quality without transcribing",
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
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			w, cleanup, err := loadWaveform(cmd, ctx, input)
			if err != nil {
				return err
			}
			defer cleanup()

			c := analysis.New(logger).Analyze(w)
			out := cmd.OutOrStdout()
			rows := []table.Row{
				{"Quality score", fmt.Sprintf("%.0f / 100", c.QualityScore)},
				{"SNR estimate", fmt.Sprintf("%.1f dB", c.SNREstimate)},
				{"Clipping ratio", fmt.Sprintf("%.3f", c.ClippingRatio)},
				{"Silence ratio", fmt.Sprintf("%.2f", c.SilenceRatio)},
				{"Spectral centroid", fmt.Sprintf("%.0f Hz", c.SpectralCentroidMean)},
				{"Duration", fmt.Sprintf("%.1fs", c.Duration)},
				{"Sample rate", fmt.Sprintf("%d Hz", c.SampleRate)},
			}
			fmt.Fprintln(out, renderTable(table.Row{"Metric", "Value"}, rows, 2))

			for _, rec := range c.Recommendations {
				fmt.Fprintf(out, "Recommendation: %s\n", rec)
			}
			for _, warning := range preflight.FileWarnings(cfg, c.Duration, c.QualityScore) {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			return nil
		},
	}
	return cmd
}

// loadWaveform decodes WAV input directly; other containers are probed
// and their audio extracted into the staging directory first.
func loadWaveform(cmd *cobra.Command, ctx *commandContext, input string) (audio.Waveform, func(), error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return audio.Waveform{}, nil, err
	}
	noop := func() {}

	if strings.EqualFold(filepath.Ext(input), ".wav") {
		w, err := audio.DecodeWAVFile(input)
		return w, noop, err
	}

	probe, err := media.Inspect(cmd.Context(), cfg.Tools.FFprobeBinary, input, cfg.Workflow.ProbeTimeout())
	if err != nil {
		return audio.Waveform{}, nil, err
	}
	if !probe.HasAudio() {
		return audio.Waveform{}, nil, fmt.Errorf("%s has no audio stream", input)
	}
	extracted, err := media.ExtractAudio(cmd.Context(), cfg.Tools.FFmpegBinary, input, cfg.Paths.StagingDir, cfg.Recognition.SampleRate, cfg.Workflow.ExtractTimeout())
	if err != nil {
		return audio.Waveform{}, nil, err
	}
	cleanup := func() { os.Remove(extracted) }
	w, err := audio.DecodeWAVFile(extracted)
	if err != nil {
		cleanup()
		return audio.Waveform{}, nil, err
	}
	return w, cleanup, nil
}
