package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"xscribe/internal/result"
	"xscribe/internal/subtitles"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "captions <result.json>",
		Short: "Generate caption files from a stored result",
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
			if len(formats) == 0 {
				return fmt.Errorf("no caption format selected")
			}

			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			res, err := result.LoadFile(input)
			if err != nil {
				return err
			}

			dir := outputDir
			if dir == "" {
				dir = filepath.Dir(input)
			}
			stem := inputStem(input)

			engine := subtitles.New(logger, subtitleOptions(cfg))
			written, err := writeCaptions(engine, res, dir, stem, formats)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range written {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "both", "Caption formats to write (srt, vtt, both)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the result's directory)")
	return cmd
}
