package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"xscribe/internal/config"
	"xscribe/internal/result"
	"xscribe/internal/subtitles"
)

func subtitleOptions(cfg *config.Config) subtitles.Options {
	return subtitles.Options{
		MaxCharsPerLine:     cfg.Subtitles.MaxCharsPerLine,
		MaxLinesPerCue:      cfg.Subtitles.MaxLinesPerCue,
		MinDurationSeconds:  cfg.Subtitles.MinDurationSeconds,
		MaxDurationSeconds:  cfg.Subtitles.MaxDurationSeconds,
		GapThresholdSeconds: cfg.Subtitles.GapThresholdSeconds,
	}
}

// captionFormats parses a comma-separated format list into srt/vtt
// entries. "both" expands to the two supported formats.
func captionFormats(value string) ([]string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "both" {
		return []string{"srt", "vtt"}, nil
	}
	if value == "none" {
		return nil, nil
	}
	var formats []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		switch part {
		case "srt", "vtt":
			formats = append(formats, part)
		default:
			return nil, fmt.Errorf("unknown caption format %q (use srt, vtt, both, or none)", part)
		}
	}
	return formats, nil
}

func writeCaptions(engine *subtitles.Engine, res *result.Result, dir, stem string, formats []string) ([]string, error) {
	var written []string
	for _, format := range formats {
		path := filepath.Join(dir, stem+"."+format)
		if err := engine.Save(res, path, format); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func inputStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// confirmProceed prints warnings and asks for confirmation when
// attached to a terminal. Non-interactive runs proceed with the
// warnings logged to the output.
func confirmProceed(cmd *cobra.Command, warnings []string, assumeYes bool) (bool, error) {
	if len(warnings) == 0 {
		return true, nil
	}
	out := cmd.OutOrStdout()
	for _, warning := range warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	if assumeYes || !isatty.IsTerminal(os.Stdin.Fd()) {
		return true, nil
	}
	fmt.Fprint(out, "Proceed anyway? [y/N] ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
