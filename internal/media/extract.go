package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"xscribe/internal/services"
)

// ExtractAudio transcodes the input's audio to a mono WAV at the given
// sample rate, written to destDir. Returns the path of the WAV file. The
// ffmpeg run is bounded by timeout (ExtractTimeout when not positive) on
// top of any caller deadline.
func ExtractAudio(ctx context.Context, ffmpegBinary, source, destDir string, sampleRate int, timeout time.Duration) (string, error) {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if !IsSupported(source) {
		return "", services.Wrap(services.ErrUnsupportedFormat, "extract", "audio",
			fmt.Sprintf("unrecognized extension %q", filepath.Ext(source)), nil)
	}
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return "", services.Wrap(services.ErrNotFound, "extract", "audio", source, err)
		}
		return "", services.Wrap(services.ErrPermission, "extract", "audio", source, err)
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if timeout <= 0 {
		timeout = ExtractTimeout
	}

	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	dest := filepath.Join(destDir, stem+"_audio.wav")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(dest)
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrTimeout, "extract", "audio", "ffmpeg timed out", ctx.Err())
		}
		detail := strings.TrimSpace(string(output))
		return "", services.Wrap(services.ErrExternalTool, "extract", "audio", detail, err)
	}

	info, err := os.Stat(dest)
	if err != nil || info.Size() == 0 {
		os.Remove(dest)
		return "", services.Wrap(services.ErrInvalidAudio, "extract", "audio", "ffmpeg produced no audio", err)
	}
	return dest, nil
}
