// Package media wraps the ffmpeg and ffprobe subprocess boundary: probing
// containers and extracting recognition-ready audio. Both tools run under
// a timeout so a wedged subprocess can never hang the pipeline; callers
// pass the configured bound and the package constants cover the rest.
package media

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"xscribe/internal/services"
)

// ProbeTimeout bounds a single ffprobe invocation when the caller does
// not supply a positive timeout.
const ProbeTimeout = 30 * time.Second

// ExtractTimeout bounds a single ffmpeg audio extraction when the caller
// does not supply a positive timeout.
const ExtractTimeout = 5 * time.Minute

// Probe is the parsed ffprobe inspection of one input file.
type Probe struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect runs ffprobe against path and decodes its JSON output. The call
// is bounded by timeout (ProbeTimeout when not positive) on top of any
// caller deadline.
func Inspect(ctx context.Context, binary, path string, timeout time.Duration) (Probe, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Probe{}, services.Wrap(services.ErrValidation, "probe", "inspect", "empty path", nil)
	}
	if timeout <= 0 {
		timeout = ProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Probe{}, services.Wrap(services.ErrTimeout, "probe", "inspect", "ffprobe timed out", ctx.Err())
		}
		detail := strings.TrimSpace(string(output))
		return Probe{}, services.Wrap(services.ErrExternalTool, "probe", "inspect", detail, err)
	}

	var probe Probe
	if err := json.Unmarshal(output, &probe); err != nil {
		return Probe{}, services.Wrap(services.ErrExternalTool, "probe", "inspect", "unparseable ffprobe output", err)
	}
	return probe, nil
}

// DurationSeconds returns the container duration in seconds, or 0 when
// ffprobe did not report one.
func (p Probe) DurationSeconds() float64 {
	if d := parseFloat(p.Format.Duration); d > 0 {
		return d
	}
	for _, stream := range p.Streams {
		if d := parseFloat(stream.Duration); d > 0 {
			return d
		}
	}
	return 0
}

// HasAudio reports whether the container carries at least one audio
// stream.
func (p Probe) HasAudio() bool {
	for _, stream := range p.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return true
		}
	}
	return false
}

// AudioCodec returns the codec name of the first audio stream, or "".
func (p Probe) AudioCodec() string {
	for _, stream := range p.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return stream.CodecName
		}
	}
	return ""
}

// AudioSampleRate returns the sample rate of the first audio stream, or 0.
func (p Probe) AudioSampleRate() int {
	for _, stream := range p.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			rate, err := strconv.Atoi(stream.SampleRate)
			if err == nil {
				return rate
			}
		}
	}
	return 0
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
