package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"xscribe/internal/modelconfig"
	"xscribe/internal/result"
	"xscribe/internal/services"
)

// DefaultBinary is the faster-whisper CLI executable.
const DefaultBinary = "whisper-ctranslate2"

// CLIEngine shells out to a faster-whisper CLI and parses its JSON
// output. One engine is bound to one model tier.
type CLIEngine struct {
	binary        string
	tier          modelconfig.Tier
	workDir       string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCLIEngine builds an engine for the given tier. workDir receives the
// CLI's output files and must be writable.
func NewCLIEngine(binary string, tier modelconfig.Tier, workDir string) (*CLIEngine, error) {
	if !tier.Valid() {
		return nil, services.Wrap(services.ErrValidation, "recognize", "new engine",
			fmt.Sprintf("unknown tier %q", tier), nil)
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &CLIEngine{binary: binary, tier: tier, workDir: workDir}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *CLIEngine) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	e.commandRunner = runner
}

// Tier reports the model tier this engine was built with.
func (e *CLIEngine) Tier() modelconfig.Tier { return e.tier }

// Close releases the engine. The CLI holds no state between runs, so
// this only removes the scratch directory contents.
func (e *CLIEngine) Close() error { return nil }

// Transcribe runs the CLI over audioPath and parses the JSON it writes
// next to the audio file's base name in the work directory.
func (e *CLIEngine) Transcribe(ctx context.Context, audioPath string, opts Options) (*Output, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "recognize", "transcribe", "empty audio path", nil)
	}
	if err := os.MkdirAll(e.workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrPermission, "recognize", "transcribe", "ensure work dir", err)
	}

	args := e.buildArgs(audioPath, opts)
	output, err := e.run(ctx, e.binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "recognize", "transcribe", "engine run cancelled", ctx.Err())
		}
		if isOutOfMemory(output) {
			return nil, services.Wrap(services.ErrOutOfMemory, "recognize", "transcribe", "engine ran out of memory", err)
		}
		detail := strings.TrimSpace(string(output))
		return nil, services.Wrap(services.ErrRecognition, "recognize", "transcribe", detail, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(e.workDir, baseName+".json")
	out, err := loadOutput(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrRecognition, "recognize", "transcribe", "unreadable engine output", err)
	}
	return out, nil
}

// buildArgs maps decode parameters onto the faster-whisper CLI flags.
func (e *CLIEngine) buildArgs(audioPath string, opts Options) []string {
	cfg := opts.Config
	args := []string{
		audioPath,
		"--model", string(e.tier),
		"--output_dir", e.workDir,
		"--output_format", "json",
		"--temperature", formatFloat(cfg.Temperature),
		"--beam_size", strconv.Itoa(cfg.BeamSize),
		"--best_of", strconv.Itoa(cfg.BestOf),
		"--patience", formatFloat(cfg.Patience),
		"--length_penalty", formatFloat(cfg.LengthPenalty),
		"--compression_ratio_threshold", formatFloat(cfg.CompressionRatioThreshold),
		"--logprob_threshold", formatFloat(cfg.LogProbThreshold),
		"--no_speech_threshold", formatFloat(cfg.NoSpeechThreshold),
		"--condition_on_previous_text", formatBool(cfg.ConditionOnPreviousText),
	}
	if cfg.InitialPrompt != "" {
		args = append(args, "--initial_prompt", cfg.InitialPrompt)
	}
	if opts.Language != "" && opts.Language != "auto" {
		args = append(args, "--language", opts.Language)
	}
	if opts.WordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}
	if opts.CUDAEnabled {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu")
	}
	// FP16 is only meaningful on an accelerator; CPU runs always use FP32.
	if opts.CUDAEnabled && cfg.FP16 {
		args = append(args, "--compute_type", "float16")
	} else {
		args = append(args, "--compute_type", "float32")
	}
	return args
}

func (e *CLIEngine) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func isOutOfMemory(output []byte) bool {
	lowered := strings.ToLower(string(output))
	return strings.Contains(lowered, "out of memory") ||
		strings.Contains(lowered, "cannot allocate memory")
}

// enginePayload is the JSON structure the faster-whisper CLI writes.
type enginePayload struct {
	Language            string          `json:"language"`
	LanguageProbability float64         `json:"language_probability"`
	Segments            []engineSegment `json:"segments"`
}

type engineSegment struct {
	Start      float64      `json:"start"`
	End        float64      `json:"end"`
	Text       string       `json:"text"`
	AvgLogProb float64      `json:"avg_logprob"`
	Words      []engineWord `json:"words"`
}

type engineWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

func loadOutput(jsonPath string) (*Output, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload enginePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse engine json: %w", err)
	}

	out := &Output{
		Language:            payload.Language,
		LanguageProbability: clamp01(payload.LanguageProbability),
	}
	for _, seg := range payload.Segments {
		var confidence *float64
		if seg.AvgLogProb != 0 {
			confidence = result.Float64Ptr(clamp01(math.Exp(seg.AvgLogProb)))
		}
		built, err := result.NewSegment(seg.Start, seg.End, strings.TrimSpace(seg.Text), confidence, nil)
		if err != nil {
			return nil, fmt.Errorf("engine segment %f-%f: %w", seg.Start, seg.End, err)
		}
		out.Segments = append(out.Segments, built)
		for _, word := range seg.Words {
			out.Words = append(out.Words, result.WordTimestamp{
				Word:       strings.TrimSpace(word.Word),
				Start:      word.Start,
				End:        word.End,
				Confidence: result.Float64Ptr(clamp01(word.Probability)),
			})
		}
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
