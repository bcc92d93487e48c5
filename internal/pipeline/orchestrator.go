// Package pipeline runs the per-file transcription stage machine:
// Validate, AnalyzeQuality, Enhance, SelectConfig, Recognize, Diarize,
// PostProcess, AssembleResult. Only Validate and Recognize can fail the
// run; the optional stages degrade and the pipeline moves on.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"xscribe/internal/analysis"
	"xscribe/internal/audio"
	"xscribe/internal/config"
	"xscribe/internal/diarize"
	"xscribe/internal/enhance"
	"xscribe/internal/logging"
	"xscribe/internal/media"
	"xscribe/internal/modelconfig"
	"xscribe/internal/recognition"
	"xscribe/internal/result"
	"xscribe/internal/services"
	"xscribe/internal/textproc"
)

// Request describes one transcription run. Tier, when set, pins the
// engine tier instead of letting the selector pick one per file; batch
// runs use this so a single engine instance serves the whole batch.
type Request struct {
	Path     string
	Language string
	Domain   string
	Priority modelconfig.Priority
	Tier     modelconfig.Tier
}

// ProgressFunc receives stage progress. Percent is monotonic in [0,100].
type ProgressFunc func(stage, message string, percent float64)

// Stage progress milestones.
const (
	percentValidate  = 5
	percentAnalyze   = 15
	percentEnhance   = 30
	percentSelect    = 35
	percentRecognize = 80
	percentDiarize   = 90
	percentProcess   = 95
	percentDone      = 100
)

// Orchestrator owns the stage machine. One orchestrator serves many
// sequential runs; runs never execute concurrently.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	analyzer *analysis.Analyzer
	enhancer *enhance.Enhancer
	selector *modelconfig.Selector
	cache    *recognition.Cache
	diarizer *diarize.Diarizer
	textproc *textproc.Processor
}

// New wires the orchestrator from configuration. The cache supplies
// recognition engines per tier.
func New(cfg *config.Config, cache *recognition.Cache, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "pipeline"),
		analyzer: analysis.New(logger),
		enhancer: enhance.New(logger),
		selector: modelconfig.New(logger),
		cache:    cache,
		diarizer: diarize.New(logger),
		textproc: textproc.New(logger, textprocOptions(cfg.TextProcessing)),
	}
}

// Selector exposes the model selector so callers can feed performance
// history back after a run.
func (o *Orchestrator) Selector() *modelconfig.Selector { return o.selector }

// Transcribe runs the full stage machine for one file.
func (o *Orchestrator) Transcribe(ctx context.Context, req Request, progress ProgressFunc) (*result.Result, error) {
	started := time.Now()
	tracker := &progressTracker{fn: progress}

	// Validate.
	if err := checkpoint(ctx, "validate"); err != nil {
		return nil, err
	}
	w, enginePath, cleanup, err := o.validate(ctx, req.Path)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return nil, err
	}
	tracker.report("validate", "input validated", percentValidate)

	// AnalyzeQuality. Advisory; never fails the run.
	if err := checkpoint(ctx, "analyze"); err != nil {
		return nil, err
	}
	characteristics := o.analyzer.Analyze(w)
	tracker.report("analyze", "audio quality analyzed", percentAnalyze)

	// Enhance.
	if err := checkpoint(ctx, "enhance"); err != nil {
		return nil, err
	}
	enhanced := false
	if o.cfg.Enhancement.Enabled {
		improved := o.enhancer.Enhance(w, enhanceOptions(o.cfg.Enhancement))
		if path, writeErr := o.writeEnhanced(req.Path, improved); writeErr != nil {
			o.logger.Warn("enhanced audio not written, using original", logging.Error(writeErr))
		} else {
			defer os.Remove(path)
			enginePath = path
			w = improved
			enhanced = true
		}
	}
	tracker.report("enhance", "audio prepared", percentEnhance)

	// SelectConfig.
	if err := checkpoint(ctx, "select"); err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = modelconfig.ParsePriority(o.cfg.Recognition.Priority)
	}
	domain := req.Domain
	if domain == "" {
		domain = o.cfg.Recognition.Domain
	}
	engineCfg := o.selector.Select(characteristics, priority, domain)
	if req.Tier.Valid() {
		engineCfg.Tier = req.Tier
	}
	if !o.cfg.Recognition.CUDAEnabled {
		// CPU decoding always runs full precision.
		engineCfg.FP16 = false
	}
	tracker.report("select", "model configuration selected", percentSelect)

	// Recognize.
	if err := checkpoint(ctx, "recognize"); err != nil {
		return nil, err
	}
	engine, err := o.cache.Acquire(engineCfg.Tier)
	if err != nil {
		return nil, services.Wrap(services.ErrRecognition, "recognize", "acquire engine", "", err)
	}
	defer o.cache.Release()

	language := req.Language
	if language == "" {
		language = o.cfg.Recognition.Language
	}
	out, err := engine.Transcribe(ctx, enginePath, recognition.Options{
		Config:         engineCfg,
		Language:       language,
		CUDAEnabled:    o.cfg.Recognition.CUDAEnabled,
		WordTimestamps: true,
	})
	if err != nil {
		return nil, err
	}
	tracker.report("recognize", "speech recognized", percentRecognize)

	// Diarize. Best-effort; never fails the run.
	if err := checkpoint(ctx, "diarize"); err != nil {
		return nil, err
	}
	segments := out.Segments
	if o.cfg.Diarization.Enabled && len(segments) > 0 {
		segments = o.diarizer.Assign(w, segments, diarizeOptions(o.cfg.Diarization))
	}
	tracker.report("diarize", "speakers assigned", percentDiarize)

	// PostProcess.
	if err := checkpoint(ctx, "process"); err != nil {
		return nil, err
	}
	if len(segments) > 0 {
		outcomes := o.textproc.ProcessSegments(segments, domain)
		for i, outcome := range outcomes {
			segments[i] = outcome.Segment
		}
	}
	tracker.report("process", "text cleaned up", percentProcess)

	// AssembleResult.
	res, err := o.assemble(req, out, segments, characteristics, engineCfg.Tier, enhanced, time.Since(started))
	if err != nil {
		return nil, err
	}
	tracker.report("done", "transcription complete", percentDone)
	return res, nil
}

// validate resolves the input into a decoded waveform plus the path the
// engine should read. Non-WAV containers are probed and their audio
// extracted into the staging directory.
func (o *Orchestrator) validate(ctx context.Context, path string) (audio.Waveform, string, func(), error) {
	if strings.TrimSpace(path) == "" {
		return audio.Waveform{}, "", nil, services.Wrap(services.ErrValidation, "validate", "input", "empty path", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return audio.Waveform{}, "", nil, services.Wrap(services.ErrNotFound, "validate", "input", path, err)
		}
		return audio.Waveform{}, "", nil, services.Wrap(services.ErrPermission, "validate", "input", path, err)
	}
	if info.Size() == 0 {
		return audio.Waveform{}, "", nil, services.Wrap(services.ErrInvalidAudio, "validate", "input", "empty file", nil)
	}
	if !media.IsSupported(path) {
		return audio.Waveform{}, "", nil, services.Wrap(services.ErrUnsupportedFormat, "validate", "input", filepath.Ext(path), nil)
	}

	wavPath := path
	cleanup := func() {}
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		probe, err := media.Inspect(ctx, o.cfg.Tools.FFprobeBinary, path, o.cfg.Workflow.ProbeTimeout())
		if err != nil {
			return audio.Waveform{}, "", nil, err
		}
		if !probe.HasAudio() {
			return audio.Waveform{}, "", nil, services.Wrap(services.ErrInvalidAudio, "validate", "probe", "no audio stream", nil)
		}
		extracted, err := media.ExtractAudio(ctx, o.cfg.Tools.FFmpegBinary, path, o.cfg.Paths.StagingDir, o.cfg.Recognition.SampleRate, o.cfg.Workflow.ExtractTimeout())
		if err != nil {
			return audio.Waveform{}, "", nil, err
		}
		wavPath = extracted
		cleanup = func() { os.Remove(extracted) }
	}

	w, err := audio.DecodeWAVFile(wavPath)
	if err != nil {
		cleanup()
		return audio.Waveform{}, "", nil, services.Wrap(services.ErrInvalidAudio, "validate", "decode", wavPath, err)
	}
	if w.Empty() {
		cleanup()
		return audio.Waveform{}, "", nil, services.Wrap(services.ErrInvalidAudio, "validate", "decode", "no samples", nil)
	}
	return w, wavPath, cleanup, nil
}

func (o *Orchestrator) writeEnhanced(sourcePath string, w audio.Waveform) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	dest := filepath.Join(o.cfg.Paths.StagingDir, stem+"_enhanced.wav")
	if err := os.MkdirAll(o.cfg.Paths.StagingDir, 0o755); err != nil {
		return "", err
	}
	if err := audio.WriteWAVFile(dest, w); err != nil {
		return "", err
	}
	return dest, nil
}

// assemble builds the final result: confidence backfill, placeholder
// synthesis for empty recognitions, metadata attachment.
func (o *Orchestrator) assemble(req Request, out *recognition.Output, segments []result.Segment, c analysis.Characteristics, tier modelconfig.Tier, enhanced bool, elapsed time.Duration) (*result.Result, error) {
	backfill := out.LanguageProbability
	if backfill > 0.95 {
		backfill = 0.95
	}
	for i := range segments {
		if segments[i].Confidence == nil {
			segments[i].Confidence = result.Float64Ptr(backfill)
		}
	}

	duration := c.Duration
	if duration <= 0 {
		duration = 0.001
	}
	if len(segments) == 0 {
		placeholder, err := result.NewSegment(0, duration, "", result.Float64Ptr(0), nil)
		if err != nil {
			return nil, services.Wrap(services.ErrRecognition, "assemble", "placeholder", "", err)
		}
		segments = []result.Segment{placeholder}
	}

	res, err := result.New(segments, out.Language, out.LanguageProbability, duration, elapsed.Seconds(), string(tier))
	if err != nil {
		return nil, services.Wrap(services.ErrRecognition, "assemble", "result", "", err)
	}
	res.WordTimestamps = out.Words
	res.SourceRef = req.Path
	res.Metadata["quality_score"] = c.QualityScore
	res.Metadata["snr_estimate_db"] = c.SNREstimate
	res.Metadata["enhanced"] = enhanced
	if req.Domain != "" {
		res.Metadata["domain"] = req.Domain
	}
	return res, nil
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTimeout, stage, "cancelled", "", err)
	}
	return nil
}

type progressTracker struct {
	fn   ProgressFunc
	last float64
}

// report clamps percent to be monotonic and forwards it.
func (t *progressTracker) report(stage, message string, percent float64) {
	if t.fn == nil {
		return
	}
	if percent < t.last {
		percent = t.last
	}
	if percent > 100 {
		percent = 100
	}
	t.last = percent
	t.fn(stage, message, percent)
}

func textprocOptions(tp config.TextProcessing) textproc.Options {
	return textproc.Options{
		NormalizeWhitespace:    tp.NormalizeWhitespace,
		FixCommonMistakes:      tp.FixCommonMistakes,
		ApplyDomainCorrections: tp.DomainCorrections,
		NormalizeNumbers:       tp.NormalizeNumbers,
		FixCapitalization:      tp.FixCapitalization,
		FixPunctuation:         tp.FixPunctuation,
		RemoveDisfluencies:     tp.RemoveDisfluencies,
		EnhanceFormatting:      tp.EnhanceFormatting,
	}
}

func enhanceOptions(e config.Enhancement) enhance.Options {
	return enhance.Options{
		NoiseReduction:    e.NoiseReduction,
		SpeechEnhancement: e.SpeechEnhancement,
		Normalization:     e.Normalization,
		Strength:          e.Strength,
		TargetLoudness:    e.TargetLoudness,
	}
}

func diarizeOptions(d config.Diarization) diarize.Options {
	return diarize.Options{
		NumSpeakers: d.NumSpeakers,
		MinSpeakers: d.MinSpeakers,
		MaxSpeakers: d.MaxSpeakers,
	}
}
