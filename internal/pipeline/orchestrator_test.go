package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"xscribe/internal/config"
	"xscribe/internal/logging"
	"xscribe/internal/modelconfig"
	"xscribe/internal/recognition"
	"xscribe/internal/result"
	"xscribe/internal/services"
	"xscribe/internal/testsupport"
)

type stubEngine struct {
	tier   modelconfig.Tier
	out    *recognition.Output
	err    error
	calls  int
	closed bool
}

func (s *stubEngine) Transcribe(_ context.Context, _ string, _ recognition.Options) (*recognition.Output, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}
func (s *stubEngine) Tier() modelconfig.Tier { return s.tier }
func (s *stubEngine) Close() error           { s.closed = true; return nil }

func stubOutput() *recognition.Output {
	first, _ := result.NewSegment(0, 0.5, "hello there", result.Float64Ptr(0.9), nil)
	second, _ := result.NewSegment(0.5, 1.0, "general remarks", nil, nil)
	return &recognition.Output{
		Segments:            []result.Segment{first, second},
		Language:            "en",
		LanguageProbability: 0.97,
		Words: []result.WordTimestamp{
			{Word: "hello", Start: 0, End: 0.2},
		},
	}
}

func newFixture(t *testing.T, engine *stubEngine) (*Orchestrator, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Diarization.Enabled = false
	cache := recognition.NewCache(func(tier modelconfig.Tier) (recognition.Engine, error) {
		engine.tier = tier
		return engine, nil
	}, logging.NewNop())
	return New(cfg, cache, logging.NewNop()), cfg
}

func wavInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.wav")
	testsupport.WriteToneWAV(t, path)
	return path
}

func TestTranscribeHappyPath(t *testing.T) {
	engine := &stubEngine{out: stubOutput()}
	orch, _ := newFixture(t, engine)

	var percents []float64
	res, err := orch.Transcribe(context.Background(), Request{Path: wavInput(t)}, func(_, _ string, percent float64) {
		percents = append(percents, percent)
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("engine calls %d", engine.calls)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segment count %d", len(res.Segments))
	}
	if res.Language != "en" {
		t.Fatalf("language %q", res.Language)
	}
	if res.EngineUsed == "" {
		t.Fatal("engine tier missing from result")
	}
	if _, ok := res.Metadata["quality_score"]; !ok {
		t.Fatal("quality score metadata missing")
	}

	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("progress must end at 100: %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress not monotonic: %v", percents)
		}
	}
}

func TestTranscribeBackfillsConfidence(t *testing.T) {
	engine := &stubEngine{out: stubOutput()}
	orch, _ := newFixture(t, engine)

	res, err := orch.Transcribe(context.Background(), Request{Path: wavInput(t)}, nil)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	second := res.Segments[1]
	if second.Confidence == nil {
		t.Fatal("missing confidence must be backfilled")
	}
	// min(language probability 0.97, cap 0.95)
	if *second.Confidence != 0.95 {
		t.Fatalf("backfilled confidence %f, want 0.95", *second.Confidence)
	}
	if *res.Segments[0].Confidence != 0.9 {
		t.Fatal("existing confidence must not be overwritten")
	}
}

func TestTranscribeSynthesizesPlaceholder(t *testing.T) {
	engine := &stubEngine{out: &recognition.Output{Language: "en", LanguageProbability: 0.5}}
	orch, _ := newFixture(t, engine)

	res, err := orch.Transcribe(context.Background(), Request{Path: wavInput(t)}, nil)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(res.Segments) != 1 {
		t.Fatalf("placeholder count %d", len(res.Segments))
	}
	placeholder := res.Segments[0]
	if placeholder.Text != "" || placeholder.Start != 0 {
		t.Fatalf("placeholder %+v", placeholder)
	}
	if placeholder.Confidence == nil || *placeholder.Confidence != 0 {
		t.Fatal("placeholder confidence must be zero")
	}
	if placeholder.End <= 0 {
		t.Fatal("placeholder must span the audio duration")
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	orch, _ := newFixture(t, &stubEngine{out: stubOutput()})
	_, err := orch.Transcribe(context.Background(), Request{Path: "/no/such/file.wav"}, nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTranscribeUnsupportedFormat(t *testing.T) {
	orch, _ := newFixture(t, &stubEngine{out: stubOutput()})
	path := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteToneWAV(t, path)

	_, err := orch.Transcribe(context.Background(), Request{Path: path}, nil)
	if !errors.Is(err, services.ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestTranscribeEngineFailure(t *testing.T) {
	engine := &stubEngine{err: services.Wrap(services.ErrRecognition, "recognize", "transcribe", "decode failed", nil)}
	orch, _ := newFixture(t, engine)

	_, err := orch.Transcribe(context.Background(), Request{Path: wavInput(t)}, nil)
	if !errors.Is(err, services.ErrRecognition) {
		t.Fatalf("want ErrRecognition, got %v", err)
	}
}

func TestTranscribeCancelledContext(t *testing.T) {
	engine := &stubEngine{out: stubOutput()}
	orch, _ := newFixture(t, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := orch.Transcribe(ctx, Request{Path: wavInput(t)}, nil)
	if err == nil {
		t.Fatal("cancelled context must fail")
	}
	if engine.calls != 0 {
		t.Fatal("engine must not run after cancellation")
	}
}

func TestTranscribeCPUForcesFullPrecision(t *testing.T) {
	captured := recognition.Options{}
	engine := &optsCaptureEngine{out: stubOutput(), captured: &captured}
	cfg := testsupport.NewConfig(t)
	cfg.Diarization.Enabled = false
	cfg.Recognition.CUDAEnabled = false
	cache := recognition.NewCache(func(tier modelconfig.Tier) (recognition.Engine, error) {
		engine.tier = tier
		return engine, nil
	}, logging.NewNop())
	orch := New(cfg, cache, logging.NewNop())

	if _, err := orch.Transcribe(context.Background(), Request{Path: wavInput(t)}, nil); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if captured.Config.FP16 {
		t.Fatal("CPU path must force FP32 decoding")
	}
	if !captured.WordTimestamps {
		t.Fatal("recognition must request word timestamps")
	}
}

func TestTranscribePinnedTier(t *testing.T) {
	captured := recognition.Options{}
	engine := &optsCaptureEngine{out: stubOutput(), captured: &captured}
	cfg := testsupport.NewConfig(t)
	cfg.Diarization.Enabled = false
	cache := recognition.NewCache(func(tier modelconfig.Tier) (recognition.Engine, error) {
		engine.tier = tier
		return engine, nil
	}, logging.NewNop())
	orch := New(cfg, cache, logging.NewNop())

	req := Request{Path: wavInput(t), Tier: modelconfig.TierMedium}
	if _, err := orch.Transcribe(context.Background(), req, nil); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if captured.Config.Tier != modelconfig.TierMedium {
		t.Fatalf("tier %s, want pinned medium", captured.Config.Tier)
	}
}

type optsCaptureEngine struct {
	tier     modelconfig.Tier
	out      *recognition.Output
	captured *recognition.Options
}

func (s *optsCaptureEngine) Transcribe(_ context.Context, _ string, opts recognition.Options) (*recognition.Output, error) {
	*s.captured = opts
	return s.out, nil
}
func (s *optsCaptureEngine) Tier() modelconfig.Tier { return s.tier }
func (s *optsCaptureEngine) Close() error           { return nil }
