package modelconfig_test

import (
	"fmt"
	"testing"

	"xscribe/internal/analysis"
	"xscribe/internal/logging"
	"xscribe/internal/modelconfig"
)

func characteristics(quality, snr, durationMinutes float64) analysis.Characteristics {
	return analysis.Characteristics{
		QualityScore: quality,
		SNREstimate:  snr,
		Duration:     durationMinutes * 60,
	}
}

func TestSelectSpeedDurationBuckets(t *testing.T) {
	s := modelconfig.New(logging.NewNop())
	cases := []struct {
		minutes float64
		want    modelconfig.Tier
	}{
		{3, modelconfig.TierTiny},
		{10, modelconfig.TierBase},
		{40, modelconfig.TierSmall},
	}
	for _, tc := range cases {
		cfg := s.Select(characteristics(85, 25, tc.minutes), modelconfig.PrioritySpeed, "")
		if cfg.Tier != tc.want {
			t.Fatalf("speed %v min: tier %s, want %s", tc.minutes, cfg.Tier, tc.want)
		}
	}
}

func TestSelectAccuracyTier(t *testing.T) {
	s := modelconfig.New(logging.NewNop())

	cfg := s.Select(characteristics(85, 25, 20), modelconfig.PriorityAccuracy, "")
	if cfg.Tier != modelconfig.TierMedium {
		t.Fatalf("good short audio: tier %s, want medium", cfg.Tier)
	}

	cfg = s.Select(characteristics(85, 25, 45), modelconfig.PriorityAccuracy, "")
	if cfg.Tier != modelconfig.TierLarge {
		t.Fatalf("long audio: tier %s, want large", cfg.Tier)
	}

	cfg = s.Select(characteristics(70, 25, 10), modelconfig.PriorityAccuracy, "")
	if cfg.Tier != modelconfig.TierLarge {
		t.Fatalf("mediocre audio: tier %s, want large", cfg.Tier)
	}
}

func TestSelectBalancedQualityBands(t *testing.T) {
	s := modelconfig.New(logging.NewNop())
	cases := []struct {
		quality float64
		want    modelconfig.Tier
	}{
		{95, modelconfig.TierTiny},
		{75, modelconfig.TierBase},
		{55, modelconfig.TierSmall},
		{30, modelconfig.TierMedium},
	}
	for _, tc := range cases {
		cfg := s.Select(characteristics(tc.quality, 25, 10), modelconfig.PriorityBalanced, "")
		if cfg.Tier != tc.want {
			t.Fatalf("balanced quality %v: tier %s, want %s", tc.quality, cfg.Tier, tc.want)
		}
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	s := modelconfig.New(logging.NewNop())
	c := characteristics(72, 18, 12)
	first := s.Select(c, modelconfig.PriorityBalanced, "technical")
	second := s.Select(c, modelconfig.PriorityBalanced, "technical")
	if first != second {
		t.Fatalf("selection not deterministic: %+v vs %+v", first, second)
	}
}

func TestNoisyOverride(t *testing.T) {
	s := modelconfig.New(logging.NewNop())

	clean := s.Select(characteristics(85, 25, 10), modelconfig.PriorityBalanced, "")
	if !clean.ConditionOnPreviousText {
		t.Fatal("clean audio should keep cross-segment conditioning")
	}

	noisy := s.Select(characteristics(45, 25, 10), modelconfig.PriorityBalanced, "")
	if noisy.ConditionOnPreviousText {
		t.Fatal("noisy audio must disable cross-segment conditioning")
	}
	if noisy.Temperature != 0.2 || noisy.NoSpeechThreshold != 0.4 {
		t.Fatalf("noisy preset not applied: %+v", noisy)
	}

	lowSNR := s.Select(characteristics(85, 5, 10), modelconfig.PriorityBalanced, "")
	if lowSNR.ConditionOnPreviousText {
		t.Fatal("low SNR must also trigger the noisy preset")
	}
}

func TestLongAudioCapsSearchBreadth(t *testing.T) {
	s := modelconfig.New(logging.NewNop())
	cfg := s.Select(characteristics(85, 25, 90), modelconfig.PriorityAccuracy, "")
	if cfg.BeamSize > 5 || cfg.BestOf > 5 {
		t.Fatalf("long audio should cap beam/best_of at 5, got beam=%d best_of=%d", cfg.BeamSize, cfg.BestOf)
	}
}

func TestDomainPromptAttached(t *testing.T) {
	s := modelconfig.New(logging.NewNop())
	cfg := s.Select(characteristics(85, 25, 10), modelconfig.PriorityBalanced, "medical")
	if cfg.InitialPrompt == "" {
		t.Fatal("medical domain should attach a priming prompt")
	}
	if other := s.Select(characteristics(85, 25, 10), modelconfig.PriorityBalanced, "unknown"); other.InitialPrompt != "" {
		t.Fatal("unknown domain should not attach a prompt")
	}
}

func TestHistoryCapAndBestObserved(t *testing.T) {
	s := modelconfig.New(logging.NewNop())

	if best := s.BestObserved(); best != nil {
		t.Fatal("BestObserved should be nil with no history")
	}

	for i := 0; i < 120; i++ {
		tier := modelconfig.TierBase
		if i%2 == 0 {
			tier = modelconfig.TierSmall
		}
		s.Observe(modelconfig.Record{
			Config:         modelconfig.Config{Tier: tier, BeamSize: 1 + i%5},
			ProcessingTime: float64(10 + i%7),
			AudioDuration:  60,
			QualityMetrics: map[string]float64{"confidence": 0.5 + float64(i%5)/10},
		})
	}

	if got := s.HistoryLen(); got != 100 {
		t.Fatalf("history length %d, want cap of 100", got)
	}

	best := s.BestObserved()
	if best == nil {
		t.Fatal("expected best-observed configs after sufficient history")
	}
	for tier, cfg := range best {
		if cfg.Tier != tier {
			t.Fatalf("best config for %s carries tier %s", tier, cfg.Tier)
		}
	}
}

func TestBestObservedRequiresSamplesPerTier(t *testing.T) {
	s := modelconfig.New(logging.NewNop())
	// 10 records on one tier, 1 straggler on another.
	for i := 0; i < 10; i++ {
		s.Observe(modelconfig.Record{
			Config:         modelconfig.Config{Tier: modelconfig.TierBase},
			ProcessingTime: 10,
			AudioDuration:  60,
		})
	}
	s.Observe(modelconfig.Record{
		Config:         modelconfig.Config{Tier: modelconfig.TierLarge},
		ProcessingTime: 10,
		AudioDuration:  60,
	})

	best := s.BestObserved()
	if best == nil {
		t.Fatal("expected feedback with 11 records")
	}
	if _, ok := best[modelconfig.TierLarge]; ok {
		t.Fatal("tier with fewer than 3 samples should be excluded")
	}
	if _, ok := best[modelconfig.TierBase]; !ok {
		t.Fatal("tier with enough samples should be included")
	}
}

func TestParsePriority(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want modelconfig.Priority
	}{
		{"speed", modelconfig.PrioritySpeed},
		{"accuracy", modelconfig.PriorityAccuracy},
		{"", modelconfig.PriorityBalanced},
		{"warp", modelconfig.PriorityBalanced},
	} {
		if got := modelconfig.ParsePriority(tc.in); got != tc.want {
			t.Fatalf("ParsePriority(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestTierOrdering(t *testing.T) {
	tiers := modelconfig.Tiers()
	for i := 1; i < len(tiers); i++ {
		if tiers[i-1].Rank() >= tiers[i].Rank() {
			t.Fatalf("tier order broken at %d", i)
		}
	}
	if modelconfig.Tier("huge").Valid() {
		t.Fatal("unknown tier should be invalid")
	}
	_ = fmt.Sprintf("%s", tiers)
}
