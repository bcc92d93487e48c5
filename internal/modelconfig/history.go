package modelconfig

const (
	historyCap = 100
	// Feedback kicks in once enough history exists, looking at a recent
	// window with a minimum sample count per tier.
	historyMinTotal   = 10
	historyWindow     = 20
	historyMinPerTier = 3
)

// Record captures one completed attempt for adaptive feedback.
type Record struct {
	Config         Config
	ProcessingTime float64 // seconds
	AudioDuration  float64 // seconds
	QualityMetrics map[string]float64
}

// Observe appends a performance record, evicting the oldest entry past the
// cap.
func (s *Selector) Observe(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, rec)
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}
}

// HistoryLen returns the number of retained records.
func (s *Selector) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// BestObserved recomputes the best observed config per tier from the most
// recent records, scoring each by realtime factor times mean quality
// metric. The result is advisory: Select never consults it automatically.
// Returns nil until enough history has accumulated.
func (s *Selector) BestObserved() map[Tier]Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < historyMinTotal {
		return nil
	}
	window := s.history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	byTier := make(map[Tier][]Record)
	for _, rec := range window {
		byTier[rec.Config.Tier] = append(byTier[rec.Config.Tier], rec)
	}

	best := make(map[Tier]Config)
	for tier, recs := range byTier {
		if len(recs) < historyMinPerTier {
			continue
		}
		bestScore := -1.0
		var bestCfg Config
		for _, rec := range recs {
			score := recordScore(rec)
			if score > bestScore {
				bestScore = score
				bestCfg = rec.Config
			}
		}
		if bestScore >= 0 {
			best[tier] = bestCfg
		}
	}
	if len(best) == 0 {
		return nil
	}
	return best
}

// recordScore favors configs that processed faster than realtime on
// well-scored audio: (duration/time) x mean(quality metrics).
func recordScore(rec Record) float64 {
	if rec.ProcessingTime <= 0 || rec.AudioDuration <= 0 {
		return 0
	}
	speed := rec.AudioDuration / rec.ProcessingTime
	if len(rec.QualityMetrics) == 0 {
		return speed
	}
	sum := 0.0
	for _, v := range rec.QualityMetrics {
		sum += v
	}
	return speed * (sum / float64(len(rec.QualityMetrics)))
}
