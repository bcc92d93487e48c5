// Package batch runs the queued files through the transcription
// pipeline on one dedicated worker goroutine. One file's failure never
// aborts the batch; only an engine that cannot be constructed at all
// does.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"xscribe/internal/config"
	"xscribe/internal/logging"
	"xscribe/internal/modelconfig"
	"xscribe/internal/notifications"
	"xscribe/internal/pipeline"
	"xscribe/internal/queue"
	"xscribe/internal/recognition"
	"xscribe/internal/result"
	"xscribe/internal/services"
	"xscribe/internal/session"
)

const defaultPauseLatency = 200 * time.Millisecond

// Transcriber runs the per-file pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*result.Result, error)
}

// Scheduler drains the pending queue through the pipeline. At most one
// batch runs at a time; starting a second while one is active is a
// caller error. The engine tier is fixed for the whole run so a single
// cached engine instance serves every file.
type Scheduler struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *queue.Store
	transcriber Transcriber
	cache       *recognition.Cache
	notifier    notifications.Service
	sessions    *session.Registry

	mu      sync.Mutex
	running bool
	paused  bool
	stop    chan struct{}
	done    chan struct{}
	runID   string
}

// New wires a scheduler. The notifier and session registry are
// optional; nil disables them.
func New(cfg *config.Config, store *queue.Store, transcriber Transcriber, cache *recognition.Cache, notifier notifications.Service, sessions *session.Registry, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "batch"),
		store:       store,
		transcriber: transcriber,
		cache:       cache,
		notifier:    notifier,
		sessions:    sessions,
	}
}

// Start launches the worker over the current pending queue. It returns
// once the engine is warmed up and the worker is running; failure to
// construct the engine aborts the whole batch before any file starts.
func (s *Scheduler) Start(ctx context.Context, listener Listener) error {
	if listener == nil {
		listener = NopListener{}
	}

	// The run is claimed before the engine warm-up; a concurrent Start
	// must fail here, not race the channel swap below.
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return services.Wrap(services.ErrValidation, "batch", "start", "a batch is already running", nil)
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.running = true
	s.stop = stop
	s.done = done
	s.runID = uuid.NewString()
	s.mu.Unlock()

	// abort releases the claim and unblocks any Wait already parked on
	// the done channel.
	abort := func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}

	files, err := s.store.List(ctx, queue.StatusPending)
	if err != nil {
		abort()
		return err
	}
	if len(files) == 0 {
		abort()
		return services.Wrap(services.ErrValidation, "batch", "start", "queue has no pending files", nil)
	}

	tier := batchTier(modelconfig.ParsePriority(s.cfg.Recognition.Priority))
	if _, err := s.cache.Acquire(tier); err != nil {
		abort()
		return services.Wrap(services.ErrRecognition, "batch", "setup", "engine construction failed", err)
	}
	s.cache.Release()

	if s.sessions != nil {
		if err := s.sessions.Register(s); err != nil {
			abort()
			return services.Wrap(services.ErrValidation, "batch", "start", "session registration", err)
		}
	}

	go s.run(ctx, files, tier, listener, stop, done)
	return nil
}

// Stop requests cancellation. It is honored only between files: the
// file in flight runs to completion or failure. Safe to call more than
// once or before any batch has started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Pause holds the worker before the next file starts.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume lifts a pause. The worker notices within the configured pause
// latency.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Wait blocks until the current batch finishes. Returns immediately
// when none is running.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether a batch worker is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Paused reports whether the worker is holding between files.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Describe identifies the run for session bookkeeping.
func (s *Scheduler) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "batch " + s.runID
}

// EmergencySave returns in-flight queue entries to pending so an
// interrupted batch resumes cleanly.
func (s *Scheduler) EmergencySave() error {
	_, err := s.store.ResetStuck(context.Background())
	return err
}

func (s *Scheduler) run(ctx context.Context, files []*queue.File, tier modelconfig.Tier, listener Listener, stop, done chan struct{}) {
	started := time.Now()
	processed, failed := 0, 0

	defer func() {
		if s.sessions != nil {
			s.sessions.Clear()
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		listener.BatchCompleted()
		close(done)
	}()

	s.logger.Info("batch started",
		logging.Int("files", len(files)),
		logging.String(logging.FieldEngine, string(tier)),
	)
	if s.cfg.Notifications.Queue && s.notifier != nil {
		if err := s.notifier.NotifyBatchStarted(ctx, len(files)); err != nil {
			s.logger.Warn("batch start notification failed", logging.Error(err))
		}
	}

	for i, file := range files {
		if interrupted(ctx, stop) {
			break
		}
		if !s.waitWhilePaused(ctx, stop) {
			break
		}
		if interrupted(ctx, stop) {
			break
		}
		if s.processFile(ctx, i, file, tier, listener) {
			processed++
		} else {
			failed++
		}
	}

	s.logger.Info("batch finished",
		logging.Int("processed", processed),
		logging.Int("failed", failed),
		logging.Duration(logging.FieldDuration, time.Since(started)),
	)
	if s.cfg.Notifications.Queue && s.notifier != nil {
		if err := s.notifier.NotifyBatchCompleted(ctx, processed, failed, time.Since(started)); err != nil {
			s.logger.Warn("batch completion notification failed", logging.Error(err))
		}
	}
}

func (s *Scheduler) processFile(ctx context.Context, index int, file *queue.File, tier modelconfig.Tier, listener Listener) bool {
	name := filepath.Base(file.Path)
	listener.FileStarted(index, name)
	if err := s.store.MarkProcessing(ctx, file.ID); err != nil {
		s.logger.Warn("queue entry not marked processing",
			logging.Int64("entry", file.ID),
			logging.Error(err),
		)
	}

	progress := func(stage, message string, percent float64) {
		if err := s.store.UpdateProgress(ctx, file.ID, stage, percent); err != nil {
			s.logger.Debug("progress not persisted", logging.Error(err))
		}
		listener.FileProgress(index, stage, message, percent)
	}

	res, err := s.transcriber.Transcribe(ctx, pipeline.Request{Path: file.Path, Tier: tier}, progress)
	if err != nil {
		if errors.Is(err, services.ErrOutOfMemory) {
			// A fresh engine gives the remaining files a clean slate.
			s.logger.Warn("engine out of memory, dropping cached engine",
				logging.String(logging.FieldFile, name),
			)
			s.cache.Drop()
		}
		return s.fail(ctx, index, file, name, err, listener)
	}

	resultPath := filepath.Join(s.cfg.Paths.OutputDir, resultFileName(file.Path))
	if err := result.Save(resultPath, res); err != nil {
		return s.fail(ctx, index, file, name, err, listener)
	}

	if err := s.store.MarkCompleted(ctx, file.ID, resultPath); err != nil {
		s.logger.Warn("queue entry not marked completed",
			logging.Int64("entry", file.ID),
			logging.Error(err),
		)
	}
	listener.FileCompleted(index, res)
	s.logger.Info("file transcribed",
		logging.Int(logging.FieldFileIndex, index),
		logging.String(logging.FieldFile, name),
	)
	if s.cfg.Notifications.Queue && s.notifier != nil {
		if err := s.notifier.NotifyFileCompleted(ctx, name); err != nil {
			s.logger.Warn("file completion notification failed", logging.Error(err))
		}
	}
	return true
}

func (s *Scheduler) fail(ctx context.Context, index int, file *queue.File, name string, cause error, listener Listener) bool {
	message := cause.Error()
	if err := s.store.MarkFailed(ctx, file.ID, message); err != nil {
		s.logger.Warn("queue entry not marked failed",
			logging.Int64("entry", file.ID),
			logging.Error(err),
		)
	}
	listener.FileFailed(index, message)
	s.logger.Error("file failed",
		logging.Int(logging.FieldFileIndex, index),
		logging.String(logging.FieldFile, name),
		logging.Error(cause),
	)
	if s.cfg.Notifications.Errors && s.notifier != nil {
		if err := s.notifier.NotifyError(ctx, cause, name); err != nil {
			s.logger.Warn("error notification failed", logging.Error(err))
		}
	}
	return false
}

// waitWhilePaused holds until the pause flag clears. Returns false when
// a stop arrives while paused.
func (s *Scheduler) waitWhilePaused(ctx context.Context, stop chan struct{}) bool {
	latency := time.Duration(s.cfg.Workflow.PauseLatencyMillis) * time.Millisecond
	if latency <= 0 {
		latency = defaultPauseLatency
	}
	for s.Paused() {
		select {
		case <-stop:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(latency):
		}
	}
	return true
}

func interrupted(ctx context.Context, stop chan struct{}) bool {
	select {
	case <-stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// batchTier maps the configured priority to the single tier used for
// the whole run. Per-file tier selection is disabled in batch mode so
// the engine loads once.
func batchTier(priority modelconfig.Priority) modelconfig.Tier {
	switch priority {
	case modelconfig.PrioritySpeed:
		return modelconfig.TierBase
	case modelconfig.PriorityAccuracy:
		return modelconfig.TierLarge
	default:
		return modelconfig.TierSmall
	}
}

func resultFileName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}
