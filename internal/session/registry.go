// Package session tracks the active transcription run so shutdown paths
// can capture its state. The registry replaces an implicit global
// back-reference with an owned object injected where emergency-save
// capability is needed.
package session

import (
	"errors"
	"log/slog"
	"sync"

	"xscribe/internal/logging"
)

// Session is a live run whose state can be captured on teardown.
type Session interface {
	// Describe returns a short human-readable label for the run.
	Describe() string
	// EmergencySave persists whatever state the run can still save.
	EmergencySave() error
}

// ErrSessionActive indicates a second session tried to register while
// one is already running.
var ErrSessionActive = errors.New("a session is already active")

// Registry holds at most one active session. Register at run start,
// Clear at run end; shutdown hooks call EmergencySave on whatever is
// registered at that moment.
type Registry struct {
	mu     sync.Mutex
	logger *slog.Logger
	active Session
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{logger: logging.WithComponent(logger, "session")}
}

// Register installs s as the active session. At most one session may be
// active; a second registration is a caller error.
func (r *Registry) Register(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return ErrSessionActive
	}
	r.active = s
	return nil
}

// Clear removes the active session. Safe to call when none is
// registered.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = nil
}

// Active returns the registered session, or nil.
func (r *Registry) Active() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// EmergencySave captures the active session's state, if any. Failures
// are logged, not returned; teardown must proceed regardless.
func (r *Registry) EmergencySave() {
	s := r.Active()
	if s == nil {
		return
	}
	if err := s.EmergencySave(); err != nil {
		r.logger.Error("emergency save failed",
			logging.String("session", s.Describe()),
			logging.Error(err),
		)
		return
	}
	r.logger.Info("session state saved", logging.String("session", s.Describe()))
}
