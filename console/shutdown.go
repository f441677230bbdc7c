package console

import (
	"io"
	"log/slog"
	"sync"
)

// Shutdown collects release actions as resources are acquired and runs
// them in reverse acquisition order. Every action runs at most once, no
// matter how many times Run is called or how the program unwinds.
type Shutdown struct {
	mu      sync.Mutex
	actions []*releaseAction
	logger  *slog.Logger
}

type releaseAction struct {
	name string
	once sync.Once
	fn   func() error
}

// NewShutdown returns an empty registry. Release failures are reported
// through logger.
func NewShutdown(logger *slog.Logger) *Shutdown {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shutdown{logger: logger}
}

// Register adds a release action for a just-acquired resource. The name
// only shows up in logs.
func (s *Shutdown) Register(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, &releaseAction{name: name, fn: fn})
}

// Run releases everything registered so far, newest first. Actions that
// already ran are skipped, so calling Run again is safe.
func (s *Shutdown) Run() {
	s.mu.Lock()
	actions := make([]*releaseAction, len(s.actions))
	copy(actions, s.actions)
	s.mu.Unlock()

	for i := len(actions) - 1; i >= 0; i-- {
		action := actions[i]
		action.once.Do(func() {
			if err := action.fn(); err != nil {
				s.logger.Error("Release failed", "resource", action.name, "error", err)
			}
		})
	}
}
