package presenter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/domain/pipeline"
)

// InpainterTarget receives a rebuilt backend.
type InpainterTarget interface {
	SetInpainter(inp pipeline.Inpainter)
}

// SettingsWatcher picks up settings file changes, rebuilds the backend and
// applies the new values on the UI thread.
type SettingsWatcher struct {
	Path   string
	Logger *slog.Logger
	Target InpainterTarget
	// Build turns settings into a backend.
	Build func(*config.Config, *slog.Logger) (pipeline.Inpainter, error)
	// Apply, when set, receives the reloaded settings after the backend swap.
	Apply func(*config.Config)
	// Watch starts file notifications; defaults to config.Watch.
	Watch func(path string, logger *slog.Logger, onChange func(*config.Config)) (func(), error)

	mu      sync.Mutex
	pending *config.Config
	stop    func()
}

// NewSettingsWatcher constructs a watcher for path.
func NewSettingsWatcher(path string, logger *slog.Logger, target InpainterTarget, build func(*config.Config, *slog.Logger) (pipeline.Inpainter, error), apply func(*config.Config)) *SettingsWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SettingsWatcher{Path: path, Logger: logger, Target: target, Build: build, Apply: apply, Watch: config.Watch}
}

// Start begins watching. Calling Start twice is a no-op.
func (w *SettingsWatcher) Start() error {
	if w == nil || w.Path == "" {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return nil
	}
	if w.Watch == nil {
		w.Watch = config.Watch
	}
	stop, err := w.Watch(w.Path, w.Logger, w.onChange)
	if err != nil {
		return err
	}
	w.stop = stop
	return nil
}

// Stop ends watching.
func (w *SettingsWatcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// onChange runs on the watcher goroutine; only the latest settings are kept.
func (w *SettingsWatcher) onChange(cfg *config.Config) {
	w.mu.Lock()
	w.pending = cfg
	w.mu.Unlock()
}

// Tick applies pending settings.
func (w *SettingsWatcher) Tick(now time.Time) {
	if w == nil {
		return
	}
	w.mu.Lock()
	cfg := w.pending
	w.pending = nil
	w.mu.Unlock()
	if cfg == nil {
		return
	}
	if w.Build != nil && w.Target != nil {
		inp, err := w.Build(cfg, w.Logger)
		if err != nil {
			w.Logger.Error("backend rebuild failed; keeping previous backend", "error", err)
		} else {
			w.Target.SetInpainter(inp)
			w.Logger.Info("backend updated", "backend", cfg.Backend, "api_url", cfg.APIURL)
		}
	}
	if w.Apply != nil {
		w.Apply(cfg)
	}
}
