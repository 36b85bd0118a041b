package completion

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultReloadDebounce = 100 * time.Millisecond

// SpecDirWatcher reloads a drop-in completion directory when one of its
// YAML files is written or created. Only the top level of the directory
// is watched. Commands whose file is deleted keep their last spec.
type SpecDirWatcher struct {
	dir      string
	registry *Registry
	logger   *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	reloads int
}

// WatchSpecDir starts watching dir. Call Close to stop.
func WatchSpecDir(dir string, registry *Registry, logger *zap.Logger) (*SpecDirWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &SpecDirWatcher{
		dir:      dir,
		registry: registry,
		logger:   logger,
		debounce: defaultReloadDebounce,
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *SpecDirWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("completion directory watcher error", zap.String("dir", w.dir), zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// schedule coalesces bursts of events, e.g. an editor's write and chmod,
// into one reload.
func (w *SpecDirWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *SpecDirWatcher) reload() {
	w.mu.Lock()
	w.timer = nil
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	n, err := NewSpecDirLoader(os.DirFS(w.dir)).Register(w.registry)
	if err != nil {
		w.logger.Warn("failed to reload completion directory", zap.String("dir", w.dir), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.logger.Debug("reloaded completion directory", zap.String("dir", w.dir), zap.Int("commands", n))
}

// Reloads returns how many reloads have succeeded.
func (w *SpecDirWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *SpecDirWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
