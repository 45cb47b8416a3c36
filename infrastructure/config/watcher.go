package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher calls onChange after a watched file is written or replaced. Bursts
// of events are collapsed into one call.
type Watcher struct {
	path     string
	onChange func() error
	debounce time.Duration
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher starts watching path. The parent directory is watched so that
// editors which replace the file by rename are still noticed.
func NewWatcher(path string, onChange func() error, logger *zap.Logger) (*Watcher, error) {
	return newWatcher(path, onChange, defaultDebounce, logger)
}

func newWatcher(path string, onChange func() error, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: debounce,
		logger:   logger,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Watching file for changes", zap.String("path", abs))
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("Watched file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.fire)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) fire() {
	select {
	case <-w.stopCh:
		return
	default:
	}
	if err := w.onChange(); err != nil {
		w.logger.Error("Reload after file change failed",
			zap.String("path", w.path),
			zap.Error(err),
		)
		return
	}
	w.logger.Info("Reloaded after file change", zap.String("path", w.path))
}

// Close stops watching
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.done
	return nil
}
