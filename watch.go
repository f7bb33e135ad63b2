package dome

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// configDebounce collapses the burst of events an editor save produces.
const configDebounce = 100 * time.Millisecond

// ConfigWatcher reloads a YAML config file whenever it changes and delivers
// each valid result on Updates. Invalid edits are logged and skipped.
type ConfigWatcher struct {
	path    string
	log     *zap.Logger
	watcher *fsnotify.Watcher
	updates chan Config
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatchConfig starts watching path. The containing directory is watched so
// that editors which replace the file on save are still seen.
func WatchConfig(path string, log *zap.Logger) (*ConfigWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch config %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch config %s: %w", path, err)
	}
	w := &ConfigWatcher{
		path:    abs,
		log:     log.With(zap.String("config", abs)),
		watcher: fw,
		updates: make(chan Config, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Updates returns the channel of reloaded configs. Only the latest
// unconsumed config is kept.
func (w *ConfigWatcher) Updates() <-chan Config {
	return w.updates
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *ConfigWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		<-w.done
		err = w.watcher.Close()
	})
	return err
}

func (w *ConfigWatcher) run() {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(configDebounce)
			} else {
				timer.Reset(configDebounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.log.Warn("config reload rejected", zap.Error(err))
		return
	}
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	w.log.Info("config reloaded")
}
