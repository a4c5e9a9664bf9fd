package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/phanxgames/colorbook"
)

// DefaultDebounce coalesces editor save bursts into one reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads the config file behind a Viper instance when it changes
// on disk and hands every valid result to a callback.
type Watcher struct {
	v        *viper.Viper
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	onError  func(error)
}

// NewWatcher watches the file v was read from. It fails when v has no
// config file.
func NewWatcher(v *viper.Viper, onChange func(*Config)) (*Watcher, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return nil, errors.New("watch config: no config file in use")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	// Watch the directory: editors often replace the file by rename.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}
	return &Watcher{
		v:        v,
		path:     abs,
		debounce: DefaultDebounce,
		watcher:  fw,
		onChange: onChange,
		onError:  func(error) {},
	}, nil
}

// SetDebounce sets the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// SetOnError sets the callback for reload failures. Invalid files are
// reported and the previous configuration stays in effect.
func (w *Watcher) SetOnError(fn func(error)) {
	if fn == nil {
		fn = func(error) {}
	}
	w.onError = fn
}

// Run delivers reloads until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			colorbook.Logger().Warn("config: watch error", "error", err)
			w.onError(err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) reload() {
	if err := w.v.ReadInConfig(); err != nil {
		colorbook.Logger().Warn("config: reload failed", "path", w.path, "error", err)
		w.onError(fmt.Errorf("reload config: %w", err))
		return
	}
	cfg, err := Load(w.v)
	if err != nil {
		colorbook.Logger().Warn("config: reload rejected", "path", w.path, "error", err)
		w.onError(err)
		return
	}
	colorbook.Logger().Info("config: reloaded", "path", w.path)
	w.onChange(cfg)
}
