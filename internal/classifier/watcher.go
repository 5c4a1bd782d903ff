package classifier

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"litrecord/internal/domain"
)

// Watcher reloads a rule file into a Holder whenever the file changes.
type Watcher struct {
	path     string
	holder   *Holder
	registry *domain.CategoryRegistry
	debounce time.Duration
	onReload func(*Classifier, error)
}

// NewWatcher creates a Watcher for path.
func NewWatcher(path string, holder *Holder, registry *domain.CategoryRegistry) *Watcher {
	return &Watcher{
		path:     path,
		holder:   holder,
		registry: registry,
		debounce: 100 * time.Millisecond,
	}
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(fn func(*Classifier, error)) {
	w.onReload = fn
}

// Reload reads the rule file and swaps it in. On error the current table is
// kept.
func (w *Watcher) Reload() error {
	c, err := LoadFile(w.path, w.registry)
	if err == nil {
		w.holder.Swap(c)
		log.Printf("classifier.Watcher: loaded %d rules from %s", len(c.Rules()), w.path)
	} else {
		log.Printf("classifier.Watcher: reload of %s failed, keeping previous rules: %v", w.path, err)
	}
	if w.onReload != nil {
		w.onReload(c, err)
	}
	return err
}

// Run watches the rule file's directory until ctx is canceled. Editors often
// replace files by rename, so the directory is watched rather than the file.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating rule watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	target := filepath.Clean(w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = w.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("classifier.Watcher: watch error: %v", err)
		}
	}
}
