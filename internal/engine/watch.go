package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long the watcher waits for writes to settle.
const debounce = 100 * time.Millisecond

// Watch converts inputs, then converts again whenever a package document
// under them is written or created, until ctx is done. Inputs must be local
// paths. Each run's report is passed to onReport.
func (e *Engine) Watch(ctx context.Context, inputs []string, onReport func(*Report, error)) error {
	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		report, err := e.Convert(ctx, inputs)
		onReport(report, err)
	}
	rebuild()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, input := range inputs {
		if err := watchPath(watcher, input); err != nil {
			return fmt.Errorf("failed to watch %s: %w", input, err)
		}
	}
	e.logger.Info("watching for changes", "inputs", inputs)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchPath(watcher, event.Name)
					continue
				}
			}
			if !IsPackageFile(filepath.Base(event.Name)) {
				continue
			}

			e.logger.Debug("change detected", "file", event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, rebuild)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchPath adds a directory tree to the watcher, or the directory holding
// a file.
func watchPath(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && len(info.Name()) > 0 && info.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
