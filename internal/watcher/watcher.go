package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

type implWatcher struct {
	opts    Options
	logger  logger.Logger
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Start handles files until ctx ends, then waits for running handlers.
// Handler errors are logged and never stop the watcher.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.opts.MaxConcurrent, w.opts.InputDir)

	var g errgroup.Group
	g.SetLimit(w.opts.MaxConcurrent)
	defer func() {
		w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
		_ = g.Wait()
		w.logger.Info(ctx, "File watcher stopped")
	}()

	if w.opts.ProcessExisting {
		existing, err := w.existingFiles()
		if err != nil {
			return fmt.Errorf("scan input dir: %w", err)
		}
		for _, path := range existing {
			w.dispatch(ctx, &g, path, 0)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.opts.Accept(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}
			w.logger.Info(ctx, "New input detected: %s", event.Name)
			w.dispatch(ctx, &g, event.Name, w.opts.SettleDelay)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch runs the handler for path unless it is already running.
// It blocks while MaxConcurrent handlers are busy.
func (w *implWatcher) dispatch(ctx context.Context, g *errgroup.Group, path string, settle time.Duration) {
	if !w.claim(path) {
		return
	}

	g.Go(func() error {
		defer w.release(path)

		if settle > 0 {
			select {
			case <-time.After(settle):
			case <-ctx.Done():
				return nil
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		if err := w.opts.Handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
		return nil
	})
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[path]; busy {
		return false
	}
	w.inFlight[path] = struct{}{}
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}

// Stop closes the file watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) existingFiles() ([]string, error) {
	entries, err := os.ReadDir(w.opts.InputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(w.opts.InputDir, e.Name())
		if w.opts.Accept(path) {
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}
