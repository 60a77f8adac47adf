package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceWindow coalesces the write bursts editors and sync tools produce
// for a single file change.
const debounceWindow = 500 * time.Millisecond

// Watcher ingests .json meeting records as they appear in a directory.
type Watcher struct {
	loader  *Loader
	dir     string
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher over dir. Call Run to start it.
func NewWatcher(loader *Loader, dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		loader:  loader,
		dir:     dir,
		logger:  logger,
		watcher: fw,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run processes filesystem events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info("watching for meeting records",
		zap.String("dir", w.dir),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error",
				zap.Error(err),
			)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for a changed file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(debounceWindow)
		return
	}

	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		counts, err := w.loader.LoadFile(ctx, path)
		if err != nil {
			w.logger.Warn("auto-ingest failed",
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			return
		}

		w.logger.Info("auto-ingested meeting records",
			zap.String("file", filepath.Base(path)),
			zap.Int("meetings", counts.Meetings),
		)
	})
}
