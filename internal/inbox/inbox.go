// Package inbox turns a drop folder into an upload source: every file created
// in the folder is offered as the session's selected document.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rsb-interview-lab/internal/interview"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a single directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	logger  *zap.Logger
}

// New creates dir if needed and starts watching it.
func New(dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating inbox %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{watcher: w, dir: dir, logger: logger}, nil
}

func (w *Watcher) Dir() string {
	return w.dir
}

// Watch emits a document for each new regular file until ctx is done.
func (w *Watcher) Watch(ctx context.Context) <-chan interview.Document {
	docs := make(chan interview.Document, 8)

	go func() {
		defer close(docs)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) || hidden(event.Name) {
					continue
				}

				doc, err := interview.DocumentFromFile(event.Name)
				if err != nil {
					w.logger.Debug("skipping inbox entry", zap.String("path", event.Name), zap.Error(err))
					continue
				}

				select {
				case docs <- doc:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("inbox watcher", zap.Error(err))
			}
		}
	}()

	return docs
}

// Feed selects every document from the inbox into session until ctx is done.
func (w *Watcher) Feed(ctx context.Context, session *interview.Session, notify func(interview.Document)) {
	for doc := range w.Watch(ctx) {
		session.SelectFile(doc)
		if notify != nil {
			notify(doc)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// editors and browsers drop temporary dotfiles while writing
func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".part") || strings.HasSuffix(base, ".crdownload")
}
