// Package watch uploads files that appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
	"github.com/custodia-labs/medichat/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last event before
// uploading, so files still being written are read once they are complete.
const DefaultDebounce = 500 * time.Millisecond

// ErrNotDirectory is returned when the watched path is not a directory.
var ErrNotDirectory = errors.New("watch: path is not a directory")

// Batch is the outcome of uploading one debounced group of files.
type Batch struct {
	Filenames []string
	Result    *domain.UploadResult
	Err       error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher uploads new and modified files in a directory through the ingest service.
// Subdirectories and hidden files are ignored.
type Watcher struct {
	ingest   driving.IngestService
	dir      string
	debounce time.Duration
}

// New creates a watcher for dir.
func New(ingest driving.IngestService, dir string, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, errors.New("watch: ingest service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	w := &Watcher{ingest: ingest, dir: dir, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Scan uploads every file already present in the directory.
// It returns a nil result when there is nothing to upload.
func (w *Watcher) Scan(ctx context.Context) (*Batch, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && !isHidden(e.Name()) {
			paths = append(paths, filepath.Join(w.dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}
	batch := w.upload(ctx, paths)
	return &batch, nil
}

// Run watches the directory until ctx is cancelled, calling report after
// each uploaded batch. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, report func(Batch)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, path)
			pending[path] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			batch := w.upload(ctx, paths)
			if report != nil {
				report(batch)
			}
		}
	}
}

// handleEvent returns the path to upload for a create or write event on a
// visible regular file.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// upload reads the files and sends them in one Upload call. Files that
// vanished or could not be read are reported as failures.
func (w *Watcher) upload(ctx context.Context, paths []string) Batch {
	batch := Batch{}
	files := make([]domain.UploadFile, 0, len(paths))
	var unreadable []domain.UploadFailure

	for _, p := range paths {
		name := filepath.Base(p)
		batch.Filenames = append(batch.Filenames, name)
		data, err := os.ReadFile(p)
		if err != nil {
			unreadable = append(unreadable, domain.UploadFailure{Filename: name, Error: err.Error()})
			continue
		}
		files = append(files, domain.UploadFile{Filename: name, Content: data})
	}

	result := &domain.UploadResult{}
	if len(files) > 0 {
		r, err := w.ingest.Upload(ctx, files)
		if err != nil {
			batch.Err = fmt.Errorf("upload: %w", err)
			return batch
		}
		result = r
	}
	result.Failed = append(result.Failed, unreadable...)
	batch.Result = result
	return batch
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
