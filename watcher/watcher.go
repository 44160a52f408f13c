// Package watcher keeps a local PDF drop folder in sync with the backend:
// files appearing or changing in the folder are uploaded and a re-ingestion
// is triggered, removals trigger a re-ingestion only. Bursts of filesystem
// events collapse into a single sync pass.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Sink receives the sync work. The api client satisfies it through a thin
// adapter in the CLI.
type Sink interface {
	UploadPDF(ctx context.Context, path string) error
	Reingest(ctx context.Context) error
}

// Watcher owns one drop directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	sink     Sink
}

func New(dir string, debounce time.Duration, sink Sink) *Watcher {
	if debounce <= 0 {
		debounce = 750 * time.Millisecond
	}
	return &Watcher{dir: dir, debounce: debounce, sink: sink}
}

// change is one debounced unit of work. upload=false means the file went
// away and only the index needs refreshing.
type change struct {
	path   string
	upload bool
}

// Run watches until ctx is canceled. The directory must exist; watching is
// not recursive, matching the flat drop-folder layout.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	log.Printf("watching %s for PDF changes", w.dir)

	changes := make(chan change, 64)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.collect(ctx, fw, changes) })
	g.Go(func() error { return w.dispatch(ctx, changes) })
	return g.Wait()
}

func (w *Watcher) collect(ctx context.Context, fw *fsnotify.Watcher, changes chan<- change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if c, relevant := classify(ev); relevant {
				select {
				case changes <- c:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

// dispatch debounces changes and applies one sync pass per quiet period.
func (w *Watcher) dispatch(ctx context.Context, changes <-chan change) error {
	pending := make(map[string]bool)
	dirty := false

	var timer *time.Timer
	var due <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case c := <-changes:
			if c.upload {
				pending[c.path] = true
			}
			dirty = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			due = timer.C

		case <-due:
			timer, due = nil, nil
			w.sync(ctx, pending, dirty)
			pending = make(map[string]bool)
			dirty = false
		}
	}
}

// sync uploads every pending file in a stable order, then triggers one
// re-ingestion. A failed upload does not stop the rest of the batch.
func (w *Watcher) sync(ctx context.Context, pending map[string]bool, dirty bool) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := w.sink.UploadPDF(ctx, path); err != nil {
			log.Printf("upload %s: %v", filepath.Base(path), err)
			continue
		}
		log.Printf("uploaded %s", filepath.Base(path))
	}

	if !dirty {
		return
	}
	if err := w.sink.Reingest(ctx); err != nil {
		log.Printf("reingest: %v", err)
		return
	}
	log.Printf("reingest triggered")
}

// classify keeps PDF file events only. Renames and removals cannot be
// stat'ed, so the decision rests on the extension alone.
func classify(ev fsnotify.Event) (change, bool) {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
		return change{}, false
	}
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		return change{path: ev.Name, upload: true}, true
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		return change{path: ev.Name, upload: false}, true
	}
	return change{}, false
}
