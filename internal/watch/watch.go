// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reports PDFs that appear in a directory. Events are
// coalesced per path and delivered once the file has been quiet for the
// settle delay, so a file still being copied is not handed over half
// written.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pdiddy/adn/internal/files"
)

// DefaultSettle is the quiet period before a path is handed to the handler.
const DefaultSettle = 500 * time.Millisecond

// Handler receives each settled path. It runs on the watcher's goroutine;
// no new events are delivered until it returns.
type Handler func(ctx context.Context, path string)

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir     string
	pattern string
	settle  time.Duration
	log     zerolog.Logger
	ready   func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithLogger sets the watcher's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithReady registers a callback invoked once the directory is being
// watched.
func WithReady(fn func()) Option {
	return func(w *Watcher) { w.ready = fn }
}

// New returns a watcher for PDFs in dir whose base name matches pattern.
// An empty pattern means files.DefaultPattern.
func New(dir, pattern string, opts ...Option) (*Watcher, error) {
	if pattern == "" {
		pattern = files.DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	if err := files.CheckDir(dir); err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:     dir,
		pattern: pattern,
		settle:  DefaultSettle,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Matches reports whether path is a PDF the watcher cares about.
func (w *Watcher) Matches(path string) bool {
	if !files.IsPDFName(path) {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error only when the watch cannot be established.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Str("pattern", w.pattern).Msg("Watching for new PDFs")
	if w.ready != nil {
		w.ready()
	}

	pending := map[string]time.Time{}
	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("Watcher stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !w.Matches(ev.Name) {
				continue
			}
			w.log.Trace().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Event")
			pending[ev.Name] = time.Now()
			timer.Reset(w.settle)

		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(werr).Msg("Watcher error")

		case <-timer.C:
			due := settled(pending, time.Now().Add(-w.settle))
			for _, path := range due {
				delete(pending, path)
				if ctx.Err() != nil {
					return nil
				}
				w.log.Debug().Str("path", path).Msg("New PDF")
				handle(ctx, path)
			}
			if len(pending) > 0 {
				timer.Reset(w.settle)
			}
		}
	}
}

// settled returns the pending paths last touched at or before cutoff, in
// name order.
func settled(pending map[string]time.Time, cutoff time.Time) []string {
	var due []string
	for path, at := range pending {
		if !at.After(cutoff) {
			due = append(due, path)
		}
	}
	sort.Strings(due)
	return due
}
