// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, dir, pattern string, settle time.Duration) *recorder {
	t.Helper()
	ready := make(chan struct{})
	w, err := New(dir, pattern, WithSettle(settle), WithReady(func() { close(ready) }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	rec := &recorder{}
	go func() { done <- w.Run(ctx, rec.handle) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return rec
}

func TestRun_NewPDF(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, "", 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper.pdf"), []byte("%PDF-1.4\n"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.seen()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"paper.pdf"}, rec.seen())
}

func TestRun_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, "", time.Second)

	path := filepath.Join(dir, "big.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("%PDF-1.4 chunk\n")
		require.NoError(t, err)
		require.NoError(t, f.Sync())
	}
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return len(rec.seen()) > 0
	}, 5*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"big.pdf"}, rec.seen())
}

func TestRun_PatternFilters(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, "report_*.pdf", 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.pdf"), []byte("%PDF-"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_1.pdf"), []byte("%PDF-"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.seen()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"report_1.pdf"}, rec.seen())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)

	_, err = New(t.TempDir(), "[")
	assert.Error(t, err)
}

func TestSettled(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b.pdf": now.Add(-time.Second),
		"a.pdf": now.Add(-time.Second),
		"c.pdf": now,
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, settled(pending, now.Add(-500*time.Millisecond)))
}
