// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/fsutil"
)

// ProcessingStats summarizes a directory of PDFs.
type ProcessingStats struct {
	Total          int     `json:"total"`
	Processed      int     `json:"processed"`
	Pending        int     `json:"pending"`
	TotalBytes     int64   `json:"total_bytes"`
	ProcessedBytes int64   `json:"processed_bytes"`
	CompletionRate float64 `json:"completion_rate"`
}

// Partition splits the PDFs matching pattern under dir by processed state.
func Partition(dir, pattern string, n Namer) (processed, pending []string, err error) {
	pdfs, err := FindMatching(dir, pattern)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range pdfs {
		if n.IsProcessed(p) {
			processed = append(processed, p)
		} else {
			pending = append(pending, p)
		}
	}
	return processed, pending, nil
}

// Stats counts processed and pending PDFs under dir.
func Stats(dir, pattern string, n Namer) (ProcessingStats, error) {
	processed, pending, err := Partition(dir, pattern, n)
	if err != nil {
		return ProcessingStats{}, err
	}

	st := ProcessingStats{
		Total:     len(processed) + len(pending),
		Processed: len(processed),
		Pending:   len(pending),
	}
	for _, p := range processed {
		size := fileSize(p)
		st.ProcessedBytes += size
		st.TotalBytes += size
	}
	for _, p := range pending {
		st.TotalBytes += fileSize(p)
	}
	if st.Total > 0 {
		st.CompletionRate = float64(st.Processed) / float64(st.Total) * 100
	}
	return st, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// BackupFile copies path to path.bak, or to the first free path.bak.N,
// and returns the copy's path.
func BackupFile(path string) (string, error) {
	dst := path + ".bak"
	for i := 1; fsutil.Exists(dst); i++ {
		dst = fmt.Sprintf("%s.bak.%d", path, i)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", apperr.Wrapf(err, apperr.Internal, "opening %s", path)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperr.Wrapf(err, apperr.Internal, "creating %s", dst)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", apperr.Wrapf(err, apperr.Internal, "copying %s", path)
	}
	if err := out.Close(); err != nil {
		return "", apperr.Wrapf(err, apperr.Internal, "closing %s", dst)
	}
	return dst, nil
}

// TemporaryPatterns are the leftovers removed by FindTemporary's callers.
var TemporaryPatterns = []string{"*.tmp", "*.temp", "*~", ".adn_cache/*"}

// FindTemporary returns the regular files in dir matching
// TemporaryPatterns, sorted.
func FindTemporary(dir string) ([]string, error) {
	if err := CheckDir(dir); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	fsys := os.DirFS(dir)
	for _, pattern := range TemporaryPatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.Internal, "matching %s", pattern)
		}
		for _, m := range matches {
			path := filepath.Join(dir, filepath.FromSlash(m))
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				seen[path] = true
			}
		}
	}

	found := make([]string, 0, len(seen))
	for p := range seen {
		found = append(found, p)
	}
	sort.Strings(found)
	return found, nil
}
