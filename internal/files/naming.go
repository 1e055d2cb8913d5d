// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package files discovers input PDFs and derives the names of the notes
// generated from them. Whether an input has been processed is never stored:
// it is read off the filesystem by checking for the derived output file.
package files

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pdiddy/adn/internal/fsutil"
)

// NoteExt is the extension of every generated note.
const NoteExt = ".md"

const unsafeChars = `<>:"/\|?*`

// Sanitize makes name safe as a file name. Each of <>:"/\|?* becomes "_",
// leading and trailing whitespace is dropped, inner whitespace runs collapse
// to a single "_", and names longer than maxLen
// runes are cut short while keeping their extension. maxLen <= 0 disables
// truncation.
//
// When the extension alone reaches maxLen, one rune of the stem is kept in
// front of it and the result is longer than maxLen.
func Sanitize(name string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return '_'
		}
		return r
	}, name)
	cleaned = collapseWhitespace(strings.TrimSpace(cleaned))

	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}

	ext := []rune(filepath.Ext(cleaned))
	if len(ext) == len(runes) {
		ext = nil
	}
	keep := max(maxLen-len(ext), 1)
	return string(runes[:keep]) + string(ext)
}

// collapseWhitespace replaces every run of whitespace with one "_".
func collapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Namer derives note paths from input paths.
type Namer struct {
	// Suffix is appended to the sanitized stem, e.g. "_extraccion".
	Suffix string
	// MaxLength is the sanitizer limit applied to the stem.
	MaxLength int
}

// OutputPath returns outDir/<sanitized stem><suffix>.md for input.
func (n Namer) OutputPath(input, outDir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, Sanitize(stem, n.MaxLength)+n.Suffix+NoteExt)
}

// IsProcessed reports whether the note for input exists next to it.
func (n Namer) IsProcessed(input string) bool {
	return fsutil.Exists(n.OutputPath(input, filepath.Dir(input)))
}
