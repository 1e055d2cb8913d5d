// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"unchanged", "paper.pdf", 100, "paper.pdf"},
		{"unsafe characters", `a<b>c:d"e/f\g|h?i*j.md`, 100, "a_b_c_d_e_f_g_h_i_j.md"},
		{"whitespace runs", "my   paper \t final.pdf", 100, "my_paper_final.pdf"},
		{"leading and trailing space dropped", " x ", 100, "x"},
		{"blank edges before extension", " report .pdf", 100, "report_.pdf"},
		{"truncate keeps extension", "abcdefghijklmnop.pdf", 10, "abcdef.pdf"},
		{"unicode counted as runes", "ñandú-extracción.md", 8, "ñandú.md"},
		{"no limit", strings.Repeat("a", 300), 0, strings.Repeat("a", 300)},
		{"long extension keeps one rune", "name.extensionthatislong", 10, "n.extensionthatislong"},
		{"dot file truncated plainly", ".abcdefghijkl", 5, ".abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.maxLen))
		})
	}
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"simple.pdf",
		`what?  is "this" <file>.pdf`,
		"   spaced   out   ",
		"a/b/c\\d.txt",
		strings.Repeat("word ", 60) + ".pdf",
		"x.verylongextensionname",
		"Über   große|Datei.PDF",
	}
	for _, maxLen := range []int{0, 10, 20, 100} {
		for _, in := range inputs {
			once := Sanitize(in, maxLen)
			assert.Equal(t, once, Sanitize(once, maxLen), "idempotent for %q/%d", in, maxLen)
			assert.False(t, strings.ContainsAny(once, unsafeChars), "unsafe chars in %q", once)

			if maxLen > 0 && utf8.RuneCountInString(Sanitize(in, 0)) > maxLen {
				assert.Equal(t, filepath.Ext(Sanitize(in, 0)), filepath.Ext(once), "extension kept for %q", in)
			}
		}
	}
}

func TestNamer_OutputPath(t *testing.T) {
	n := Namer{Suffix: "_extraccion", MaxLength: 100}

	got := n.OutputPath("/papers/My Paper: v2.pdf", "/notes")
	assert.Equal(t, filepath.Join("/notes", "My_Paper__v2_extraccion.md"), got)

	padded := n.OutputPath("/papers/ report .pdf", "/notes")
	assert.Equal(t, filepath.Join("/notes", "report_extraccion.md"), padded)

	short := Namer{Suffix: "_x", MaxLength: 10}
	assert.Equal(t, filepath.Join("out", "abcdefghij_x.md"), short.OutputPath("in/abcdefghijklmnop.pdf", "out"))
}

func TestNamer_IsProcessedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))
	n := Namer{Suffix: "_extraccion", MaxLength: 100}

	assert.False(t, n.IsProcessed(pdf))

	out := n.OutputPath(pdf, dir)
	require.NoError(t, os.WriteFile(out, []byte("# note"), 0o644))
	assert.True(t, n.IsProcessed(pdf))

	require.NoError(t, os.Remove(out))
	assert.False(t, n.IsProcessed(pdf))
}
