// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvnote

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/templates"
	"github.com/pdiddy/adn/pkg/types"
)

const twoRows = "source,doi,title,abstract\n" +
	"Journal A,10.1234/a,Article A,Abstract A\n" +
	"Journal B,10.1234/b,Article B,Abstract B\n"

type failingRenderer struct{ calls int }

func (f *failingRenderer) Render(name, source string, vars map[string]any) (string, error) {
	f.calls++
	return "", apperr.New(apperr.TemplateNotFound, name)
}

type memRecorder struct{ outcomes []types.Outcome }

func (m *memRecorder) Record(_ context.Context, o types.Outcome) error {
	m.outcomes = append(m.outcomes, o)
	return nil
}

func mdFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	require.NoError(t, err)
	var names []string
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names
}

func TestProcess_HappyPath(t *testing.T) {
	csvPath := writeFile(t, t.TempDir(), "data.csv", []byte(twoRows))
	outDir := filepath.Join(t.TempDir(), "notes")

	var out bytes.Buffer
	rec := &memRecorder{}
	c, err := NewConverter(outDir, WithOutput(&out), WithRecorder(rec, "run-7"))
	require.NoError(t, err)

	n, err := c.Process(context.Background(), csvPath, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"001.md", "002.md"}, mdFiles(t, outDir))

	first, err := os.ReadFile(filepath.Join(outDir, "001.md"))
	require.NoError(t, err)
	assert.Equal(t, Fallback(Record{Source: "Journal A", DOI: "10.1234/a", Title: "Article A", Abstract: "Abstract A"}), string(first))

	second, err := os.ReadFile(filepath.Join(outDir, "002.md"))
	require.NoError(t, err)
	for _, want := range []string{"source: Journal B", "doi: 10.1234/b", `title: "Article B"`, "  Abstract B"} {
		assert.Contains(t, string(second), want)
	}

	assert.Contains(t, out.String(), "CSV summary: 2 of 2 records written")
	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, types.ModeCSV, rec.outcomes[0].Mode)
	assert.Equal(t, csvPath+"#2", rec.outcomes[1].Input)
	assert.Equal(t, types.StatusGenerated, rec.outcomes[1].Status)
}

func TestProcess_CustomStart(t *testing.T) {
	csvPath := writeFile(t, t.TempDir(), "one.csv", []byte("source,doi,title,abstract\nJ,D,T,A\n"))
	outDir := t.TempDir()

	c, err := NewConverter(outDir)
	require.NoError(t, err)
	n, err := c.Process(context.Background(), csvPath, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"010.md"}, mdFiles(t, outDir))
}

func TestProcess_HeaderOnly(t *testing.T) {
	csvPath := writeFile(t, t.TempDir(), "empty.csv", []byte("source,doi,title,abstract\n"))
	outDir := t.TempDir()

	c, err := NewConverter(outDir)
	require.NoError(t, err)
	n, err := c.Process(context.Background(), csvPath, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, mdFiles(t, outDir))
}

func TestProcess_MissingColumnsWritesNothing(t *testing.T) {
	csvPath := writeFile(t, t.TempDir(), "bad.csv", []byte("wrong_column,another_column\na,b\n"))
	outDir := t.TempDir()

	c, err := NewConverter(outDir)
	require.NoError(t, err)
	_, err = c.Process(context.Background(), csvPath, 1)
	assert.True(t, apperr.Is(err, apperr.MissingColumns))
	assert.Empty(t, mdFiles(t, outDir))
}

func TestProcess_RowWriteFailureContinues(t *testing.T) {
	csvPath := writeFile(t, t.TempDir(), "data.csv", []byte(twoRows))
	outDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(outDir, "001.md"), 0o755))

	c, err := NewConverter(outDir)
	require.NoError(t, err)
	n, err := c.Process(context.Background(), csvPath, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(outDir, "002.md"))
}

func TestContent_FallsBackOnRenderError(t *testing.T) {
	r := &failingRenderer{}
	c, err := NewConverter(t.TempDir(), WithRenderer(r))
	require.NoError(t, err)

	rec := Record{Source: "S", DOI: "D", Title: "T", Abstract: "A"}
	assert.Equal(t, Fallback(rec), c.Content(rec))
	assert.Equal(t, Fallback(rec), c.Content(rec))
	assert.Equal(t, 2, r.calls)
}

func TestContent_BuiltinTemplateMatchesFallback(t *testing.T) {
	engine, err := templates.NewEngine(t.TempDir())
	require.NoError(t, err)
	body, ok := templates.Builtin(templates.CSVRecordName)
	require.True(t, ok)
	_, err = engine.Create(templates.CSVRecordName, body, false)
	require.NoError(t, err)

	c, err := NewConverter(t.TempDir(), WithRenderer(engine))
	require.NoError(t, err)

	rec := Record{Source: "Journal A", DOI: "10.1234/a", Title: "Article A", Abstract: "Line 1\nLine 2"}
	assert.Equal(t, Fallback(rec), c.Content(rec))
}

func TestNextNumber(t *testing.T) {
	dir := t.TempDir()

	n, err := NextNumber(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for _, name := range []string{"001.md", "007.md", "12.md", "notes.md", "1000.txt", "042.md"} {
		writeFile(t, dir, name, nil)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "999.md"), 0o755))

	n, err = NextNumber(dir)
	require.NoError(t, err)
	assert.Equal(t, 43, n)

	notes, err := NoteFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001.md"),
		filepath.Join(dir, "007.md"),
		filepath.Join(dir, "042.md"),
	}, notes)
}
