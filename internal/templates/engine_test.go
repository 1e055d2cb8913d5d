// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adn/internal/apperr"
)

var fixedNow = time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(filepath.Join(t.TempDir(), "templates"),
		WithVersion("1.0.0"),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewEngine_CreatesDefault(t *testing.T) {
	e := newEngine(t)

	data, err := os.ReadFile(e.Path(DefaultName))
	require.NoError(t, err)
	body, ok := Builtin(DefaultName)
	require.True(t, ok)
	assert.Equal(t, body, string(data))
}

func TestEnsureDefault_Idempotent(t *testing.T) {
	e := newEngine(t)
	writeFile(t, e.Dir(), "default.md", "custom {{ .version }}")

	created, err := e.EnsureDefault()
	require.NoError(t, err)
	assert.False(t, created)

	raw, err := e.Raw(DefaultName)
	require.NoError(t, err)
	assert.Equal(t, "custom {{ .version }}", raw)
}

func TestRaw_DefaultMaterializedOnce(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, os.Remove(e.Path(DefaultName)))

	raw, err := e.Raw(DefaultName)
	require.NoError(t, err)
	assert.Contains(t, raw, "extracción")
	assert.FileExists(t, e.Path(DefaultName))

	again, err := e.Raw(DefaultName)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestRaw_Errors(t *testing.T) {
	e := newEngine(t)

	_, err := e.Raw("missing")
	assert.True(t, apperr.Is(err, apperr.TemplateNotFound))
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = e.Raw("bad/name")
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
}

func TestRender_DefaultWithSource(t *testing.T) {
	e := newEngine(t)
	src := writeFile(t, t.TempDir(), "paper one.pdf", strings.Repeat("x", 1500))

	out, err := e.Render(DefaultName, src, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# paper one extracción\n"))
	assert.Contains(t, out, "**Archivo fuente**: paper one.pdf")
	assert.Contains(t, out, "**Fecha de creación**: 15/01/2025 14:30")
	assert.Contains(t, out, "ADN CLI v1.0.0")
	assert.Contains(t, out, "**Tamaño del archivo**: 1.5 KB")
	assert.Contains(t, out, "**generated**: 2025-01-15T14:30:00")
}

func TestRender_DefaultWithoutSource(t *testing.T) {
	e := newEngine(t)

	out, err := e.Render(DefaultName, "", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#  extracción\n"))
	assert.Contains(t, out, "**Archivo fuente**: \n")
	assert.Contains(t, out, "**Tamaño del archivo**: \n")
	assert.Contains(t, out, "ADN CLI v1.0.0")
}

func TestRender_Precedence(t *testing.T) {
	e := newEngine(t)
	src := writeFile(t, t.TempDir(), "a.pdf", "%PDF-")
	_, err := e.Create("vars", "{{ .version }}|{{ .file_stem }}|{{ .extra }}", false)
	require.NoError(t, err)

	out, err := e.Render("vars", src, map[string]any{"file_stem": "override", "extra": 7})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0|override|7", out)
}

func TestRender_SprigAndHelpers(t *testing.T) {
	e := newEngine(t)
	_, err := e.Create("helpers", `{{ .title | upper }} {{ .size | filesize }} {{ .now | dateformat "%Y" }}`, false)
	require.NoError(t, err)

	out, err := e.Render("helpers", "", map[string]any{"title": "abc", "size": 2048})
	require.NoError(t, err)
	assert.Equal(t, "ABC 2.0 KB 2025", out)
}

func TestRender_Errors(t *testing.T) {
	e := newEngine(t)

	_, err := e.Render("nope", "", nil)
	assert.True(t, apperr.Is(err, apperr.TemplateNotFound))

	_, err = e.Create("broken", "{{ if }}", false)
	require.NoError(t, err)
	_, err = e.Render("broken", "", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Render))
	assert.Equal(t, "broken", apperr.DetailsOf(err)["template"])

	_, err = e.Create("unresolved", "{{ .missing }}", false)
	require.NoError(t, err)
	_, err = e.Render("unresolved", "", nil)
	assert.True(t, apperr.Is(err, apperr.Render))
}

func TestList(t *testing.T) {
	e := newEngine(t)
	writeFile(t, e.Dir(), "zeta.md", "z")
	writeFile(t, e.Dir(), "alpha.md", "a")
	writeFile(t, e.Dir(), "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(e.Dir(), "sub.md"), 0o755))

	names, err := e.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "default", "zeta"}, names)
}

func TestCreate_Overwrite(t *testing.T) {
	e := newEngine(t)

	path, err := e.Create("mine", "one", false)
	require.NoError(t, err)
	assert.Equal(t, e.Path("mine"), path)

	_, err = e.Create("mine", "two", false)
	assert.True(t, apperr.Is(err, apperr.AlreadyExists))

	_, err = e.Create("mine", "two", true)
	require.NoError(t, err)
	raw, err := e.Raw("mine")
	require.NoError(t, err)
	assert.Equal(t, "two", raw)
}

func TestBuiltin_CSVRecord(t *testing.T) {
	body, ok := Builtin(CSVRecordName)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(body, "---\nsource: {{ .source }}\n"))
	assert.True(t, strings.HasSuffix(body, "---"))

	_, ok = Builtin("nope")
	assert.False(t, ok)
}
