// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package templates resolves named note templates from a directory and
// renders them with Go's text/template. Each template is one <name>.md
// file. The "default" template is materialized from a built-in body when
// the engine is created.
package templates

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/rs/zerolog"

	"github.com/pdiddy/adn/internal/apperr"
)

const (
	// Ext is the template file extension.
	Ext = ".md"
	// DefaultName is the template that always exists.
	DefaultName = "default"
	// CSVRecordName is the template used for CSV notes.
	CSVRecordName = "csv_record"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// Builtin returns the embedded body for name.
func Builtin(name string) (string, bool) {
	data, err := builtinFS.ReadFile("builtin/" + name + Ext)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Engine renders templates from a directory.
type Engine struct {
	dir        string
	version    string
	dateFormat string
	now        func() time.Time
	log        zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithVersion sets the value of the "version" context key.
func WithVersion(v string) Option {
	return func(e *Engine) { e.version = v }
}

// WithDateFormat sets the strftime pattern of the "date" context key.
func WithDateFormat(p string) Option {
	return func(e *Engine) {
		if p != "" {
			e.dateFormat = p
		}
	}
}

// WithClock sets the time source for "now" and "date".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates dir if needed and ensures the default template exists.
func NewEngine(dir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		dir:        dir,
		version:    "dev",
		dateFormat: "%d/%m/%Y %H:%M",
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrapf(err, apperr.Internal, "creating templates directory %s", dir)
	}
	if _, err := e.EnsureDefault(); err != nil {
		return nil, err
	}
	return e, nil
}

// Dir returns the templates directory.
func (e *Engine) Dir() string { return e.dir }

// Path returns the file path for a template name.
func (e *Engine) Path(name string) string {
	return filepath.Join(e.dir, name+Ext)
}

// EnsureDefault writes the built-in default template when its file is
// missing. It reports whether a file was created.
func (e *Engine) EnsureDefault() (bool, error) {
	path := e.Path(DefaultName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	body, _ := Builtin(DefaultName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return false, apperr.Wrapf(err, apperr.Internal, "writing default template %s", path)
	}
	e.log.Info().Str("path", path).Msg("Default template created")
	return true, nil
}

// Raw returns the unrendered source of a template. The default template
// falls back to the built-in body, which is written to disk once.
func (e *Engine) Raw(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(e.Path(name))
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", apperr.Wrapf(err, apperr.Internal, "reading template %s", name)
	}
	if name != DefaultName {
		return "", apperr.Newf(apperr.TemplateNotFound, "template %q not found in %s", name, e.dir).
			WithDetail("template", name)
	}
	if _, err := e.EnsureDefault(); err != nil {
		return "", err
	}
	body, _ := Builtin(DefaultName)
	return body, nil
}

// List returns the names of the templates in the directory, sorted.
func (e *Engine) List() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.Internal, "listing %s", e.dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Ext))
	}
	sort.Strings(names)
	return names, nil
}

// Create writes a template file. An existing file is only replaced when
// overwrite is set.
func (e *Engine) Create(name, content string, overwrite bool) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	path := e.Path(name)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", apperr.Newf(apperr.AlreadyExists, "template %q already exists", name).
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", apperr.Wrapf(err, apperr.Internal, "writing template %s", path)
	}
	e.log.Info().Str("template", name).Str("path", path).Msg("Template saved")
	return path, nil
}

// Context builds the rendering context. Later sources win: fixed values,
// then source-file metadata, then vars. Without a source the file_* keys
// are present but blank.
func (e *Engine) Context(source string, vars map[string]any) map[string]any {
	now := e.now()
	ctx := map[string]any{
		"now":     now,
		"version": e.version,
	}
	if date, err := strftime.Format(e.dateFormat, now); err == nil {
		ctx["date"] = date
	} else {
		ctx["date"] = DateFormat(now)
	}

	for _, k := range []string{"file_stem", "file_name", "file_path", "file_size"} {
		ctx[k] = ""
	}
	if source != "" {
		abs, err := filepath.Abs(source)
		if err != nil {
			abs = source
		}
		base := filepath.Base(source)
		ctx["file_stem"] = strings.TrimSuffix(base, filepath.Ext(base))
		ctx["file_name"] = base
		ctx["file_path"] = abs
		var size int64
		if info, err := os.Stat(source); err == nil {
			size = info.Size()
		}
		ctx["file_size"] = size
	}

	for k, v := range vars {
		ctx[k] = v
	}
	return ctx
}

// Render resolves the named template and executes it with the context for
// source and vars. Parse and execution failures are RENDER errors that
// carry the template name; unknown keys count as failures.
func (e *Engine) Render(name, source string, vars map[string]any) (string, error) {
	body, err := e.Raw(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).
		Funcs(FuncMap()).
		Option("missingkey=error").
		Parse(body)
	if err != nil {
		return "", renderError(name, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, e.Context(source, vars)); err != nil {
		return "", renderError(name, err)
	}
	e.log.Debug().Str("template", name).Str("source", source).Msg("Template rendered")
	return out.String(), nil
}

func renderError(name string, err error) error {
	return apperr.Wrapf(err, apperr.Render, "rendering template %q", name).
		WithDetail("template", name)
}
