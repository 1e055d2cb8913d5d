// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config persists adn's flat settings document. The effective
// configuration is always the compiled-in defaults overlaid with whatever
// the document holds; reads are cached until the next write.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/fsutil"
)

// Store reads and writes the configuration document. It is not safe for
// concurrent use.
type Store struct {
	paths Paths
	log   zerolog.Logger
	now   func() time.Time
	cache Config
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the time source used for backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store rooted at paths. Nothing is read or created
// until an operation needs it.
func NewStore(paths Paths, opts ...Option) *Store {
	s := &Store{paths: paths, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the configuration document path.
func (s *Store) Path() string { return s.paths.File() }

// Dir returns the configuration directory.
func (s *Store) Dir() string { return s.paths.Dir }

// TemplatesDir returns the templates directory.
func (s *Store) TemplatesDir() string { return s.paths.TemplatesDir }

// LogsDir returns the logs directory.
func (s *Store) LogsDir() string { return s.paths.LogsDir() }

// Paths returns the store's locations.
func (s *Store) Paths() Paths { return s.paths }

// Exists reports whether the configuration document exists.
func (s *Store) Exists() bool { return fsutil.Exists(s.Path()) }

// Init creates the configuration directories and writes the defaults. It
// fails when the document already exists unless overwrite is set.
func (s *Store) Init(overwrite bool) (string, error) {
	if s.Exists() && !overwrite {
		return "", apperr.Newf(apperr.AlreadyInitialized, "configuration already exists at %s", s.Path())
	}
	for _, dir := range []string{s.paths.Dir, s.paths.TemplatesDir, s.paths.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", apperr.Wrapf(err, apperr.Internal, "creating %s", dir)
		}
	}
	if err := s.write(defaultDocument()); err != nil {
		return "", err
	}
	s.log.Info().Str("path", s.Path()).Msg("Configuration initialized")
	return s.Path(), nil
}

// Effective returns the defaults overlaid with the persisted values. A
// known key left empty (null) keeps its default. The result is a copy;
// callers may modify it freely.
func (s *Store) Effective() (Config, error) {
	if s.cache != nil {
		return s.cache.Clone(), nil
	}

	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	for k, v := range doc {
		if _, known := KnownKind(k); known && v == nil {
			continue
		}
		cfg[k] = fromAny(v)
	}
	s.cache = cfg
	s.log.Debug().Str("path", s.Path()).Msg("Configuration loaded")
	return cfg.Clone(), nil
}

// Snapshot returns the effective configuration, or the defaults when the
// document is absent or unreadable.
func (s *Store) Snapshot() Config {
	cfg, err := s.Effective()
	if err != nil {
		if !apperr.Is(err, apperr.NotInitialized) {
			s.log.Warn().Err(err).Msg("Using default configuration")
		}
		return Defaults()
	}
	return cfg
}

// Get returns the value for key. It never fails: when the document cannot
// be read it uses the compiled-in default, and when key has no default it
// returns fallback.
func (s *Store) Get(key string, fallback Value) Value {
	if cfg, err := s.Effective(); err == nil {
		if v, ok := cfg[key]; ok {
			return v
		}
		return fallback
	}
	if v, ok := Defaults()[key]; ok {
		return v
	}
	return fallback
}

// Set persists key=v. A missing document is created with the defaults
// first. Known keys must carry their expected kind.
func (s *Store) Set(key string, v Value) error {
	if kind, ok := KnownKind(key); ok && v.Kind() != kind {
		return apperr.Newf(apperr.InvalidInput, "%s expects a %s value, got %s", key, kind, v.Kind())
	}

	doc, err := s.readDocument()
	switch {
	case apperr.Is(err, apperr.NotInitialized):
		doc = defaultDocument()
	case err != nil:
		return err
	}

	doc[key] = v.Any()
	if err := s.write(doc); err != nil {
		return err
	}
	s.log.Info().Str("key", key).Str("value", v.String()).Msg("Configuration updated")
	return nil
}

// Reset overwrites the document with the compiled-in defaults.
func (s *Store) Reset() error {
	if err := s.write(defaultDocument()); err != nil {
		return err
	}
	s.log.Info().Msg("Configuration reset to defaults")
	return nil
}

// Invalidate drops the cached configuration.
func (s *Store) Invalidate() {
	s.cache = nil
}

func (s *Store) readDocument() (map[string]any, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Newf(apperr.NotInitialized, "configuration not found at %s (run 'adn config init')", s.Path())
	}
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.Internal, "reading %s", s.Path())
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.MalformedDocument, "parsing %s", s.Path())
	}
	return doc, nil
}

func (s *Store) write(doc map[string]any) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "encoding configuration")
	}
	if err := fsutil.WriteFileAtomic(s.Path(), data, 0o644); err != nil {
		return apperr.Wrapf(err, apperr.Internal, "writing %s", s.Path())
	}
	s.Invalidate()
	return nil
}

// parseDocument decodes a configuration document. An empty document is an
// empty mapping; anything other than a mapping is an error.
func parseDocument(data []byte) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 || (node.Kind == yaml.DocumentNode && len(node.Content) == 0) {
		return map[string]any{}, nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 && node.Content[0].Tag == "!!null" {
		return map[string]any{}, nil
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) != 1 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document is not a key-value mapping")
	}
	doc := map[string]any{}
	if err := node.Content[0].Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func encodeDocument(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func defaultDocument() map[string]any {
	doc := map[string]any{}
	for k, v := range Defaults() {
		doc[k] = v.Any()
	}
	return doc
}

// backupName returns a config_backup_<stamp>.yaml path in dir that does
// not exist yet.
func backupName(dir string, t time.Time) string {
	stamp := t.Format("20060102_150405")
	path := filepath.Join(dir, "config_backup_"+stamp+".yaml")
	for i := 1; fsutil.Exists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("config_backup_%s_%d.yaml", stamp, i))
	}
	return path
}
