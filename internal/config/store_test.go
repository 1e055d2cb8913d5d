// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

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

func newStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".adn")
	return NewStore(Paths{Dir: dir, TemplatesDir: filepath.Join(dir, "templates")})
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestGet_UninitializedReturnsDefaults(t *testing.T) {
	s := newStore(t)

	for key, want := range Defaults() {
		assert.Equal(t, want, s.Get(key, StringValue("fallback")), key)
	}
	assert.Equal(t, StringValue("fallback"), s.Get("unknown_key", StringValue("fallback")))
	assert.False(t, s.Exists())
}

func TestEffective_NotInitialized(t *testing.T) {
	s := newStore(t)
	_, err := s.Effective()
	assert.True(t, apperr.Is(err, apperr.NotInitialized))
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestInit(t *testing.T) {
	s := newStore(t)

	path, err := s.Init(false)
	require.NoError(t, err)
	assert.Equal(t, s.Path(), path)
	assert.DirExists(t, s.TemplatesDir())
	assert.DirExists(t, s.LogsDir())

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	_, err = s.Init(false)
	assert.True(t, apperr.Is(err, apperr.AlreadyInitialized))
	assert.True(t, apperr.Is(err, apperr.AlreadyExists))
}

func TestInit_OverwriteResetsOverrides(t *testing.T) {
	s := newStore(t)
	_, err := s.Init(false)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyOutputSuffix, StringValue("_notes")))

	_, err = s.Init(true)
	require.NoError(t, err)

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, "_extraccion", cfg.String(KeyOutputSuffix))
}

func TestSet_EveryKnownKey(t *testing.T) {
	values := map[string]Value{
		KeyDefaultTemplate:   StringValue("paper"),
		KeyOutputSuffix:      StringValue("_n"),
		KeyDefaultOutputDir:  StringValue("notes"),
		KeyLogLevel:          StringValue("DEBUG"),
		KeyAutoOpenGenerated: BoolValue(true),
		KeyPreserveStructure: BoolValue(false),
		KeyDateFormat:        StringValue("%Y"),
		KeyEncoding:          StringValue("latin1"),
		KeyMaxFilenameLength: IntValue(42),
	}
	require.Len(t, values, len(KnownKeys()))

	s := newStore(t)
	for key, v := range values {
		require.NoError(t, s.Set(key, v))
		cfg, err := s.Effective()
		require.NoError(t, err)
		assert.Equal(t, v, cfg[key], key)
	}
}

func TestSet_CreatesDocumentAndKeepsUnknownKeys(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("custom:\n  nested: [1, 2]\nlog_level: ERROR\n"), 0o644))

	require.NoError(t, s.Set(KeyMaxFilenameLength, IntValue(80)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "custom:\n  nested:")

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Int(KeyMaxFilenameLength))
	assert.Equal(t, "ERROR", cfg.String(KeyLogLevel))
	assert.Equal(t, "_extraccion", cfg.String(KeyOutputSuffix))
}

func TestSet_WhenAbsentWritesDefaults(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set(KeyLogLevel, StringValue("ERROR")))

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.String(KeyLogLevel))
	assert.Equal(t, 100, cfg.Int(KeyMaxFilenameLength))
}

func TestSet_RejectsWrongKind(t *testing.T) {
	s := newStore(t)
	err := s.Set(KeyMaxFilenameLength, StringValue("100"))
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
	assert.False(t, s.Exists())
}

func TestEffective_CacheInvalidatedOnWrite(t *testing.T) {
	s := newStore(t)
	_, err := s.Init(false)
	require.NoError(t, err)

	first, err := s.Effective()
	require.NoError(t, err)
	first[KeyLogLevel] = StringValue("mutated")

	second, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, "INFO", second.String(KeyLogLevel), "callers get copies")

	require.NoError(t, s.Set(KeyLogLevel, StringValue("ERROR")))
	third, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, "ERROR", third.String(KeyLogLevel))
}

func TestEffective_Malformed(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("just a string\n"), 0o644))

	_, err := s.Effective()
	assert.True(t, apperr.Is(err, apperr.MalformedDocument))

	assert.Equal(t, Defaults(), s.Snapshot())
	assert.Equal(t, StringValue("INFO"), s.Get(KeyLogLevel, Value{}))
}

func TestEffective_EmptyDocument(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o644))

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestEffective_NullKnownKeyKeepsDefault(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("default_template:\nmax_filename_length: ~\nextra:\n"), 0o644))

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.String(KeyDefaultTemplate))
	assert.Equal(t, Defaults().Int(KeyMaxFilenameLength), cfg.Int(KeyMaxFilenameLength))
	v, ok := cfg.Lookup("extra")
	require.True(t, ok)
	assert.Equal(t, StringValue(""), v)
}

func TestReset(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set(KeyOutputSuffix, StringValue("_x")))
	require.NoError(t, s.Set("extra", StringValue("y")))

	require.NoError(t, s.Reset())

	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestDocument_SortedKeys(t *testing.T) {
	s := newStore(t)
	_, err := s.Init(false)
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var keys []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		key, _, ok := strings.Cut(line, ":")
		require.True(t, ok, line)
		keys = append(keys, key)
	}
	assert.Equal(t, KnownKeys(), keys)
	assert.Contains(t, string(data), "max_filename_length: 100\n")
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".adn")
	s := NewStore(Paths{Dir: dir, TemplatesDir: filepath.Join(dir, "templates")}, WithClock(steppingClock()))
	require.NoError(t, s.Set(KeyOutputSuffix, StringValue("_before")))

	original, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	before, err := s.Effective()
	require.NoError(t, err)

	backup, err := s.Backup()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config_backup_20250201_100001.yaml"), backup)
	copied, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	require.NoError(t, s.Set(KeyOutputSuffix, StringValue("_after")))
	require.NoError(t, s.Restore(backup))

	after, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	restored, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, original, restored)

	matches, err := filepath.Glob(filepath.Join(dir, "config_backup_*.yaml"))
	require.NoError(t, err)
	assert.Len(t, matches, 2, "restore backs up the current document first")
}

func TestBackup_SameSecondDoesNotOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".adn")
	frozen := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(Paths{Dir: dir, TemplatesDir: filepath.Join(dir, "templates")},
		WithClock(func() time.Time { return frozen }))
	_, err := s.Init(false)
	require.NoError(t, err)

	first, err := s.Backup()
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyLogLevel, StringValue("ERROR")))

	require.NoError(t, s.Restore(first))
	cfg, err := s.Effective()
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.String(KeyLogLevel))

	second := filepath.Join(dir, "config_backup_20250201_100000_1.yaml")
	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level: ERROR")
}

func TestBackup_NothingToBackup(t *testing.T) {
	s := newStore(t)
	_, err := s.Backup()
	assert.True(t, apperr.Is(err, apperr.NothingToBackup))
}

func TestRestore_Errors(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set(KeyOutputSuffix, StringValue("_keep")))
	current, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	err = s.Restore(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, apperr.Is(err, apperr.NotFound))

	tests := map[string]string{
		"syntax": "key: [unclosed\n",
		"scalar": "plain text\n",
		"list":   "- a\n- b\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			bad := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(bad, []byte(content), 0o644))

			err := s.Restore(bad)
			assert.True(t, apperr.Is(err, apperr.MalformedDocument))

			after, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			assert.Equal(t, current, after)
		})
	}

	matches, err := filepath.Glob(filepath.Join(s.Dir(), "config_backup_*.yaml"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
