// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/fsutil"
)

// Backup writes a byte-identical copy of the document to a timestamped file
// in the configuration directory and returns its path.
func (s *Store) Backup() (string, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperr.Newf(apperr.NothingToBackup, "no configuration at %s to back up", s.Path())
	}
	if err != nil {
		return "", apperr.Wrapf(err, apperr.Internal, "reading %s", s.Path())
	}

	path := backupName(s.paths.Dir, s.now())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperr.Wrapf(err, apperr.Internal, "writing backup %s", path)
	}
	s.log.Info().Str("path", path).Msg("Configuration backed up")
	return path, nil
}

// Restore replaces the document with the contents of from. The source must
// parse as a mapping; otherwise the current document is left untouched. The
// current document, if any, is backed up before it is replaced.
func (s *Store) Restore(from string) error {
	data, err := os.ReadFile(from)
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.Newf(apperr.NotFound, "backup %s not found", from)
	}
	if err != nil {
		return apperr.Wrapf(err, apperr.Internal, "reading %s", from)
	}
	if _, err := parseDocument(data); err != nil {
		return apperr.Wrapf(err, apperr.MalformedDocument, "%s is not a valid configuration", from)
	}

	if s.Exists() {
		if _, err := s.Backup(); err != nil {
			return err
		}
	}
	if err := fsutil.WriteFileAtomic(s.Path(), data, 0o644); err != nil {
		return apperr.Wrapf(err, apperr.Internal, "writing %s", s.Path())
	}
	s.Invalidate()
	s.log.Info().Str("from", from).Msg("Configuration restored")
	return nil
}
