// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package files

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/adn/internal/apperr"
)

// PDFExt is the input extension, compared case-insensitively.
const PDFExt = ".pdf"

// DefaultPattern matches every PDF directly inside a directory.
const DefaultPattern = "*.pdf"

var pdfMagic = []byte("%PDF-")

// CheckDir verifies that dir exists and is a directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.Newf(apperr.DirectoryNotFound, "directory %s does not exist", dir)
	}
	if err != nil {
		return apperr.Wrapf(err, apperr.Internal, "reading %s", dir)
	}
	if !info.IsDir() {
		return apperr.Newf(apperr.NotADirectory, "%s is not a directory", dir)
	}
	return nil
}

// FindMatching returns the PDFs under dir whose relative path matches
// pattern. Patterns use doublestar syntax, so "**/*.pdf" recurses. Results
// are sorted and only include regular files with a .pdf extension,
// whatever the pattern allows.
func FindMatching(dir, pattern string) ([]string, error) {
	if err := CheckDir(dir); err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, apperr.Newf(apperr.InvalidInput, "invalid pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), filepath.ToSlash(pattern))
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.Internal, "matching %s in %s", pattern, dir)
	}

	var found []string
	for _, m := range matches {
		if !IsPDFName(m) {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(m))
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		found = append(found, path)
	}
	sort.Strings(found)
	return found, nil
}

// IsPDFName reports whether name has a .pdf extension in any case.
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), PDFExt)
}

// ValidatePDF checks that path is a non-empty regular file with a .pdf
// extension whose first bytes are the PDF magic number.
func ValidatePDF(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.Newf(apperr.NotFound, "file %s does not exist", path)
	}
	if err != nil {
		return apperr.Wrapf(err, apperr.Internal, "reading %s", path)
	}
	if !info.Mode().IsRegular() {
		return apperr.Newf(apperr.InvalidPDF, "%s is not a regular file", path)
	}
	if !IsPDFName(path) {
		return apperr.Newf(apperr.InvalidPDF, "%s does not have a .pdf extension", path)
	}
	if info.Size() == 0 {
		return apperr.Newf(apperr.InvalidPDF, "%s is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return apperr.Wrapf(err, apperr.Internal, "opening %s", path)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.Wrapf(err, apperr.Internal, "reading header of %s", path)
	}
	if !bytes.HasPrefix(header[:n], pdfMagic) {
		return apperr.Newf(apperr.InvalidPDF, "%s is not a PDF (bad header)", path)
	}
	return nil
}
