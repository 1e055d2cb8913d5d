// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvnote turns the rows of a bibliographic CSV export into
// numbered Markdown notes (001.md, 002.md, ...).
package csvnote

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/pdiddy/adn/internal/apperr"
)

// RequiredColumns are the header fields every CSV must carry.
var RequiredColumns = []string{"source", "doi", "title", "abstract"}

// Record is one CSV row reduced to the note fields. Values are trimmed.
type Record struct {
	Source   string
	DOI      string
	Title    string
	Abstract string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type candidate struct {
	name   string
	decode func([]byte) (string, error)
}

// encodings are tried in order until one decodes the whole file.
var encodings = []candidate{
	{"utf-8-sig", func(b []byte) (string, error) {
		if !bytes.HasPrefix(b, utf8BOM) {
			return "", errors.New("no byte order mark")
		}
		return strictUTF8(b[len(utf8BOM):])
	}},
	{"utf-8", strictUTF8},
	{"latin-1", func(b []byte) (string, error) {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(out), err
	}},
	{"cp1252", func(b []byte) (string, error) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(b)
		return string(out), err
	}},
}

func strictUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("invalid UTF-8")
	}
	return string(b), nil
}

// Decode returns data as text along with the name of the encoding that
// decoded it.
func Decode(data []byte) (string, string, error) {
	for _, c := range encodings {
		if text, err := c.decode(data); err == nil {
			return text, c.name, nil
		}
	}
	return "", "", errors.New("no candidate encoding could decode the file")
}

// load checks that path is a readable file and returns a CSV reader over
// its decoded contents.
func load(path string) (*csv.Reader, string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", apperr.Newf(apperr.NotFound, "CSV file %s does not exist", path)
	}
	if err != nil {
		return nil, "", apperr.Wrapf(err, apperr.Internal, "reading %s", path)
	}
	if info.IsDir() {
		return nil, "", apperr.Newf(apperr.InvalidInput, "%s is a directory, not a CSV file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", apperr.Wrapf(err, apperr.Internal, "reading %s", path)
	}
	text, enc, err := Decode(data)
	if err != nil {
		return nil, "", apperr.Wrapf(err, apperr.InvalidInput, "decoding %s", path)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r, enc, nil
}

func readHeader(r *csv.Reader, path string) ([]string, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.InvalidInput, "parsing header of %s", path)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	return header, nil
}

// Validate checks that path is a CSV file whose header carries every
// required column, and returns the header.
func Validate(path string) ([]string, error) {
	r, _, err := load(path)
	if err != nil {
		return nil, err
	}
	header, err := readHeader(r, path)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return header, apperr.Newf(apperr.MissingColumns, "missing required columns: %s", strings.Join(missing, ", ")).
			WithDetail("columns", missing)
	}
	return header, nil
}

// Read returns every data row of path as a Record, in file order, and the
// encoding that decoded the file. Rows shorter than the header leave the
// missing fields empty.
func Read(path string) ([]Record, string, error) {
	r, enc, err := load(path)
	if err != nil {
		return nil, "", err
	}
	header, err := readHeader(r, path)
	if err != nil {
		return nil, "", err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, "", apperr.Wrapf(err, apperr.InvalidInput, "parsing %s", path)
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Source:   field(row, "source"),
			DOI:      field(row, "doi"),
			Title:    field(row, "title"),
			Abstract: field(row, "abstract"),
		})
	}
	return records, enc, nil
}

// FileName returns the note file name for sequence number n: at least
// three digits, zero-padded.
func FileName(n int) string {
	return fmt.Sprintf("%03d.md", n)
}
