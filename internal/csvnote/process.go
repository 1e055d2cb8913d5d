// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvnote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/templates"
	"github.com/pdiddy/adn/pkg/types"
)

// Renderer renders a named template with extra variables.
type Renderer interface {
	Render(name, source string, vars map[string]any) (string, error)
}

// Recorder receives the outcome of every row.
type Recorder interface {
	Record(ctx context.Context, o types.Outcome) error
}

// Converter writes CSV records as numbered notes into a directory.
type Converter struct {
	outDir   string
	renderer Renderer
	template string
	out      io.Writer
	log      zerolog.Logger
	recorder Recorder
	runID    string
	now      func() time.Time
	warned   bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithRenderer renders notes through r. Without one every note uses
// Fallback.
func WithRenderer(r Renderer) Option {
	return func(c *Converter) { c.renderer = r }
}

// WithTemplate overrides the template name (csv_record).
func WithTemplate(name string) Option {
	return func(c *Converter) { c.template = name }
}

// WithOutput sets where per-row status lines are printed.
func WithOutput(w io.Writer) Option {
	return func(c *Converter) { c.out = w }
}

// WithLogger sets the converter's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) { c.log = l }
}

// WithRecorder attaches a recorder and the run ID stamped on outcomes.
func WithRecorder(r Recorder, runID string) Option {
	return func(c *Converter) {
		c.recorder = r
		c.runID = runID
	}
}

// NewConverter creates outDir if needed.
func NewConverter(outDir string, opts ...Option) (*Converter, error) {
	c := &Converter{
		outDir:   outDir,
		template: templates.CSVRecordName,
		out:      io.Discard,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperr.Wrapf(err, apperr.Internal, "creating %s", outDir)
	}
	return c, nil
}

// Content returns the note body for r. Any rendering failure falls back to
// the fixed layout; the first fallback in a run is logged as a warning.
func (c *Converter) Content(r Record) string {
	if c.renderer == nil {
		return Fallback(r)
	}
	out, err := c.renderer.Render(c.template, "", r.Vars())
	if err != nil {
		ev := c.log.Debug()
		if !c.warned {
			ev = c.log.Warn()
			c.warned = true
		}
		ev.Err(err).Str("template", c.template).Msg("Using built-in note layout")
		return Fallback(r)
	}
	return out
}

// Process validates path, then writes one note per row numbered from
// start. Whole-file problems are returned before anything is written; a
// row that cannot be written is logged and skipped. It returns the number
// of notes written.
func (c *Converter) Process(ctx context.Context, path string, start int) (int, error) {
	if _, err := Validate(path); err != nil {
		return 0, err
	}
	records, enc, err := Read(path)
	if err != nil {
		return 0, err
	}
	c.log.Info().Str("csv", path).Str("encoding", enc).Int("records", len(records)).Msg("CSV loaded")

	created := 0
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		name := FileName(start + i)
		o := types.Outcome{
			RunID:     c.runID,
			Mode:      types.ModeCSV,
			Input:     fmt.Sprintf("%s#%d", path, i+1),
			Output:    filepath.Join(c.outDir, name),
			CreatedAt: c.now(),
		}

		if err := os.WriteFile(o.Output, []byte(c.Content(rec)), 0o644); err != nil {
			o.Status = types.StatusFailed
			o.Error = err.Error()
			c.log.Error().Err(err).Int("row", i+1).Str("output", o.Output).Msg("Writing note failed")
			fmt.Fprintf(c.out, "failed: %s (%v)\n", name, err)
		} else {
			o.Status = types.StatusGenerated
			created++
			fmt.Fprintf(c.out, "created: %s\n", name)
		}
		c.record(ctx, o)
	}

	fmt.Fprintf(c.out, "\nCSV summary: %d of %d records written to %s\n", created, len(records), c.outDir)
	c.log.Info().Int("created", created).Int("records", len(records)).Msg("CSV converted")
	return created, nil
}

func (c *Converter) record(ctx context.Context, o types.Outcome) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, o); err != nil {
		c.log.Warn().Err(err).Str("input", o.Input).Msg("Recording outcome failed")
	}
}

var noteFilePattern = regexp.MustCompile(`^(\d{3,})\.md$`)

// NoteFiles returns the numbered note files (NNN.md) in dir, sorted by
// number. A missing directory has none.
func NoteFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	type numbered struct {
		n    int
		path string
	}
	var found []numbered
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := noteFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{n, filepath.Join(dir, e.Name())})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

// NextNumber returns one more than the highest note number in dir, or 1
// when there are none.
func NextNumber(dir string) (int, error) {
	notes, err := NoteFiles(dir)
	if err != nil {
		return 0, err
	}
	if len(notes) == 0 {
		return 1, nil
	}
	last := filepath.Base(notes[len(notes)-1])
	n, _ := strconv.Atoi(noteFilePattern.FindStringSubmatch(last)[1])
	return n + 1, nil
}
