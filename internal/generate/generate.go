// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate writes extraction notes for PDFs. Each input is
// validated, named, rendered and written on its own; a failure on one input
// never stops the rest of a batch.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/config"
	"github.com/pdiddy/adn/internal/files"
	"github.com/pdiddy/adn/internal/fsutil"
	"github.com/pdiddy/adn/pkg/types"
)

// Renderer produces note content from a named template and a source file.
type Renderer interface {
	Render(name, source string, vars map[string]any) (string, error)
}

// Recorder receives the outcome of every item.
type Recorder interface {
	Record(ctx context.Context, o types.Outcome) error
}

// Options control a generation run.
type Options struct {
	// OutputDir receives the notes. Empty means the configured
	// default_output_dir, taken relative to each input's directory.
	OutputDir string

	// Template overrides the configured default_template.
	Template string

	// Overwrite replaces existing notes instead of skipping them.
	Overwrite bool

	// Backup copies an existing note to <note>.bak before overwriting it.
	Backup bool

	// Vars are extra rendering variables.
	Vars map[string]any
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Generated int
	Skipped   int
	Invalid   int
	Failed    int
	Outcomes  []types.Outcome
}

// Total returns the number of inputs handled.
func (r BatchResult) Total() int {
	return r.Generated + r.Skipped + r.Invalid + r.Failed
}

// Errors returns the number of invalid and failed inputs.
func (r BatchResult) Errors() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status.IsError() {
			n++
		}
	}
	return n
}

// HasFailures reports whether any input was invalid or failed.
func (r BatchResult) HasFailures() bool {
	return r.Errors() > 0
}

func (r *BatchResult) add(o types.Outcome) {
	switch o.Status {
	case types.StatusGenerated:
		r.Generated++
	case types.StatusSkippedExists:
		r.Skipped++
	case types.StatusSkippedInvalid:
		r.Invalid++
	case types.StatusFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Generator renders and writes notes.
type Generator struct {
	renderer Renderer
	cfg      config.Config
	namer    files.Namer
	out      io.Writer
	log      zerolog.Logger
	recorder Recorder
	runID    string
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithOutput sets where per-item status lines are printed.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) { g.out = w }
}

// WithLogger sets the generator's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithRecorder attaches a recorder and the run ID stamped on outcomes.
func WithRecorder(r Recorder, runID string) Option {
	return func(g *Generator) {
		g.recorder = r
		g.runID = runID
	}
}

// WithClock sets the time source for outcome timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New returns a Generator that reads suffix, filename limit, default
// template and default output directory from cfg.
func New(r Renderer, cfg config.Config, opts ...Option) *Generator {
	g := &Generator{
		renderer: r,
		cfg:      cfg,
		namer: files.Namer{
			Suffix:    cfg.String(config.KeyOutputSuffix),
			MaxLength: cfg.Int(config.KeyMaxFilenameLength),
		},
		out: io.Discard,
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Namer returns the namer derived from the configuration.
func (g *Generator) Namer() files.Namer { return g.namer }

// OutputDir returns the directory the note for input goes to.
func (g *Generator) OutputDir(input, override string) string {
	if override != "" {
		return override
	}
	dir := g.cfg.String(config.KeyDefaultOutputDir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(filepath.Dir(input), dir)
}

// GenerateFile writes the note for a single PDF and returns its path. An
// existing note without opts.Overwrite is an ALREADY_EXISTS error.
func (g *Generator) GenerateFile(ctx context.Context, input string, opts Options) (string, error) {
	o, err := g.generate(input, opts)
	g.record(ctx, o)
	return o.Output, err
}

// GenerateBatch processes inputs in order, printing one status line per
// input and a summary. Item errors are counted, not returned; the error
// is non-nil only when ctx is cancelled, in which case the remaining
// inputs are not started.
func (g *Generator) GenerateBatch(ctx context.Context, inputs []string, opts Options) (BatchResult, error) {
	var result BatchResult
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			g.log.Warn().Int("remaining", len(inputs)-result.Total()).Msg("Batch interrupted")
			return result, err
		}

		o, err := g.generate(input, opts)
		g.record(ctx, o)
		result.add(o)

		name := filepath.Base(input)
		switch o.Status {
		case types.StatusGenerated:
			fmt.Fprintf(g.out, "generated: %s -> %s\n", name, o.Output)
		case types.StatusSkippedExists:
			fmt.Fprintf(g.out, "skipped: %s (already exists)\n", name)
		case types.StatusSkippedInvalid:
			fmt.Fprintf(g.out, "invalid: %s (%v)\n", name, err)
		case types.StatusFailed:
			fmt.Fprintf(g.out, "failed: %s (%v)\n", name, err)
		}
	}

	fmt.Fprintf(g.out, "\nBatch summary: %d generated, %d skipped, %d invalid, %d failed (total: %d)\n",
		result.Generated, result.Skipped, result.Invalid, result.Failed, result.Total())
	g.log.Info().
		Int("generated", result.Generated).
		Int("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Int("failed", result.Failed).
		Msg("Batch finished")
	return result, nil
}

func (g *Generator) generate(input string, opts Options) (types.Outcome, error) {
	o := types.Outcome{
		RunID:     g.runID,
		Mode:      types.ModePDF,
		Input:     input,
		CreatedAt: g.now(),
	}
	fail := func(status types.Status, err error) (types.Outcome, error) {
		o.Status = status
		o.Error = err.Error()
		g.log.Warn().Err(err).Str("input", input).Str("status", string(status)).Msg("Note not generated")
		return o, err
	}

	if err := files.ValidatePDF(input); err != nil {
		return fail(types.StatusSkippedInvalid, err)
	}

	outDir := g.OutputDir(input, opts.OutputDir)
	o.Output = g.namer.OutputPath(input, outDir)

	if fsutil.Exists(o.Output) {
		if !opts.Overwrite {
			o.Status = types.StatusSkippedExists
			g.log.Debug().Str("output", o.Output).Msg("Note already exists")
			return o, apperr.Newf(apperr.AlreadyExists, "note %s already exists", o.Output).
				WithDetail("path", o.Output)
		}
		if opts.Backup {
			bak, err := files.BackupFile(o.Output)
			if err != nil {
				return fail(types.StatusFailed, err)
			}
			g.log.Info().Str("backup", bak).Msg("Existing note backed up")
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(types.StatusFailed, apperr.Wrapf(err, apperr.Internal, "creating %s", outDir))
	}

	tmpl := opts.Template
	if tmpl == "" {
		tmpl = g.cfg.String(config.KeyDefaultTemplate)
	}
	content, err := g.renderer.Render(tmpl, input, opts.Vars)
	if err != nil {
		return fail(types.StatusFailed, err)
	}

	if err := os.WriteFile(o.Output, []byte(content), 0o644); err != nil {
		return fail(types.StatusFailed, apperr.Wrapf(err, apperr.Internal, "writing %s", o.Output))
	}

	o.Status = types.StatusGenerated
	g.log.Info().Str("input", input).Str("output", o.Output).Str("template", tmpl).Msg("Note generated")
	return o, nil
}

func (g *Generator) record(ctx context.Context, o types.Outcome) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Record(ctx, o); err != nil {
		g.log.Warn().Err(err).Str("input", o.Input).Msg("Recording outcome failed")
	}
}
