// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adn/internal/config"
	"github.com/pdiddy/adn/internal/generate"
	"github.com/pdiddy/adn/internal/history"
	"github.com/pdiddy/adn/internal/logging"
	"github.com/pdiddy/adn/internal/opener"
	"github.com/pdiddy/adn/internal/templates"
)

// app holds the per-invocation collaborators. The engine and the journal
// are opened on first use so that commands which never render or record
// leave no files behind.
type app struct {
	paths    config.Paths
	store    *config.Store
	log      zerolog.Logger
	closeLog func() error
	runID    string
	out      io.Writer
	quiet    bool

	engine    *templates.Engine
	journal   *history.Journal
	noJournal bool
}

// cli is set by setupApp before any command runs.
var cli *app

func setupApp(cmd *cobra.Command, args []string) error {
	paths := config.ResolvePaths(viper.GetString("config_dir"), viper.GetString("templates_dir"))
	quiet := viper.GetBool("quiet")

	level := config.NewStore(paths).Snapshot().String(config.KeyLogLevel)
	log, closeLog := logging.Setup(logging.Options{
		Level:     level,
		Verbosity: viper.GetInt("verbose"),
		Quiet:     quiet,
		File:      paths.LogFile(),
	})

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableColor()
	}
	if quiet {
		pterm.Info = *pterm.Info.WithWriter(io.Discard)
		pterm.Success = *pterm.Success.WithWriter(io.Discard)
	}

	cli = &app{
		paths:    paths,
		store:    config.NewStore(paths, config.WithLogger(logging.Component(log, "config"))),
		log:      log,
		closeLog: closeLog,
		runID:    uuid.NewString(),
		out:      cmd.OutOrStdout(),
		quiet:    quiet,
	}
	log.Debug().
		Str("command", cmd.CommandPath()).
		Str("config_dir", paths.Dir).
		Str("templates_dir", paths.TemplatesDir).
		Str("run_id", cli.runID).
		Msg("Starting")
	return nil
}

func closeApp() {
	if cli == nil {
		return
	}
	if cli.journal != nil {
		if err := cli.journal.Close(); err != nil {
			cli.log.Warn().Err(err).Msg("Closing history journal")
		}
	}
	_ = cli.closeLog()
}

// settings returns the effective configuration, falling back to the
// defaults when the document is missing or unreadable.
func (a *app) settings() config.Config {
	return a.store.Snapshot()
}

// loadEngine returns the template engine, creating the templates directory
// and the default template on first use.
func (a *app) loadEngine() (*templates.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	cfg := a.settings()
	e, err := templates.NewEngine(a.paths.TemplatesDir,
		templates.WithVersion(version),
		templates.WithDateFormat(cfg.String(config.KeyDateFormat)),
		templates.WithLogger(logging.Component(a.log, "templates")),
	)
	if err != nil {
		return nil, err
	}
	a.engine = e
	return e, nil
}

// openJournal returns the outcome journal, or nil when it cannot be opened.
// Generation never fails because of the journal.
func (a *app) openJournal() *history.Journal {
	if a.journal != nil || a.noJournal {
		return a.journal
	}
	j, err := history.Open(a.paths.HistoryFile())
	if err != nil {
		a.log.Warn().Err(err).Str("path", a.paths.HistoryFile()).Msg("History disabled")
		a.noJournal = true
		return nil
	}
	a.journal = j
	return j
}

// generator builds a Generator wired to the engine, the configuration and
// the journal.
func (a *app) generator() (*generate.Generator, error) {
	e, err := a.loadEngine()
	if err != nil {
		return nil, err
	}
	opts := []generate.Option{
		generate.WithOutput(a.out),
		generate.WithLogger(logging.Component(a.log, "generate")),
	}
	if j := a.openJournal(); j != nil {
		opts = append(opts, generate.WithRecorder(j, a.runID))
	}
	return generate.New(e, a.settings(), opts...), nil
}

// maybeOpen opens a generated note when auto_open_generated is set.
func (a *app) maybeOpen(path string) {
	if !a.settings().Bool(config.KeyAutoOpenGenerated) {
		return
	}
	o, err := opener.Detect()
	if err != nil {
		a.log.Warn().Err(err).Msg("Cannot open generated note")
		return
	}
	if err := o.Open(path); err != nil {
		a.log.Warn().Err(err).Msg("Cannot open generated note")
		return
	}
	a.log.Debug().Str("path", path).Str("opener", o.Name()).Msg("Opened note")
}
