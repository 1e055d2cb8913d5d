// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/config"
	"github.com/pdiddy/adn/internal/csvnote"
	"github.com/pdiddy/adn/internal/fsutil"
	"github.com/pdiddy/adn/internal/templates"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration and templates",
	Long: `Config manages the settings document (config.yaml in the configuration
directory) and the templates used to render notes. Values not present in the
document fall back to the built-in defaults.`,
}

var keyDescriptions = map[string]string{
	config.KeyDefaultTemplate:   "template used for extraction notes",
	config.KeyOutputSuffix:      "suffix appended to note file names",
	config.KeyDefaultOutputDir:  "output directory, relative to each PDF",
	config.KeyLogLevel:          "log level for the log file",
	config.KeyAutoOpenGenerated: "open generated notes automatically",
	config.KeyPreserveStructure: "keep the input directory layout",
	config.KeyDateFormat:        "strftime pattern for the date value",
	config.KeyEncoding:          "text encoding of generated notes",
	config.KeyMaxFilenameLength: "maximum length of a note file stem",
}

// --- init ---

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, err := cli.store.Init(force)
		if apperr.Is(err, apperr.AlreadyInitialized) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		if err != nil {
			return err
		}
		if _, err := cli.loadEngine(); err != nil {
			return err
		}
		pterm.Success.Printfln("Configuration initialized at %s", path)
		return showConfig()
	},
}

// --- show ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig()
	},
}

func showConfig() error {
	cfg, err := cli.store.Effective()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(cfg))
	for _, key := range cfg.Keys() {
		v, _ := cfg.Lookup(key)
		rows = append(rows, []string{key, v.String(), keyDescriptions[key]})
	}
	pterm.DefaultSection.Printfln("Configuration (%s)", cli.store.Path())
	if err := printTable([]string{"Key", "Value", "Description"}, rows); err != nil {
		return err
	}
	pterm.Println()
	printPaths()
	return nil
}

// --- get ---

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, ok := cli.settings().Lookup(args[0])
		if !ok {
			return apperr.Newf(apperr.NotFound, "unknown key %q (known keys: %s)",
				args[0], strings.Join(config.KnownKeys(), ", "))
		}
		fmt.Fprintln(cli.out, v.String())
		return nil
	},
}

// --- set ---

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Long: `Set converts value to the type the key expects (true/false, yes/no,
on/off and 1/0 for booleans; integers for max_filename_length), validates it
and writes it to the document. Keys adn does not know are stored as text.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]
		if _, known := config.KnownKind(key); !known {
			pterm.Warning.Printfln("%s is not a known key; storing it as text", key)
		}
		v, err := config.ParseValue(key, raw)
		if err != nil {
			return err
		}
		if err := cli.store.Set(key, v); err != nil {
			return err
		}
		pterm.Success.Printfln("%s = %s", key, v)
		return nil
	},
}

// --- path ---

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printPaths()
		return nil
	},
}

func printPaths() {
	p := cli.store.Paths()
	state := func(path string) string {
		if fsutil.Exists(path) {
			return "exists"
		}
		return "missing"
	}
	rows := [][]string{
		{"Configuration file", p.File(), state(p.File())},
		{"Configuration directory", p.Dir, state(p.Dir)},
		{"Templates directory", p.TemplatesDir, state(p.TemplatesDir)},
		{"Logs directory", p.LogsDir(), state(p.LogsDir())},
		{"History database", p.HistoryFile(), state(p.HistoryFile())},
	}
	if err := printTable([]string{"Location", "Path", "State"}, rows); err != nil {
		cli.log.Debug().Err(err).Msg("Rendering paths table")
	}
}

// --- template ---

var configTemplateCmd = &cobra.Command{
	Use:   "template [name]",
	Short: "Show, create or replace a template",
	Long: `Template prints the source of the named template (default: default).
A template that does not exist yet is created from the built-in template of
the same name, or from the default template when there is none.
--edit-content replaces the template with the contents of a file, --render
previews the template rendered with sample values, and --list prints the
available templates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigTemplate,
}

func runConfigTemplate(cmd *cobra.Command, args []string) error {
	engine, err := cli.loadEngine()
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		names, err := engine.List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cli.out, n)
		}
		return nil
	}

	name := templates.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	if err := templates.ValidateName(name); err != nil {
		return err
	}

	if from, _ := cmd.Flags().GetString("edit-content"); from != "" {
		data, err := os.ReadFile(from)
		if err != nil {
			return apperr.Wrapf(err, apperr.NotFound, "reading %s", from)
		}
		path, err := engine.Create(name, string(data), true)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Template %s updated (%s)", name, path)
		return nil
	}

	if !fsutil.Exists(engine.Path(name)) {
		body, from, err := seedTemplate(engine, name)
		if err != nil {
			return err
		}
		path, err := engine.Create(name, body, false)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Template %s created from %s (%s)", name, from, path)
	}

	if render, _ := cmd.Flags().GetBool("render"); render {
		out, err := engine.Render(name, "", sampleVars())
		if err != nil {
			return err
		}
		printMarkdown(out)
		return nil
	}

	body, err := engine.Raw(name)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Template %s", engine.Path(name))
	fmt.Fprint(cli.out, body)
	return nil
}

// seedTemplate returns the body a new template starts from: the built-in of
// the same name when there is one, otherwise the default template.
func seedTemplate(engine *templates.Engine, name string) (string, string, error) {
	if body, ok := templates.Builtin(name); ok {
		return body, "built-in " + name, nil
	}
	body, err := engine.Raw(templates.DefaultName)
	if err != nil {
		return "", "", err
	}
	return body, templates.DefaultName, nil
}

// sampleVars stands in for a source file or a CSV record when previewing a
// template.
func sampleVars() map[string]any {
	rec := csvnote.Record{
		Source:   "Scopus",
		DOI:      "10.1000/sample",
		Title:    "A sample record",
		Abstract: "First line of the abstract.\nSecond line.",
	}
	vars := rec.Vars()
	vars["file_stem"] = "sample"
	vars["file_name"] = "sample.pdf"
	vars["file_path"] = "/path/to/sample.pdf"
	vars["file_size"] = int64(1536000)
	return vars
}

// --- reset ---

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := confirm("Reset the configuration to its defaults?", "--yes")
			if err != nil {
				return err
			}
			if !ok {
				pterm.Warning.Println("Cancelled")
				return nil
			}
		}
		if err := cli.store.Reset(); err != nil {
			return err
		}
		pterm.Success.Println("Configuration reset to defaults")
		return nil
	},
}

// --- validate ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := cli.store.Validate()
		for _, w := range res.Warnings {
			pterm.Warning.Println(w)
		}
		for _, e := range res.Errors {
			pterm.Error.Println(e)
		}
		if !res.Valid {
			return apperr.Newf(apperr.InvalidInput, "configuration has %d error(s)", len(res.Errors))
		}
		pterm.Success.Println("Configuration is valid")
		return nil
	},
}

// --- backup / restore ---

var configBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save a timestamped copy of the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cli.store.Backup()
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Backup written to %s", path)
		return nil
	},
}

var configRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the configuration with a backup",
	Long: `Restore copies file over the configuration document after checking that
it is a valid settings mapping. The current document is backed up first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := confirm(fmt.Sprintf("Replace the configuration with %s?", args[0]), "--yes")
			if err != nil {
				return err
			}
			if !ok {
				pterm.Warning.Println("Cancelled")
				return nil
			}
		}
		if err := cli.store.Restore(args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln("Configuration restored from %s", args[0])
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing configuration")
	configTemplateCmd.Flags().String("edit-content", "", "replace the template with the contents of this file")
	configTemplateCmd.Flags().Bool("render", false, "preview the template rendered with sample values")
	configTemplateCmd.Flags().Bool("list", false, "list the available templates")
	configResetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	configRestoreCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	configCmd.AddCommand(
		configInitCmd,
		configShowCmd,
		configGetCmd,
		configSetCmd,
		configPathCmd,
		configTemplateCmd,
		configResetCmd,
		configValidateCmd,
		configBackupCmd,
		configRestoreCmd,
	)
	rootCmd.AddCommand(configCmd)
}
