// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the adn CLI. It generates extraction
// notes for PDFs from templates and converts CSV records to numbered
// Markdown notes.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the adn CLI.
var rootCmd = &cobra.Command{
	Use:   "adn",
	Short: "Generate extraction notes from PDFs and Markdown notes from CSV records",
	Long: `adn automates the creation of structured Markdown notes.

gen-md-from-pdf renders a template for each PDF into <name>_extraccion.md.
csv-to-md turns every row of a CSV with source, doi, title and abstract
columns into a numbered note (001.md, 002.md, ...). config manages the
settings document and the templates directory.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("adn {{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "print the version and exit")

	pf := rootCmd.PersistentFlags()
	pf.CountP("verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.String("config-dir", "", "configuration directory (default: ~/.adn)")
	pf.String("templates-dir", "", "templates directory (default: <config-dir>/templates)")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = viper.BindPFlag("config_dir", pf.Lookup("config-dir"))
	_ = viper.BindPFlag("templates_dir", pf.Lookup("templates-dir"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		pterm.Warning.Printfln("Ignoring .env: %v", err)
	}
	viper.SetEnvPrefix("ADN")
	viper.AutomaticEnv()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeApp()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			pterm.Warning.Println("Operation interrupted")
		} else {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}
