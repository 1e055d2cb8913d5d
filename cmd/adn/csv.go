// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pdiddy/adn/internal/csvnote"
	"github.com/pdiddy/adn/internal/logging"
)

var csvCmd = &cobra.Command{
	Use:   "csv-to-md",
	Short: "Convert CSV records to numbered Markdown notes",
	Long: `csv-to-md turns each row of a CSV file into its own note, numbered
001.md, 002.md, and so on. The CSV must have the columns source, doi, title
and abstract. Notes are rendered with the csv_record template when it exists
and with the built-in layout otherwise.`,
}

// --- convert ---

var csvConvertCmd = &cobra.Command{
	Use:   "convert <csv>",
	Short: "Write one note per CSV row",
	Args:  cobra.ExactArgs(1),
	RunE:  runCSVConvert,
}

func runCSVConvert(cmd *cobra.Command, args []string) error {
	src := args[0]
	outDir, _ := cmd.Flags().GetString("output-dir")
	start, _ := cmd.Flags().GetInt("start-number")
	cont, _ := cmd.Flags().GetBool("continue")
	force, _ := cmd.Flags().GetBool("force")

	if outDir == "" {
		outDir = "."
	}
	if start < 1 {
		start = 1
	}

	existing, err := csvnote.NoteFiles(outDir)
	if err != nil {
		return err
	}
	if cont {
		next, err := csvnote.NextNumber(outDir)
		if err != nil {
			return err
		}
		start = next
	}

	if mds, _ := filepath.Glob(filepath.Join(outDir, "*.md")); len(mds) > 0 && !force && !cont {
		pterm.Warning.Printfln("%d .md file(s) already exist in %s and may be overwritten", len(mds), outDir)
		ok, err := confirm("Continue?", "--force")
		if err != nil {
			return err
		}
		if !ok {
			pterm.Warning.Println("Cancelled")
			return nil
		}
	}

	opts := []csvnote.Option{
		csvnote.WithOutput(cli.out),
		csvnote.WithLogger(logging.Component(cli.log, "csv")),
	}
	if engine, err := cli.loadEngine(); err == nil {
		opts = append(opts, csvnote.WithRenderer(engine))
	} else {
		cli.log.Warn().Err(err).Msg("Templates unavailable; using the built-in note layout")
	}
	if j := cli.openJournal(); j != nil {
		opts = append(opts, csvnote.WithRecorder(j, cli.runID))
	}
	conv, err := csvnote.NewConverter(outDir, opts...)
	if err != nil {
		return err
	}

	pterm.Info.Printfln("Converting %s into %s starting at %s", src, outDir, csvnote.FileName(start))
	created, err := conv.Process(cmd.Context(), src, start)
	if err != nil {
		return err
	}
	if created == 0 {
		pterm.Warning.Println("No notes were written")
		return nil
	}
	pterm.Success.Printfln("%d note(s) written to %s", created, outDir)
	if len(existing) > 0 && cont {
		pterm.Info.Printfln("Continued after %d existing note(s)", len(existing))
	}
	return nil
}

// --- validate ---

var csvValidateCmd = &cobra.Command{
	Use:   "validate <csv>",
	Short: "Check that a CSV has the required columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		header, err := csvnote.Validate(args[0])
		if err != nil {
			return err
		}
		records, enc, err := csvnote.Read(args[0])
		if err != nil {
			return err
		}
		pterm.Success.Printfln("%s is valid", args[0])
		pterm.Printfln("Encoding: %s", enc)
		pterm.Printfln("Columns:  %s", strings.Join(header, ", "))
		pterm.Printfln("Records:  %d", len(records))
		return nil
	},
}

func init() {
	csvConvertCmd.Flags().StringP("output-dir", "o", "", "output directory (default: current directory)")
	csvConvertCmd.Flags().IntP("start-number", "s", 1, "number of the first note")
	csvConvertCmd.Flags().Bool("continue", false, "start after the highest existing NNN.md in the output directory")
	csvConvertCmd.Flags().BoolP("force", "f", false, "do not ask before writing into a directory with .md files")

	csvCmd.AddCommand(csvConvertCmd, csvValidateCmd)
	rootCmd.AddCommand(csvCmd)
}
