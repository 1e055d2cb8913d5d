// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/files"
	"github.com/pdiddy/adn/internal/fsutil"
	"github.com/pdiddy/adn/internal/generate"
	"github.com/pdiddy/adn/internal/logging"
	"github.com/pdiddy/adn/internal/watch"
)

var pdfCmd = &cobra.Command{
	Use:   "gen-md-from-pdf",
	Short: "Generate Markdown extraction notes from PDFs",
	Long: `gen-md-from-pdf renders a template for each PDF and writes the result
next to it as <name>_extraccion.md (the suffix and output directory come from
the configuration). Existing notes are skipped unless --force is given.

PDF paths may be given directly, as in "adn gen-md-from-pdf a.pdf b.pdf", and
--all processes a directory (default: the current one) like the all
subcommand.`,
	Args: cobra.ArbitraryArgs,
	RunE: runPDF,
}

func runPDF(cmd *cobra.Command, args []string) error {
	if all, _ := cmd.Flags().GetBool("all"); all {
		if len(args) > 1 {
			return apperr.Newf(apperr.InvalidInput, "--all takes at most one directory, got %d arguments", len(args))
		}
		return runPDFAll(cmd, args)
	}
	switch len(args) {
	case 0:
		return cmd.Help()
	case 1:
		return runPDFFile(cmd, args)
	}

	gen, err := cli.generator()
	if err != nil {
		return err
	}
	return runBatch(cmd.Context(), gen, args, generateOptions(cmd))
}

// --- file subcommand ---

var pdfFileCmd = &cobra.Command{
	Use:   "file <pdf>",
	Short: "Generate the note for one PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDFFile,
}

func runPDFFile(cmd *cobra.Command, args []string) error {
	gen, err := cli.generator()
	if err != nil {
		return err
	}
	out, err := gen.GenerateFile(cmd.Context(), args[0], generateOptions(cmd))
	if apperr.Is(err, apperr.AlreadyExists) {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Created %s", out)
	cli.maybeOpen(out)
	return nil
}

// --- all subcommand ---

var pdfAllCmd = &cobra.Command{
	Use:   "all [dir]",
	Short: "Generate notes for every PDF in a directory",
	Long: `All processes the PDFs in dir (default: the current directory) whose
names match --pattern. With --skip-processed (the default) PDFs whose note
already exists are left out of the run entirely.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPDFAll,
}

func runPDFAll(cmd *cobra.Command, args []string) error {
	dir := dirArg(args)
	pattern, _ := cmd.Flags().GetString("pattern")
	skip, _ := cmd.Flags().GetBool("skip-processed")
	opts := generateOptions(cmd)

	if err := files.CheckDir(dir); err != nil {
		return err
	}
	pdfs, err := files.FindMatching(dir, pattern)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		pterm.Warning.Printfln("No PDF files matching %s in %s", pattern, dir)
		return nil
	}

	gen, err := cli.generator()
	if err != nil {
		return err
	}
	if skip && !opts.Overwrite {
		pdfs = pendingOnly(gen, pdfs, opts.OutputDir)
		if len(pdfs) == 0 {
			pterm.Success.Println("All files have already been processed")
			return nil
		}
	}
	return runBatch(cmd.Context(), gen, pdfs, opts)
}

// --- glob subcommand ---

var pdfGlobCmd = &cobra.Command{
	Use:   "glob <pattern>",
	Short: "Generate notes for the PDFs matching a glob pattern",
	Long: `Glob expands pattern relative to the current directory. ** matches any
number of directories, so "papers/**/*.pdf" walks a whole tree.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDFGlob,
}

func runPDFGlob(cmd *cobra.Command, args []string) error {
	if !doublestar.ValidatePathPattern(args[0]) {
		return apperr.Newf(apperr.InvalidInput, "invalid glob pattern %q", args[0])
	}
	matches, err := doublestar.FilepathGlob(args[0], doublestar.WithFilesOnly())
	if err != nil {
		return apperr.Wrapf(err, apperr.InvalidInput, "expanding %s", args[0])
	}
	var pdfs []string
	for _, m := range matches {
		if files.IsPDFName(m) {
			pdfs = append(pdfs, m)
		}
	}
	if len(pdfs) == 0 {
		pterm.Warning.Printfln("No PDF files match %s", args[0])
		return nil
	}
	sort.Strings(pdfs)

	gen, err := cli.generator()
	if err != nil {
		return err
	}
	return runBatch(cmd.Context(), gen, pdfs, generateOptions(cmd))
}

// --- watch subcommand ---

var pdfWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Generate notes for PDFs as they appear in a directory",
	Long: `Watch keeps running until interrupted and generates the note for every
new or rewritten PDF in dir. PDFs that already have a note are skipped unless
--force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPDFWatch,
}

func runPDFWatch(cmd *cobra.Command, args []string) error {
	dir := dirArg(args)
	pattern, _ := cmd.Flags().GetString("pattern")
	opts := generateOptions(cmd)

	gen, err := cli.generator()
	if err != nil {
		return err
	}
	w, err := watch.New(dir, pattern, watch.WithLogger(logging.Component(cli.log, "watch")))
	if err != nil {
		return err
	}

	pterm.Info.Printfln("Watching %s for %s (Ctrl+C to stop)", dir, pattern)
	return w.Run(cmd.Context(), func(ctx context.Context, path string) {
		out, err := gen.GenerateFile(ctx, path, opts)
		switch {
		case apperr.Is(err, apperr.AlreadyExists):
			pterm.Info.Printfln("Skipped %s (note exists)", filepath.Base(path))
		case err != nil:
			pterm.Error.Printfln("%s: %v", filepath.Base(path), err)
		default:
			pterm.Success.Printfln("Created %s", out)
			cli.maybeOpen(out)
		}
	})
}

// --- helpers ---

func generateOptions(cmd *cobra.Command) generate.Options {
	outDir, _ := cmd.Flags().GetString("output-dir")
	tmpl, _ := cmd.Flags().GetString("template")
	force, _ := cmd.Flags().GetBool("force")
	backup, _ := cmd.Flags().GetBool("backup")
	return generate.Options{
		OutputDir: outDir,
		Template:  tmpl,
		Overwrite: force,
		Backup:    backup,
	}
}

// pendingOnly drops the PDFs whose note already exists where this run
// would write it.
func pendingOnly(gen *generate.Generator, pdfs []string, outDir string) []string {
	namer := gen.Namer()
	var pending []string
	for _, p := range pdfs {
		if !fsutil.Exists(namer.OutputPath(p, gen.OutputDir(p, outDir))) {
			pending = append(pending, p)
		}
	}
	return pending
}

func runBatch(ctx context.Context, gen *generate.Generator, pdfs []string, opts generate.Options) error {
	pterm.Info.Printfln("Processing %d PDF files", len(pdfs))
	res, err := gen.GenerateBatch(ctx, pdfs, opts)
	if err != nil {
		return err
	}
	if res.Errors() > 0 {
		pterm.Warning.Printfln("%d file(s) could not be processed; see the log for details", res.Errors())
	}
	return nil
}

func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", "", "output directory (default: default_output_dir, relative to each PDF)")
	cmd.Flags().StringP("template", "t", "", "template name (default: default_template)")
	cmd.Flags().BoolP("force", "f", false, "overwrite existing notes")
	cmd.Flags().Bool("backup", false, "copy an existing note to .bak before overwriting it")
}

func init() {
	for _, c := range []*cobra.Command{pdfCmd, pdfFileCmd, pdfAllCmd, pdfGlobCmd, pdfWatchCmd} {
		addGenerateFlags(c)
	}

	for _, c := range []*cobra.Command{pdfCmd, pdfAllCmd} {
		c.Flags().StringP("pattern", "p", files.DefaultPattern, "file name pattern")
		c.Flags().Bool("skip-processed", true, "leave out PDFs that already have a note")
	}
	pdfCmd.Flags().BoolP("all", "a", false, "process every PDF in the directory argument")
	pdfWatchCmd.Flags().StringP("pattern", "p", files.DefaultPattern, "file name pattern")

	pdfCmd.AddCommand(pdfFileCmd, pdfAllCmd, pdfGlobCmd, pdfWatchCmd)
	rootCmd.AddCommand(pdfCmd)
}
