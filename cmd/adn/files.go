// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pdiddy/adn/internal/config"
	"github.com/pdiddy/adn/internal/files"
	"github.com/pdiddy/adn/internal/templates"
)

// namer returns the note namer for the current configuration.
func namer() files.Namer {
	cfg := cli.settings()
	return files.Namer{
		Suffix:    cfg.String(config.KeyOutputSuffix),
		MaxLength: cfg.Int(config.KeyMaxFilenameLength),
	}
}

// --- list-files ---

var listFilesCmd = &cobra.Command{
	Use:   "list-files [dir]",
	Short: "List the PDFs in a directory and whether they have a note",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)
		pattern, _ := cmd.Flags().GetString("pattern")
		onlyProcessed, _ := cmd.Flags().GetBool("processed")
		onlyPending, _ := cmd.Flags().GetBool("pending")

		processed, pending, err := files.Partition(dir, pattern, namer())
		if err != nil {
			return err
		}
		if len(processed)+len(pending) == 0 {
			pterm.Warning.Printfln("No PDF files in %s", dir)
			return nil
		}

		var rows [][]string
		add := func(paths []string, state string) {
			for _, p := range paths {
				var size int64
				if info, err := os.Stat(p); err == nil {
					size = info.Size()
				}
				rows = append(rows, []string{filepath.Base(p), templates.FileSize(size), state})
			}
		}
		if !onlyPending {
			add(processed, "processed")
		}
		if !onlyProcessed {
			add(pending, "pending")
		}

		pterm.DefaultSection.Printfln("PDF files in %s", dir)
		return printTable([]string{"File", "Size", "Status"}, rows)
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status [dir]",
	Short: "Show how many PDFs in a directory have been processed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)
		n := namer()

		st, err := files.Stats(dir, files.DefaultPattern, n)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Printfln("Status of %s", dir)
		pterm.Printfln("Total PDFs: %d (%s)", st.Total, templates.FileSize(st.TotalBytes))
		pterm.Printfln("Processed:  %d", st.Processed)
		pterm.Printfln("Pending:    %d", st.Pending)
		pterm.Printfln("Completion: %.1f%%", st.CompletionRate)

		if st.Pending == 0 {
			return nil
		}
		_, pending, err := files.Partition(dir, files.DefaultPattern, n)
		if err != nil {
			return err
		}
		names := make([]string, len(pending))
		for i, p := range pending {
			names[i] = filepath.Base(p)
		}
		pterm.Println()
		pterm.Warning.Println("Pending files:")
		listSample(names, 5)
		return nil
	},
}

// --- clean ---

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove temporary files",
	Long:  `Clean removes *.tmp, *.temp, *~ and .adn_cache/* files from dir.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")

		found, err := files.FindTemporary(dir)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			pterm.Success.Println("No temporary files to clean")
			return nil
		}

		names := make([]string, len(found))
		for i, p := range found {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				rel = p
			}
			names[i] = rel
		}
		pterm.Warning.Printfln("Found %d temporary file(s):", len(found))
		listSample(names, len(names))

		if dryRun {
			pterm.Info.Println("Dry run: nothing was removed")
			return nil
		}
		if !force {
			ok, err := confirm("Remove these files?", "--force")
			if err != nil {
				return err
			}
			if !ok {
				pterm.Warning.Println("Cancelled")
				return nil
			}
		}

		removed := 0
		for _, p := range found {
			if err := os.Remove(p); err != nil {
				pterm.Error.Printfln("Removing %s: %v", p, err)
				continue
			}
			removed++
			cli.log.Debug().Str("path", p).Msg("Removed")
		}
		pterm.Success.Printfln("Removed %d temporary file(s)", removed)
		return nil
	},
}

func init() {
	listFilesCmd.Flags().StringP("pattern", "p", files.DefaultPattern, "file name pattern")
	listFilesCmd.Flags().Bool("processed", false, "only list PDFs that have a note")
	listFilesCmd.Flags().Bool("pending", false, "only list PDFs without a note")
	listFilesCmd.MarkFlagsMutuallyExclusive("processed", "pending")

	cleanCmd.Flags().Bool("dry-run", false, "only show what would be removed")
	cleanCmd.Flags().BoolP("force", "f", false, "do not ask for confirmation")

	rootCmd.AddCommand(listFilesCmd, statusCmd, cleanCmd)
}
