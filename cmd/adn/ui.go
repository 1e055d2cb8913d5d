// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// confirm asks a yes/no question. Without a terminal on stdin there is
// nobody to answer, so it fails and tells the user which flag skips the
// question.
func confirm(question, skipFlag string) (bool, error) {
	if !isTerminal(os.Stdin) {
		return false, fmt.Errorf("%s (stdin is not a terminal; use %s)", question, skipFlag)
	}
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(question)
}

// printTable renders rows under header.
func printTable(header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// printMarkdown renders md for the terminal, or prints it untouched when
// stdout is redirected.
func printMarkdown(md string) {
	if !isTerminal(os.Stdout) {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		cli.log.Debug().Err(err).Msg("Markdown preview failed")
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// listSample prints up to limit names as bullets, then a count of the rest.
func listSample(names []string, limit int) {
	for i, n := range names {
		if i == limit {
			pterm.Printfln("  ... and %d more", len(names)-limit)
			return
		}
		pterm.Printfln("  • %s", n)
	}
}
