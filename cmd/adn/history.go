// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/adn/internal/history"
	"github.com/pdiddy/adn/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation outcomes",
	Long: `History lists the outcomes recorded by gen-md-from-pdf and csv-to-md,
newest first. --runs groups them by invocation. The journal is an audit
trail only; whether a PDF is processed is always decided by its note.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	runs, _ := cmd.Flags().GetBool("runs")
	status, _ := cmd.Flags().GetString("status")
	pruneDays, _ := cmd.Flags().GetInt("prune-days")

	j := cli.openJournal()
	if j == nil {
		return fmt.Errorf("history is unavailable (see the log for details)")
	}
	ctx := cmd.Context()

	if pruneDays > 0 {
		n, err := j.Prune(ctx, time.Now().AddDate(0, 0, -pruneDays))
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Removed %d outcome(s) older than %d day(s)", n, pruneDays)
		return nil
	}

	var data any
	if runs {
		rs, err := j.Runs(ctx, limit)
		if err != nil {
			return err
		}
		if !asJSON && !asYAML {
			return printRuns(rs)
		}
		data = rs
	} else {
		outcomes, err := j.Recent(ctx, history.Query{Limit: limit, Status: types.Status(status)})
		if err != nil {
			return err
		}
		if !asJSON && !asYAML {
			return printOutcomes(outcomes)
		}
		data = outcomes
	}

	if asJSON {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	enc := yaml.NewEncoder(cli.out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func printOutcomes(outcomes []types.Outcome) error {
	if len(outcomes) == 0 {
		pterm.Info.Println("No outcomes recorded yet")
		return nil
	}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		detail := filepath.Base(o.Output)
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []string{
			o.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(o.Mode),
			string(o.Status),
			filepath.Base(o.Input),
			detail,
		})
	}
	return printTable([]string{"Time", "Mode", "Status", "Input", "Output / error"}, rows)
}

func printRuns(runs []history.RunSummary) error {
	if len(runs) == 0 {
		pterm.Info.Println("No runs recorded yet")
		return nil
	}
	count := func(r history.RunSummary, s types.Status) string {
		return strconv.Itoa(r.Counts[string(s)])
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.RunID[:min(8, len(r.RunID))],
			string(r.Mode),
			count(r, types.StatusGenerated),
			count(r, types.StatusSkippedExists),
			count(r, types.StatusSkippedInvalid),
			count(r, types.StatusFailed),
		})
	}
	return printTable([]string{"Started", "Run", "Mode", "Generated", "Skipped", "Invalid", "Failed"}, rows)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of entries (0 for all)")
	historyCmd.Flags().Bool("json", false, "print JSON")
	historyCmd.Flags().Bool("yaml", false, "print YAML")
	historyCmd.Flags().Bool("runs", false, "summarize by run")
	historyCmd.Flags().String("status", "", "only show outcomes with this status")
	historyCmd.Flags().Int("prune-days", 0, "delete outcomes older than this many days")
	historyCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(historyCmd)
}
