package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

const historyTimeLayout = "2006-01-02 15:04:05"

var (
	historyLimit  int
	historySource string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs or the archived statistics of one wiki",
	Example: `  wikistats history
  wikistats history --source fr --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().StringVar(&historySource, "source", "", "show archived snapshots of this wiki")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, release, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	defer release()

	if a.History == nil {
		return errors.New("history service not configured")
	}

	if historySource != "" {
		snaps, err := a.History.Snapshots(cmd.Context(), historySource, historyLimit)
		if err != nil {
			return fmt.Errorf("load snapshots: %w", err)
		}
		printSnapshots(cmd, a.Config.Stats.Tracked, snaps)
		return nil
	}

	runs, err := a.History.Runs(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("load runs: %w", err)
	}
	printRuns(cmd, runs)
	return nil
}

func printRuns(cmd *cobra.Command, runs []domain.RunRecord) {
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return
	}
	for _, r := range runs {
		status := successStyle.Render("ok")
		switch {
		case !r.Success():
			status = errorStyle.Render("failed")
		case r.DryRun:
			status = mutedStyle.Render("dry-run")
		}

		line := fmt.Sprintf("%s  %-8s  %d rows", r.StartedAt.Local().Format(historyTimeLayout), status, r.RowsAdded)
		if r.Initialized {
			line += ", initialised"
		}
		if len(r.Skipped) > 0 {
			line += warningStyle.Render(", skipped " + strings.Join(r.Skipped, ","))
		}
		cmd.Println(line)
		if r.Error != "" {
			cmd.Println("    " + mutedStyle.Render(r.Error))
		}
	}
}

func printSnapshots(cmd *cobra.Command, order []string, snaps []domain.SnapshotRecord) {
	if len(snaps) == 0 {
		cmd.Println("No snapshots recorded.")
		return
	}
	cmd.Println(titleStyle.Render("time  " + strings.Join(order, "  ")))
	for _, s := range snaps {
		cells := make([]string, 0, len(order))
		for _, name := range order {
			v, ok := s.Values.Get(name)
			if !ok {
				v = "-"
			}
			cells = append(cells, v)
		}
		cmd.Printf("%s  %s\n", s.TakenAt.Local().Format(historyTimeLayout), strings.Join(cells, "  "))
	}
}
