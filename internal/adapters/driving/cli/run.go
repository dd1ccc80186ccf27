package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
)

var (
	runDryRun bool
	runPrint  bool
	runLocal  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Append one row of statistics to every section of the stats page",
	Long: `Run performs a single pass: it creates the stats page if it has not
been initialised, reads the statistics of every wiki with a matching
section, appends one row per section and saves the page once.

Wikis whose statistics cannot be read are skipped and reported. A page
with a section but no table aborts the pass without saving anything.`,
	Example: `  wikistats run
  wikistats run --dry-run --print
  wikistats run --local ./pages`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "compute the new page without saving it")
	runCmd.Flags().BoolVar(&runPrint, "print", false, "print the resulting page text")
	runCmd.Flags().StringVar(&runLocal, "local", "", "read and write the page under this directory instead of the wiki")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	a, release, err := loadApp(cmd, Options{LocalDir: runLocal})
	if err != nil {
		return err
	}
	defer release()

	if a.Stats == nil {
		return errors.New("stats service not configured")
	}

	result, err := a.Stats.Run(cmd.Context(), driving.RunOptions{DryRun: runDryRun})
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return errors.New("another run is in progress")
		}
		return fmt.Errorf("run failed: %w", err)
	}

	printRunResult(cmd, a.Config, result)
	if runPrint {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), result.After)
	}
	return nil
}

func printRunResult(cmd *cobra.Command, cfg domain.Config, result *driving.RunResult) {
	rec := result.Record

	title := "Stats page updated"
	if rec.DryRun {
		title = "Dry run, nothing saved"
	}
	cmd.Println(titleStyle.Render(title))
	cmd.Println(field("Page", rec.Page.String()))
	cmd.Println(field("Run", rec.ID))
	if rec.Initialized {
		cmd.Println(field("Initialised", successStyle.Render("yes")))
	}
	cmd.Println(field("Rows added", fmt.Sprintf("%d", rec.RowsAdded)))

	report := result.Report
	if report == nil {
		return
	}

	if len(report.Added) > 0 {
		added := append([]string(nil), report.Added...)
		sort.Strings(added)
		cmd.Println(field("Updated", successStyle.Render(strings.Join(added, ", "))))
	}
	for _, s := range report.Skipped {
		reason := "unavailable"
		if s.Err != nil {
			reason = s.Err.Error()
		}
		cmd.Println(field("Skipped", warningStyle.Render(s.ID)+" "+mutedStyle.Render(reason)))
	}
	if len(report.Duplicates) > 0 {
		cmd.Println(field("Duplicates", warningStyle.Render(strings.Join(report.Duplicates, ", "))))
	}

	if rec.DryRun && len(report.Added) > 0 {
		cmd.Println()
		cmd.Println(mutedStyle.Render(fmt.Sprintf("%+d lines, %+d bytes", lineDelta(result.Before, result.After),
			len(result.After)-len(result.Before))))
		ids := append([]string(nil), report.Added...)
		sort.Strings(ids)
		for _, id := range ids {
			row := domain.NewRow(report.TakenAt[id], report.Snapshots[id], cfg.Stats.Tracked)
			cmd.Println(titleStyle.Render("== " + id + " =="))
			cmd.Print(row.Render())
		}
	}
}

func lineDelta(before, after string) int {
	return strings.Count(after, "\n") - strings.Count(before, "\n")
}
