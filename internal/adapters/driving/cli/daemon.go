package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikistats/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run statistics passes on the configured schedule",
	Long: `Daemon keeps running and performs a pass whenever the schedule in
config.toml ([scheduler] interval or cron) is due. Stop it with Ctrl-C;
a pass in progress is allowed to finish.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, release, err := loadApp(cmd, Options{})
		if err != nil {
			return err
		}
		defer release()

		if a.Scheduler == nil {
			return errors.New("scheduler not configured")
		}
		if !a.Config.Scheduler.Enabled {
			return errors.New("scheduler is disabled; set scheduler.enabled = true in config.toml")
		}

		logger.SetTimestamps(true)
		ctx := cmd.Context()
		finished := make(chan struct{})
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			select {
			case <-ctx.Done():
			case <-finished:
			}
			if ctx.Err() != nil {
				if err := a.Scheduler.Stop(); err != nil {
					logger.Warn("stop scheduler: %v", err)
				}
			}
		}()

		cmd.Println(titleStyle.Render("wikistats daemon started") + " " + mutedStyle.Render("(Ctrl-C to stop)"))
		err = a.Scheduler.Start(ctx)
		close(finished)
		<-stopped
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		cmd.Println("Stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
