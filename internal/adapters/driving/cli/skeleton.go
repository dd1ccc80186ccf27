package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var skeletonCmd = &cobra.Command{
	Use:   "skeleton",
	Short: "Print the page a first run would create",
	Long: `Skeleton prints the initial stats page: the template followed by one
empty table per wiki of the family. Nothing is saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, release, err := loadApp(cmd, Options{})
		if err != nil {
			return err
		}
		defer release()

		if a.Stats == nil {
			return errors.New("stats service not configured")
		}
		text, err := a.Stats.Skeleton(cmd.Context())
		if err != nil {
			return fmt.Errorf("build skeleton: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skeletonCmd)
}
