package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the wikis of the family",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, release, err := loadApp(cmd, Options{})
		if err != nil {
			return err
		}
		defer release()

		if a.Stats == nil {
			return errors.New("stats service not configured")
		}
		sites, err := a.Stats.Sites(cmd.Context())
		if err != nil {
			return fmt.Errorf("list sites: %w", err)
		}
		if len(sites) == 0 {
			cmd.Println("No sites configured.")
			return nil
		}

		host := a.Config.Locator().Language
		for _, s := range sites {
			line := field(s.ID, s.BaseURL)
			if s.ID == host {
				line += " " + mutedStyle.Render("(hosts the stats page)")
			}
			cmd.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
