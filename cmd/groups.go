package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Discover and persist the list of student groups",
	Long: `Rebuild the group directory: ask the listing endpoint first, scrape the
schedule page when it fails, and optionally fall back to brute-force probing.
The result is saved and reused by every other command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, eng := newScheduler()
		noGuess, _ := cmd.Flags().GetBool("no-guess")

		var groups []string
		_ = spinner.New().
			Title("Discovering groups...").
			Action(func() {
				groups = eng.Directory().RefreshGroups(cmd.Context(), !noGuess)
			}).
			Run()

		if len(groups) == 0 {
			return fmt.Errorf("discovery found no groups, the previous list is kept")
		}
		fmt.Printf("Found %d groups, saved to %s\n", len(groups), cfg.GroupsFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)

	groupsCmd.Flags().Bool("no-guess", false, "Disable the brute-force discovery fallback")
}
