package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Kruglikle/Free-room-MIET/pkg/tui"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive TUI",
	Long:  `Launch the Text User Interface to find free rooms, maintain the group and room lists, and export timetables interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, eng := newScheduler()
		return tui.RunTUI(cmd.Context(), eng)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
