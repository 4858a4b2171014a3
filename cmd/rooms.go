package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Rebuild and persist the room catalog",
	Long: `Fetch every known group's schedule and collect the distinct rooms that
appear in them. The result is saved and reused by every other command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, eng := newScheduler()
		if len(eng.Directory().Groups()) == 0 {
			return fmt.Errorf("the group list is empty, run `free-room-miet groups` first")
		}

		var rooms []string
		_ = spinner.New().
			Title(fmt.Sprintf("Collecting rooms from %d group schedules...", len(eng.Directory().Groups()))).
			Action(func() {
				rooms = eng.Directory().RebuildRooms(cmd.Context())
			}).
			Run()

		if len(rooms) == 0 {
			return fmt.Errorf("no rooms collected, the schedule service may be down")
		}
		fmt.Printf("Collected %d rooms, saved to %s\n", len(rooms), cfg.RoomsFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}
