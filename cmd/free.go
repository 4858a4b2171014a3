package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "Print the free rooms for a day and pair",
	Long: `Query the free classrooms without the TUI or the server. The day comes
from --date (or defaults to today), the pair from --pair or --at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, eng := newScheduler()
		ctx := cmd.Context()

		if len(eng.Directory().Groups()) == 0 {
			return fmt.Errorf("the group list is empty, run `free-room-miet groups` first")
		}

		dateFlag, _ := cmd.Flags().GetString("date")
		pairFlag, _ := cmd.Flags().GetString("pair")
		atFlag, _ := cmd.Flags().GetString("at")
		corpus, _ := cmd.Flags().GetString("corpus")

		date := time.Now()
		if dateFlag != "" {
			parsed, ok := schedule.ParseDate(dateFlag)
			if !ok {
				return fmt.Errorf("unparsable date %q, expected YYYY-MM-DD or DD.MM", dateFlag)
			}
			date = parsed
		}

		var (
			dayName    string
			dayNumber  int
			timeCode   string
			occupied   map[string]struct{}
			success    int
			rooms      []string
			resolveErr error
		)
		_ = spinner.New().
			Title("Aggregating group schedules...").
			Action(func() {
				dayName, dayNumber = eng.MapDate(ctx, date)
				rooms = eng.Directory().EnsureRooms(ctx)

				timeCode = pairFlag
				if timeCode == "" {
					clock, ok := schedule.ParseClock(atFlag)
					if !ok {
						resolveErr = fmt.Errorf("unparsable time %q, expected HH:MM", atFlag)
						return
					}
					slots := eng.Times(ctx)
					if len(slots) == 0 {
						resolveErr = fmt.Errorf("the pair catalog is unavailable")
						return
					}
					timeCode, ok = schedule.TimeToCode(slots, clock)
					if !ok {
						resolveErr = fmt.Errorf("%s is outside every pair", atFlag)
						return
					}
				}

				occupied, success = eng.AggregateOccupied(ctx, dayName, &dayNumber, timeCode)
			}).
			Run()

		if resolveErr != nil {
			return resolveErr
		}
		if len(rooms) == 0 {
			return fmt.Errorf("the room list is empty and could not be rebuilt")
		}
		if success == 0 {
			return fmt.Errorf("the schedule service is unavailable right now")
		}

		free := schedule.FilterByPrefix(eng.FreeRooms(occupied), corpus)

		fmt.Printf("Free rooms for %s (%s), pair %s", dayName, date.Format("02.01.2006"), timeCode)
		if corpus != "" && corpus != "all" {
			fmt.Printf(", corpus %sxx", corpus)
		}
		fmt.Printf(" [%d group schedules]\n", success)

		if len(free) == 0 {
			fmt.Println("No free rooms.")
			return nil
		}
		fmt.Println(strings.Join(free, "\n"))
		fmt.Printf("\nTotal: %d\n", len(free))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freeCmd)

	freeCmd.Flags().StringP("date", "d", "", "Date to query (YYYY-MM-DD or DD.MM, default today)")
	freeCmd.Flags().StringP("pair", "p", "", "Pair slot code (e.g. 1)")
	freeCmd.Flags().StringP("at", "t", "", "Wall-clock time (HH:MM), resolved to a pair")
	freeCmd.Flags().StringP("corpus", "c", "all", "Corpus prefix filter (e.g. 31)")
	freeCmd.MarkFlagsOneRequired("pair", "at")
	freeCmd.MarkFlagsMutuallyExclusive("pair", "at")
}
