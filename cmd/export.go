package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/Kruglikle/Free-room-MIET/pkg/exporter"
	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a group's weekly timetable to an ICS file",
	Long:  `Export the timetable of one group to an ICS file without using the interactive TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, eng := newScheduler()

		group, _ := cmd.Flags().GetString("group")
		output, _ := cmd.Flags().GetString("output")
		weekFlag, _ := cmd.Flags().GetString("week")

		week := time.Now()
		if weekFlag != "" {
			parsed, ok := schedule.ParseDate(weekFlag)
			if !ok {
				return fmt.Errorf("unparsable date %q, expected YYYY-MM-DD or DD.MM", weekFlag)
			}
			week = parsed
		}
		if !strings.HasSuffix(output, ".ics") {
			output += ".ics"
		}

		var sched *upstream.Schedule
		_ = spinner.New().
			Title(fmt.Sprintf("Fetching the schedule of %s...", group)).
			Action(func() {
				sched = eng.Client().FetchOne(cmd.Context(), group)
			}).
			Run()

		if sched == nil {
			return fmt.Errorf("failed to fetch the schedule of %s", group)
		}
		if len(sched.Items) == 0 {
			return fmt.Errorf("no classes found for group %s", group)
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		if err := exporter.GenerateICS(group, sched, exporter.WeekStart(week), file); err != nil {
			return fmt.Errorf("failed to generate ICS: %w", err)
		}

		fmt.Printf("Successfully exported %d classes to %s\n", len(sched.Items), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("group", "g", "", "Group name to export (e.g. ПМ-21)")
	exportCmd.Flags().StringP("output", "o", "schedule.ics", "Output file path")
	exportCmd.Flags().StringP("week", "w", "", "Any date inside the week to export (default this week)")
	exportCmd.MarkFlagRequired("group")
}
