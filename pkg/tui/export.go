package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/Kruglikle/Free-room-MIET/pkg/exporter"
	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

// RunExportTUI exports one group's weekly timetable to an ICS file.
func RunExportTUI(ctx context.Context, eng *schedule.Scheduler) error {
	groups := eng.Directory().Groups()
	if len(groups) == 0 {
		fmt.Println(errorStyle.Render("The group list is empty. Run the groups command first."))
		return nil
	}

	groupOptions := make([]huh.Option[string], 0, len(groups))
	for _, g := range groups {
		groupOptions = append(groupOptions, huh.NewOption(g, g))
	}

	var (
		group      string
		weekInput  string
		outputFile = "schedule.ics"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select your group").
				Options(groupOptions...).
				Value(&group).
				Height(12),

			huh.NewInput().
				Title("Any date inside the week to export (YYYY-MM-DD, empty = this week)").
				Value(&weekInput).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, ok := schedule.ParseDate(s); !ok {
						return fmt.Errorf("unparsable date")
					}
					return nil
				}),

			huh.NewInput().
				Title("Output file name").
				Value(&outputFile).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("file name cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	week := time.Now()
	if weekInput != "" {
		week, _ = schedule.ParseDate(weekInput)
	}
	if !strings.HasSuffix(outputFile, ".ics") {
		outputFile += ".ics"
	}

	var sched *upstream.Schedule
	_ = spinner.New().
		Title(fmt.Sprintf("Fetching the schedule of %s...", group)).
		Action(func() {
			sched = eng.Client().FetchOne(ctx, group)
		}).
		Run()

	if sched == nil {
		return fmt.Errorf("failed to fetch the schedule of %s", group)
	}

	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := exporter.GenerateICS(group, sched, exporter.WeekStart(week), file); err != nil {
		return fmt.Errorf("failed to generate ICS: %w", err)
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\nSuccess! Exported %d events to %s", len(sched.Items), outputFile)))
	return nil
}
