package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

// RunFreeRoomsTUI runs the interactive flow for finding a free room: pick a
// day, a pair (or a wall-clock time), a corpus, and print the result.
func RunFreeRoomsTUI(ctx context.Context, eng *schedule.Scheduler) error {
	if len(eng.Directory().Groups()) == 0 {
		fmt.Println(errorStyle.Render("The group list is empty. Run the groups command first."))
		return nil
	}

	// Day
	var dayChoice string
	dayForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which day?").
				Options(
					huh.NewOption("Today", "today"),
					huh.NewOption("Tomorrow", "tomorrow"),
					huh.NewOption("Pick a date", "date"),
				).
				Value(&dayChoice),
		),
	).WithTheme(GetTheme())
	if err := dayForm.Run(); err != nil {
		return err
	}

	date := time.Now()
	switch dayChoice {
	case "tomorrow":
		date = date.AddDate(0, 0, 1)
	case "date":
		var input string
		dateForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Date (YYYY-MM-DD or DD.MM)").
					Value(&input).
					Validate(func(s string) error {
						if _, ok := schedule.ParseDate(s); !ok {
							return fmt.Errorf("unparsable date")
						}
						return nil
					}),
			),
		).WithTheme(GetTheme())
		if err := dateForm.Run(); err != nil {
			return err
		}
		date, _ = schedule.ParseDate(input)
	}

	// Pair catalog and room list, fetched together behind one spinner
	var (
		dayName   string
		dayNumber int
		slots     []schedule.Slot
		rooms     []string
	)
	_ = spinner.New().
		Title("Fetching the pair catalog...").
		Action(func() {
			dayName, dayNumber = eng.MapDate(ctx, date)
			slots = eng.Times(ctx)
			rooms = eng.Directory().EnsureRooms(ctx)
		}).
		Run()

	if len(slots) == 0 {
		fmt.Println(errorStyle.Render("Could not load the pair catalog, the schedule service may be down."))
		return nil
	}
	if len(rooms) == 0 {
		fmt.Println(errorStyle.Render("Could not build the room list, the schedule service may be down."))
		return nil
	}

	// Pair
	pairOptions := make([]huh.Option[string], 0, len(slots)+1)
	for _, slot := range slots {
		label := slot.Label
		if label == "" {
			label = "Пара " + slot.Code
		}
		pairOptions = append(pairOptions, huh.NewOption(label, slot.Code))
	}
	pairOptions = append(pairOptions, huh.NewOption("By wall-clock time", "time"))

	var timeCode string
	pairForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which pair?").
				Options(pairOptions...).
				Value(&timeCode),
		),
	).WithTheme(GetTheme())
	if err := pairForm.Run(); err != nil {
		return err
	}

	if timeCode == "time" {
		var input string
		timeForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Time (HH:MM)").
					Value(&input).
					Validate(func(s string) error {
						clock, ok := schedule.ParseClock(s)
						if !ok {
							return fmt.Errorf("unparsable time")
						}
						if _, ok := schedule.TimeToCode(slots, clock); !ok {
							return fmt.Errorf("time is outside every pair")
						}
						return nil
					}),
			),
		).WithTheme(GetTheme())
		if err := timeForm.Run(); err != nil {
			return err
		}
		clock, _ := schedule.ParseClock(input)
		timeCode, _ = schedule.TimeToCode(slots, clock)
	}

	// Corpus
	corpusOptions := []huh.Option[string]{huh.NewOption("All", "all")}
	for _, prefix := range schedule.CorpusPrefixes(rooms) {
		corpusOptions = append(corpusOptions, huh.NewOption(prefix+"xx", prefix))
	}

	var corpus string
	corpusForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which corpus?").
				Options(corpusOptions...).
				Value(&corpus),
		),
	).WithTheme(GetTheme())
	if err := corpusForm.Run(); err != nil {
		return err
	}

	// Aggregate
	var (
		occupied map[string]struct{}
		success  int
	)
	_ = spinner.New().
		Title(fmt.Sprintf("Aggregating %d group schedules...", len(eng.Directory().Groups()))).
		Action(func() {
			occupied, success = eng.AggregateOccupied(ctx, dayName, &dayNumber, timeCode)
		}).
		Run()

	if success == 0 {
		fmt.Println(errorStyle.Render("The schedule service is unavailable right now. Try again later."))
		return nil
	}

	free := schedule.FilterByPrefix(eng.FreeRooms(occupied), corpus)
	printFreeRooms(dayName, date, timeCode, corpus, free, success)
	return nil
}

func printFreeRooms(dayName string, date time.Time, timeCode, corpus string, free []string, success int) {
	header := fmt.Sprintf("Free rooms for %s (%s), pair %s", dayName, date.Format("02.01.2006"), timeCode)
	if corpus != "" && corpus != "all" {
		header += fmt.Sprintf(", corpus %sxx", corpus)
	}
	fmt.Println(accentStyle.Render(header))
	fmt.Println(accentStyle.Render(fmt.Sprintf("Based on %d group schedules.", success)))

	if len(free) == 0 {
		fmt.Println(errorStyle.Render("No free rooms."))
		return
	}
	fmt.Println(roomStyle.Render(strings.Join(free, "\n")))
	fmt.Printf("\nTotal: %d\n", len(free))
}
