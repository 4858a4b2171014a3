package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

// RunGroupsTUI refreshes the persisted group directory.
func RunGroupsTUI(ctx context.Context, eng *schedule.Scheduler) error {
	var allowGuess bool

	guessForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Fall back to brute-force discovery?").
				Description("Used only when the listing endpoint and the page scrape both fail. Slow.").
				Value(&allowGuess),
		),
	).WithTheme(GetTheme())
	if err := guessForm.Run(); err != nil {
		return err
	}

	var groups []string
	_ = spinner.New().
		Title("Discovering groups...").
		Action(func() {
			groups = eng.Directory().RefreshGroups(ctx, allowGuess)
		}).
		Run()

	if len(groups) == 0 {
		fmt.Println(errorStyle.Render("Discovery found no groups, the previous list is kept."))
		return nil
	}
	fmt.Println(accentStyle.Render(fmt.Sprintf("Found %d groups.", len(groups))))
	return nil
}

// RunRoomsTUI rebuilds the room catalog from every group's schedule.
func RunRoomsTUI(ctx context.Context, eng *schedule.Scheduler) error {
	if len(eng.Directory().Groups()) == 0 {
		fmt.Println(errorStyle.Render("The group list is empty. Run the groups command first."))
		return nil
	}

	var rooms []string
	_ = spinner.New().
		Title(fmt.Sprintf("Collecting rooms from %d group schedules...", len(eng.Directory().Groups()))).
		Action(func() {
			rooms = eng.Directory().RebuildRooms(ctx)
		}).
		Run()

	if len(rooms) == 0 {
		fmt.Println(errorStyle.Render("No rooms collected, the schedule service may be down."))
		return nil
	}
	fmt.Println(accentStyle.Render(fmt.Sprintf("Collected %d rooms.", len(rooms))))
	return nil
}
